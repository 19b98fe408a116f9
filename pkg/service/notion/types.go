package notion

import (
	"context"
)

// Service provides the Notion operations used by the notebook storage
// adapter: listing candidate pages at registration time and appending
// rendered summaries to the selected page.
type Service interface {
	// ListPages returns pages the integration can write to
	ListPages(ctx context.Context) ([]*Page, error)

	// AppendText appends a heading and body text to the given page
	AppendText(ctx context.Context, pageID, heading, body string) error
}

// Page is a Notion page reference
type Page struct {
	ID    string
	Title string
	URL   string
}
