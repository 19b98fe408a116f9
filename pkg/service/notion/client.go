package notion

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
)

// notionBlockLimit is the maximum rich text length Notion accepts per block
const notionBlockLimit = 2000

// client implements Service
type client struct {
	api *notionapi.Client
}

// New creates a new Notion service with the provided API token
func New(token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Notion API token is required")
	}

	return &client{
		api: notionapi.NewClient(
			notionapi.Token(token),
			notionapi.WithRetry(3), // Retry on rate limit (HTTP 429)
		),
	}, nil
}

func (c *client) ListPages(ctx context.Context) ([]*Page, error) {
	var pages []*Page
	var cursor notionapi.Cursor

	for {
		resp, err := c.api.Search.Do(ctx, &notionapi.SearchRequest{
			Filter: notionapi.SearchFilter{
				Value:    "page",
				Property: "object",
			},
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search notion pages")
		}

		for _, obj := range resp.Results {
			page, ok := obj.(*notionapi.Page)
			if !ok {
				continue
			}
			pages = append(pages, &Page{
				ID:    page.ID.String(),
				Title: pageTitle(page),
				URL:   page.URL,
			})
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return pages, nil
}

func (c *client) AppendText(ctx context.Context, pageID, heading, body string) error {
	children := []notionapi.Block{
		&notionapi.Heading2Block{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeHeading2,
			},
			Heading2: notionapi.Heading{
				RichText: richText(heading),
			},
		},
	}

	for _, chunk := range splitChunks(body, notionBlockLimit) {
		children = append(children, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{
				RichText: richText(chunk),
			},
		})
	}

	_, err := c.api.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
		Children: children,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to append blocks to notion page", goerr.V("page_id", pageID))
	}
	return nil
}

// pageTitle extracts the plain-text title of a page, empty when untitled
func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		title, ok := prop.(*notionapi.TitleProperty)
		if !ok {
			continue
		}
		var sb strings.Builder
		for _, rt := range title.Title {
			sb.WriteString(rt.PlainText)
		}
		return sb.String()
	}
	return ""
}

func richText(text string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: text},
		},
	}
}

// splitChunks splits text into pieces within the Notion block size limit,
// preferring line boundaries.
func splitChunks(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var buf strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			// Back off to a rune boundary so a multi-byte character is
			// never split across chunks.
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if buf.Len()+len(line)+1 > limit {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}
