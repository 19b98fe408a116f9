package storage

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/service/notion"
	"github.com/kohigashi/asakai/pkg/service/summary"
)

// Notion archives summaries by appending them to a Notion page
type Notion struct {
	svc     notion.Service
	pageID  string
	builder *summary.Builder
}

var _ Adapter = &Notion{}

// NewNotion creates an adapter bound to the given page
func NewNotion(svc notion.Service, pageID string) *Notion {
	return &Notion{
		svc:     svc,
		pageID:  pageID,
		builder: summary.NewBuilder(summary.DefaultOptions()),
	}
}

func (n *Notion) Kind() types.StorageKind {
	return types.StorageKindNotion
}

func (n *Notion) Info() model.StorageInfo {
	return model.StorageInfo{
		Kind:     types.StorageKindNotion,
		TargetID: n.pageID,
	}
}

func (n *Notion) AppendSummary(ctx context.Context, s *model.StandupSummary) error {
	heading := "Standup " + s.Date.Format("2006-01-02")
	body := n.builder.BuildFromSummary(s)

	if err := n.svc.AppendText(ctx, n.pageID, heading, body); err != nil {
		return goerr.Wrap(err, "failed to archive summary to notion", goerr.V("page_id", n.pageID))
	}
	return nil
}

func (n *Notion) Describe() string {
	return "notion (page " + n.pageID + ")"
}
