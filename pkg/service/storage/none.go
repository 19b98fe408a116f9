package storage

import (
	"context"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
)

// None is the default adapter: summaries are kept only in the document
// store's history record and otherwise discarded.
type None struct{}

var _ Adapter = &None{}

// NewNone creates a discarding adapter
func NewNone() *None {
	return &None{}
}

func (n *None) Kind() types.StorageKind {
	return types.StorageKindNone
}

func (n *None) Info() model.StorageInfo {
	return model.StorageInfo{Kind: types.StorageKindNone}
}

func (n *None) AppendSummary(ctx context.Context, summary *model.StandupSummary) error {
	return nil
}

func (n *None) Describe() string {
	return "none"
}
