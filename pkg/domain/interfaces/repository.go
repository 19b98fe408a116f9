package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
)

// ErrRevisionMismatch is returned by Set when the document's revision does
// not match the stored one. The caller should reload and retry.
var ErrRevisionMismatch = goerr.New("document revision mismatch")

// Repository is the durable key-value document store. Documents are keyed by
// an opaque ID within a tenant partition. Get returns (nil, nil) when the
// document is absent; absence is not an error.
//
// Set is an upsert with optimistic concurrency: it succeeds only when the
// given document's Rev equals the stored revision (0 for a new document),
// and bumps the stored revision on success.
type Repository interface {
	Get(ctx context.Context, id string, tenantID types.TenantID) (*model.Document, error)
	Set(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, id string, tenantID types.TenantID) error

	// ListGroups returns all group documents within a tenant partition,
	// most recently updated first. History documents are excluded.
	ListGroups(ctx context.Context, tenantID types.TenantID) ([]*model.Document, error)

	Close() error
}
