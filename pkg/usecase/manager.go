package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/interfaces"
	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/service/storage"
)

// GroupManager creates groups and runs load-mutate-save cycles against the
// persistence gateway. It is stateless: every operation reconstructs the
// group from the store, and mutations commit via the document revision
// check-and-set before success is reported. Concurrent cycles against the
// same conversation serialize through conflict retries rather than locks.
type GroupManager struct {
	store *GroupStore
}

// NewGroupManager builds a manager over the given gateway
func NewGroupManager(store *GroupStore) *GroupManager {
	return &GroupManager{store: store}
}

// CreateGroup constructs an idle group with the creator as sole member and
// persists it at revision zero. A concurrent creation for the same
// conversation loses the revision race and surfaces as a mismatch error;
// uniqueness checking beyond that race is the caller's job.
func (m *GroupManager) CreateGroup(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, adapter storage.Adapter, creator model.User) (*model.StandupGroup, error) {
	group := model.NewStandupGroup(conversationID, tenantID, adapter, creator)
	if err := m.store.SaveGroup(ctx, group, 0); err != nil {
		return nil, err
	}
	return group, nil
}

// LoadGroup is the read-through path for read-only operations
func (m *GroupManager) LoadGroup(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID) (*LoadedGroup, error) {
	return m.store.LoadGroup(ctx, conversationID, tenantID)
}

// MutateFunc mutates a freshly loaded group. It reports the command result
// for the caller and whether the group state changed; only a dirty result
// triggers a write-back. The function may run more than once when the save
// conflicts, so it must not carry effects across invocations.
type MutateFunc func(group *model.StandupGroup) (result *model.CommandResult, dirty bool, err error)

// Update runs one load-mutate-save cycle, retrying the whole cycle on a
// revision conflict. The result is returned only after a dirty mutation has
// durably committed.
func (m *GroupManager) Update(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, fn MutateFunc) (*model.CommandResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		ld, err := m.store.LoadGroup(ctx, conversationID, tenantID)
		if err != nil {
			return nil, err
		}

		result, dirty, err := fn(ld.Group)
		if err != nil {
			return nil, err
		}
		if !dirty {
			return result, nil
		}

		if err := m.store.SaveGroup(ctx, ld.Group, ld.Rev); err != nil {
			if errors.Is(err, interfaces.ErrRevisionMismatch) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return result, nil
	}

	return nil, goerr.Wrap(ErrConflictRetry, "group update kept conflicting",
		goerr.V("conversation_id", conversationID),
		goerr.V("attempts", maxCASRetries),
		goerr.V("last_error", lastErr))
}
