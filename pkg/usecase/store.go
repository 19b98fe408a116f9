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

// maxCASRetries bounds the reload-and-retry loop on revision conflicts.
const maxCASRetries = 3

// GroupStore is the persistence gateway between the StandupGroup entity and
// the document store. It owns the document mapping in both directions and
// the adapter reconstruction on load; the entity itself never sees documents.
type GroupStore struct {
	repo interfaces.Repository
	deps storage.Deps
}

// NewGroupStore builds a gateway over the given repository. The storage deps
// are used to reconstruct adapters when groups are loaded.
func NewGroupStore(repo interfaces.Repository, deps storage.Deps) *GroupStore {
	return &GroupStore{repo: repo, deps: deps}
}

// LoadedGroup pairs a hydrated group with the revision of the document it
// came from, so a later save can assert nothing moved underneath.
type LoadedGroup struct {
	Group *model.StandupGroup
	Rev   int64
}

// LoadGroup fetches and hydrates a conversation's group. It returns
// ErrGroupNotFound when the document is absent or carries a different
// discriminator; a stored document of the wrong type is never trusted.
func (s *GroupStore) LoadGroup(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID) (*LoadedGroup, error) {
	doc, err := s.repo.Get(ctx, model.GroupDocKey(conversationID), tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get group document",
			goerr.V("conversation_id", conversationID))
	}
	if doc == nil || doc.Type != types.DocumentTypeGroup {
		return nil, goerr.Wrap(ErrGroupNotFound, "no group registered for conversation",
			goerr.V("conversation_id", conversationID),
			goerr.V("tenant_id", tenantID))
	}

	adapter, err := storage.Restore(doc.Storage, s.deps)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to restore storage adapter for group",
			goerr.V("conversation_id", conversationID))
	}

	group := model.RestoreStandupGroup(
		conversationID,
		tenantID,
		adapter,
		doc.Users,
		doc.IsActive,
		doc.ActiveResponses,
		doc.ActiveActivityID,
	)
	return &LoadedGroup{Group: group, Rev: doc.Rev}, nil
}

// SaveGroup writes the group state back at the given revision. A revision
// conflict propagates as interfaces.ErrRevisionMismatch for the caller's
// retry loop.
func (s *GroupStore) SaveGroup(ctx context.Context, group *model.StandupGroup, rev int64) error {
	doc := &model.Document{
		ID:               model.GroupDocKey(group.ConversationID()),
		TenantID:         group.TenantID(),
		Type:             types.DocumentTypeGroup,
		Rev:              rev,
		Users:            group.Users(),
		IsActive:         group.IsActive(),
		ActiveResponses:  group.Responses(),
		ActiveActivityID: group.ActivityID(),
		Storage:          group.Storage().Info(),
	}
	if err := s.repo.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save group document",
			goerr.V("conversation_id", group.ConversationID()),
			goerr.V("rev", rev))
	}
	return nil
}

// DeleteGroup removes a conversation's group document. The history document
// is left in place.
func (s *GroupStore) DeleteGroup(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID) error {
	if err := s.repo.Delete(ctx, model.GroupDocKey(conversationID), tenantID); err != nil {
		return goerr.Wrap(err, "failed to delete group document",
			goerr.V("conversation_id", conversationID))
	}
	return nil
}

// AddStandupHistory appends a summary to the conversation's history document,
// creating it on first use. The read-modify-append cycle is retried on
// revision conflicts since history writes may race with each other.
func (s *GroupStore) AddStandupHistory(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, summary *model.StandupSummary) error {
	key := model.HistoryDocKey(conversationID)

	var lastErr error
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		doc, err := s.repo.Get(ctx, key, tenantID)
		if err != nil {
			return goerr.Wrap(err, "failed to get history document",
				goerr.V("conversation_id", conversationID))
		}
		if doc == nil || doc.Type != types.DocumentTypeHistory {
			doc = model.NewHistoryDocument(conversationID, tenantID)
		}
		doc.Summaries = append(doc.Summaries, *summary)

		if err := s.repo.Set(ctx, doc); err != nil {
			if errors.Is(err, interfaces.ErrRevisionMismatch) {
				lastErr = err
				continue
			}
			return goerr.Wrap(err, "failed to save history document",
				goerr.V("conversation_id", conversationID))
		}
		return nil
	}

	return goerr.Wrap(ErrConflictRetry, "history append kept conflicting",
		goerr.V("conversation_id", conversationID),
		goerr.V("attempts", maxCASRetries),
		goerr.V("last_error", lastErr))
}

// GetStandupHistory returns the conversation's archived summaries in append
// order. A missing history document is an empty history, not an error.
func (s *GroupStore) GetStandupHistory(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID) ([]model.StandupSummary, error) {
	doc, err := s.repo.Get(ctx, model.HistoryDocKey(conversationID), tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get history document",
			goerr.V("conversation_id", conversationID))
	}
	if doc == nil || doc.Type != types.DocumentTypeHistory {
		return nil, nil
	}
	return doc.Summaries, nil
}

// ListGroups returns hydrated groups for every group document in the tenant
// partition, most recently updated first. Groups whose storage adapter can
// no longer be restored are skipped rather than failing the whole listing.
func (s *GroupStore) ListGroups(ctx context.Context, tenantID types.TenantID) ([]*model.StandupGroup, error) {
	docs, err := s.repo.ListGroups(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list group documents",
			goerr.V("tenant_id", tenantID))
	}

	groups := make([]*model.StandupGroup, 0, len(docs))
	for _, doc := range docs {
		adapter, err := storage.Restore(doc.Storage, s.deps)
		if err != nil {
			continue
		}
		groups = append(groups, model.RestoreStandupGroup(
			types.ConversationID(doc.ID),
			doc.TenantID,
			adapter,
			doc.Users,
			doc.IsActive,
			doc.ActiveResponses,
			doc.ActiveActivityID,
		))
	}
	return groups, nil
}
