package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/service/storage"
	"github.com/kohigashi/asakai/pkg/service/summary"
	"github.com/kohigashi/asakai/pkg/utils/errutil"
	"github.com/kohigashi/asakai/pkg/utils/logging"
)

// CardUpdateFunc re-renders the live standup card identified by its activity
// handle with the names of members who have responded so far. The caller
// owns the rendering; the orchestrator only supplies the data.
type CardUpdateFunc func(ctx context.Context, activityID string, respondedNames []string) error

// StandupUseCase drives the standup lifecycle. Every operation returns a
// tagged CommandResult whose message is ready for direct display; business
// failures and store faults alike fold into the result rather than
// propagating as Go errors. Mutations commit through the group manager's
// load-mutate-save cycle before success is reported.
type StandupUseCase struct {
	manager    *GroupManager
	store      *GroupStore
	summarizer summary.Summarizer
	fallback   *summary.Builder
}

// NewStandupUseCase builds the orchestrator. The summarizer may be the
// deterministic builder itself; when it is a remote one, the builder serves
// as the fallback on summarization failure.
func NewStandupUseCase(manager *GroupManager, store *GroupStore, summarizer summary.Summarizer, fallback *summary.Builder) *StandupUseCase {
	return &StandupUseCase{
		manager:    manager,
		store:      store,
		summarizer: summarizer,
		fallback:   fallback,
	}
}

// RegisterGroup creates a standup group for the conversation with the
// creator as its first member. A second registration for the same
// conversation fails, including under concurrent attempts: the store's
// revision check is the serialization point.
func (uc *StandupUseCase) RegisterGroup(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, adapter storage.Adapter, creator model.User) *model.CommandResult {
	if _, err := uc.manager.LoadGroup(ctx, conversationID, tenantID); err == nil {
		return model.Fail(types.ResultAlreadyRegistered, "A standup group is already registered for this conversation.")
	} else if !errors.Is(err, ErrGroupNotFound) {
		return uc.storeFault(ctx, err)
	}

	if _, err := uc.manager.CreateGroup(ctx, conversationID, tenantID, adapter, creator); err != nil {
		if isRevisionMismatch(err) {
			return model.Fail(types.ResultAlreadyRegistered, "A standup group is already registered for this conversation.")
		}
		return uc.storeFault(ctx, err)
	}

	msg := fmt.Sprintf("Standup group registered with %s as the first member. Summaries go to %s.",
		creator.Name, adapter.Describe())
	return model.Succeed(msg)
}

// AddUsers adds the mentioned users to the group. Only the users that were
// actually inserted are reported; when none were, the whole call fails.
func (uc *StandupUseCase) AddUsers(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, users []model.User) *model.CommandResult {
	if len(users) == 0 {
		return model.Fail(types.ResultEmptyMentions, "Please mention at least one user to add.")
	}

	result, err := uc.manager.Update(ctx, conversationID, tenantID, func(g *model.StandupGroup) (*model.CommandResult, bool, error) {
		var added []string
		for _, u := range users {
			if g.AddUser(u) {
				added = append(added, u.Name)
			}
		}
		if len(added) == 0 {
			return model.Fail(types.ResultNoChange, "All mentioned users are already in the group."), false, nil
		}
		return model.Succeed("Added to the standup group: " + strings.Join(added, ", ")), true, nil
	})
	if err != nil {
		return uc.resultFromError(ctx, err)
	}
	return result
}

// RemoveUsers removes the mentioned users from the group. A removed user's
// in-flight response stays in the active session.
func (uc *StandupUseCase) RemoveUsers(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, userIDs []types.UserID) *model.CommandResult {
	if len(userIDs) == 0 {
		return model.Fail(types.ResultEmptyMentions, "Please mention at least one user to remove.")
	}

	result, err := uc.manager.Update(ctx, conversationID, tenantID, func(g *model.StandupGroup) (*model.CommandResult, bool, error) {
		var removed []string
		for _, id := range userIDs {
			name := g.UserName(id)
			if g.RemoveUser(id) {
				removed = append(removed, name)
			}
		}
		if len(removed) == 0 {
			return model.Fail(types.ResultNoChange, "None of the mentioned users are in the group."), false, nil
		}
		return model.Succeed("Removed from the standup group: " + strings.Join(removed, ", ")), true, nil
	})
	if err != nil {
		return uc.resultFromError(ctx, err)
	}
	return result
}

// StartStandup transitions the group to Active. The caller has already sent
// the interactive card and supplies its handle for later live updates.
func (uc *StandupUseCase) StartStandup(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, activityID string) *model.CommandResult {
	result, err := uc.manager.Update(ctx, conversationID, tenantID, func(g *model.StandupGroup) (*model.CommandResult, bool, error) {
		if g.IsActive() {
			return model.Fail(types.ResultAlreadyActive, "A standup is already in progress."), false, nil
		}
		if len(g.Users()) == 0 {
			return model.Fail(types.ResultEmptyGroup, "The group has no members. Add members before starting a standup."), false, nil
		}
		g.StartStandup(activityID)
		return model.Succeed("Standup started. Waiting for responses."), true, nil
	})
	if err != nil {
		return uc.resultFromError(ctx, err)
	}
	return result
}

// SubmitResponse records a member's response for the active session. A later
// submission from the same user replaces the earlier one. On success the
// live card is re-rendered through send with the responders so far; a
// re-render failure is logged but never undoes the accepted response.
func (uc *StandupUseCase) SubmitResponse(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, response model.StandupResponse, send CardUpdateFunc) *model.CommandResult {
	if send == nil {
		return model.Fail(types.ResultInvalidResponse, "This response cannot be processed right now.")
	}
	if !response.Complete() {
		return model.Fail(types.ResultInvalidResponse, "Both completed work and planned work are required.")
	}

	var activityID string
	var respondedNames []string

	result, err := uc.manager.Update(ctx, conversationID, tenantID, func(g *model.StandupGroup) (*model.CommandResult, bool, error) {
		if !g.AddResponse(response) {
			return model.Fail(types.ResultNotActive, "No standup is currently active."), false, nil
		}
		activityID = g.ActivityID()
		respondedNames = respondedNames[:0]
		for _, r := range g.Responses() {
			respondedNames = append(respondedNames, g.UserName(r.UserID))
		}
		return model.Succeed("Response recorded."), true, nil
	})
	if err != nil {
		return uc.resultFromError(ctx, err)
	}

	if result.OK() && activityID != "" {
		if err := send(ctx, activityID, respondedNames); err != nil {
			errutil.Handle(ctx, err, "failed to update standup card")
		}
	}
	return result
}

// CloseStandup ends the session. With sendSummary the collected responses
// are summarized, archived through the bound adapter and appended to the
// history document; an archive failure still reports success with the
// failure embedded, since a storage fault must never hide the summary from
// the group. Without sendSummary the session is silently discarded, which
// is the restart path. The close is never rolled back, even when zero
// responses force an error result.
func (uc *StandupUseCase) CloseStandup(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID, sendSummary bool) *model.CommandResult {
	var sink model.SummarySink
	var histSummary *model.StandupSummary
	var entries []summary.Entry

	result, err := uc.manager.Update(ctx, conversationID, tenantID, func(g *model.StandupGroup) (*model.CommandResult, bool, error) {
		sink = nil
		histSummary = nil
		entries = nil

		wasActive := g.IsActive()
		if sendSummary && wasActive && len(g.Responses()) > 0 {
			sink = g.Storage()
			histSummary = g.Summary(time.Now().UTC())
			for _, r := range g.Responses() {
				entries = append(entries, summary.Entry{
					UserName:      g.UserName(r.UserID),
					CompletedWork: r.CompletedWork,
					PlannedWork:   r.PlannedWork,
					ParkingLot:    r.ParkingLot,
				})
			}
		}

		responses := g.CloseStandup()

		if !sendSummary {
			return model.Succeed("Standup closed."), wasActive, nil
		}
		if len(responses) == 0 {
			return model.Fail(types.ResultNoResponses, "No responses were recorded for this standup."), wasActive, nil
		}
		return model.Succeed("Standup closed."), true, nil
	})
	if err != nil {
		return uc.resultFromError(ctx, err)
	}
	if !result.OK() || !sendSummary {
		return result
	}

	result.Summary = uc.buildSummaryText(ctx, entries)

	// Archive from the snapshot only after the close has committed; the
	// mutate closure stays free of external effects across retries.
	var persistErr error
	if sink != nil && histSummary != nil {
		persistErr = sink.AppendSummary(ctx, histSummary)
	}

	if histSummary != nil {
		if err := uc.store.AddStandupHistory(ctx, conversationID, tenantID, histSummary); err != nil {
			errutil.Handle(ctx, err, "failed to append standup history")
		}
	}
	if persistErr != nil {
		errutil.Handle(ctx, persistErr, "failed to archive standup summary")
		result.Message += " The summary could not be archived: " + persistErr.Error()
	}
	return result
}

// GetGroupDetails is a read-only projection of membership, the active flag
// and the bound storage kind.
func (uc *StandupUseCase) GetGroupDetails(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID) *model.CommandResult {
	ld, err := uc.manager.LoadGroup(ctx, conversationID, tenantID)
	if err != nil {
		return uc.resultFromError(ctx, err)
	}

	g := ld.Group
	names := make([]string, 0, len(g.Users()))
	for _, u := range g.Users() {
		names = append(names, u.Name)
	}
	status := "idle"
	if g.IsActive() {
		status = "active"
	}

	result := model.Succeed(fmt.Sprintf("Members: %s. Standup is %s. Storage: %s.",
		strings.Join(names, ", "), status, g.Storage().Kind()))
	result.Members = g.Users()
	result.IsActive = g.IsActive()
	result.StorageKind = g.Storage().Kind()
	return result
}

// ListGroups returns every registered group in the tenant partition,
// most recently updated first.
func (uc *StandupUseCase) ListGroups(ctx context.Context, tenantID types.TenantID) ([]*model.StandupGroup, error) {
	return uc.store.ListGroups(ctx, tenantID)
}

// DeregisterGroup deletes a conversation's group document. The history
// document is kept.
func (uc *StandupUseCase) DeregisterGroup(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID) error {
	if _, err := uc.manager.LoadGroup(ctx, conversationID, tenantID); err != nil {
		return err
	}
	return uc.store.DeleteGroup(ctx, conversationID, tenantID)
}

// GetStandupHistory returns the conversation's archived summaries
func (uc *StandupUseCase) GetStandupHistory(ctx context.Context, conversationID types.ConversationID, tenantID types.TenantID) ([]model.StandupSummary, error) {
	return uc.store.GetStandupHistory(ctx, conversationID, tenantID)
}

func (uc *StandupUseCase) buildSummaryText(ctx context.Context, entries []summary.Entry) string {
	text, err := uc.summarizer.Summarize(ctx, entries)
	if err != nil {
		logging.From(ctx).Warn("summarizer failed, falling back to deterministic builder", "error", err)
		text = uc.fallback.Build(entries)
	}
	return text
}

// resultFromError converts an unexpected error into a displayable result.
// Absence of a group is a business failure; anything else is a store fault.
func (uc *StandupUseCase) resultFromError(ctx context.Context, err error) *model.CommandResult {
	if errors.Is(err, ErrGroupNotFound) {
		return model.Fail(types.ResultNotRegistered, "No standup group is registered for this conversation. Register one first.")
	}
	return uc.storeFault(ctx, err)
}

func (uc *StandupUseCase) storeFault(ctx context.Context, err error) *model.CommandResult {
	errutil.Handle(ctx, err, "standup operation failed")
	return model.Fail(types.ResultStorageFailure, "Something went wrong while accessing storage: "+err.Error())
}
