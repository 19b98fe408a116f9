package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/types"
)

// ErrNoActiveStandup is returned by PersistStandup when there is nothing to
// archive: either no standup is active or no responses were collected.
var ErrNoActiveStandup = goerr.New("no active standup to persist")

// StandupGroup is the aggregate root for one conversation's standup: its
// membership, the active-session flag and the in-flight response buffer.
// The entity is pure in-memory state; it never persists itself. The bound
// storage sink is shared, not owned.
//
// State machine: Idle -> Active via StartStandup (no-op when already
// active), Active -> Idle via CloseStandup (always succeeds, returns the
// collected responses). There is no terminal state; a closed group can be
// restarted immediately.
type StandupGroup struct {
	conversationID types.ConversationID
	tenantID       types.TenantID
	storage        SummarySink

	users            []User
	isActive         bool
	activeResponses  []StandupResponse
	activeActivityID string
}

// NewStandupGroup creates an idle group bound to the given storage sink.
// Initial members are added in order with AddUser semantics.
func NewStandupGroup(conversationID types.ConversationID, tenantID types.TenantID, storage SummarySink, users ...User) *StandupGroup {
	g := &StandupGroup{
		conversationID: conversationID,
		tenantID:       tenantID,
		storage:        storage,
	}
	for _, u := range users {
		g.AddUser(u)
	}
	return g
}

// RestoreStandupGroup rebuilds a group from persisted state. It is the
// hydration path of the persistence gateway and applies no invariant checks
// beyond what the stored document already satisfied.
func RestoreStandupGroup(
	conversationID types.ConversationID,
	tenantID types.TenantID,
	storage SummarySink,
	users []User,
	isActive bool,
	activeResponses []StandupResponse,
	activeActivityID string,
) *StandupGroup {
	g := &StandupGroup{
		conversationID:   conversationID,
		tenantID:         tenantID,
		storage:          storage,
		users:            append([]User(nil), users...),
		isActive:         isActive,
		activeResponses:  append([]StandupResponse(nil), activeResponses...),
		activeActivityID: activeActivityID,
	}
	return g
}

// ConversationID returns the immutable conversation identity
func (g *StandupGroup) ConversationID() types.ConversationID {
	return g.conversationID
}

// TenantID returns the immutable tenant partition key
func (g *StandupGroup) TenantID() types.TenantID {
	return g.tenantID
}

// Storage returns the bound summary sink
func (g *StandupGroup) Storage() SummarySink {
	return g.storage
}

// AddUser inserts a member. It returns false without error when the user ID
// is already present.
func (g *StandupGroup) AddUser(user User) bool {
	for _, u := range g.users {
		if u.ID == user.ID {
			return false
		}
	}
	g.users = append(g.users, user)
	return true
}

// RemoveUser removes a member by ID, returning false when absent. A removed
// user's in-flight response is intentionally left in place: it is historical
// input and still shows up in the summary of the current session.
func (g *StandupGroup) RemoveUser(userID types.UserID) bool {
	for i, u := range g.users {
		if u.ID == userID {
			g.users = append(g.users[:i], g.users[i+1:]...)
			return true
		}
	}
	return false
}

// Users returns a snapshot copy of the membership in insertion order
func (g *StandupGroup) Users() []User {
	return append([]User(nil), g.users...)
}

// HasUser reports whether the user ID is a current member
func (g *StandupGroup) HasUser(userID types.UserID) bool {
	for _, u := range g.users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// IsActive reports whether a standup session is in progress
func (g *StandupGroup) IsActive() bool {
	return g.isActive
}

// ActivityID returns the handle of the live standup card, empty when none
func (g *StandupGroup) ActivityID() string {
	return g.activeActivityID
}

// StartStandup transitions Idle -> Active, clearing the response buffer and
// recording the card activity handle. It returns false when already active,
// leaving the running session untouched.
func (g *StandupGroup) StartStandup(activityID string) bool {
	if g.isActive {
		return false
	}
	g.isActive = true
	g.activeResponses = nil
	g.activeActivityID = activityID
	return true
}

// AddResponse records a response for the active session. A second submission
// from the same user replaces the first. Returns false when no standup is
// active.
func (g *StandupGroup) AddResponse(response StandupResponse) bool {
	if !g.isActive {
		return false
	}
	for i, r := range g.activeResponses {
		if r.UserID == response.UserID {
			g.activeResponses[i] = response
			return true
		}
	}
	g.activeResponses = append(g.activeResponses, response)
	return true
}

// Responses returns a snapshot copy of the in-flight responses
func (g *StandupGroup) Responses() []StandupResponse {
	return append([]StandupResponse(nil), g.activeResponses...)
}

// CloseStandup transitions Active -> Idle and returns the collected
// responses. Closing an idle group is a no-op returning an empty slice. The
// buffer and the activity handle are always cleared.
func (g *StandupGroup) CloseStandup() []StandupResponse {
	if !g.isActive {
		return nil
	}
	g.isActive = false
	responses := g.activeResponses
	g.activeResponses = nil
	g.activeActivityID = ""
	return responses
}

// Summary builds the history record for the current session state. The
// participants snapshot carries the membership at build time.
func (g *StandupGroup) Summary(now time.Time) *StandupSummary {
	s := &StandupSummary{
		ID:           uuid.NewString(),
		Date:         now,
		Participants: g.Users(),
		Responses:    g.Responses(),
	}
	for _, r := range g.activeResponses {
		name := g.userName(r.UserID)
		for _, line := range strings.Split(r.ParkingLot, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				s.ParkingLot = append(s.ParkingLot, line+" (by "+name+")")
			}
		}
	}
	return s
}

// PersistStandup archives the current session through the bound storage
// sink. It fails with ErrNoActiveStandup when no standup is active or no
// responses were collected; sink errors propagate unchanged. It is a side
// query, not a state transition.
func (g *StandupGroup) PersistStandup(ctx context.Context) error {
	if !g.isActive || len(g.activeResponses) == 0 {
		return goerr.Wrap(ErrNoActiveStandup, "persist skipped",
			goerr.V("conversation_id", g.conversationID),
			goerr.V("is_active", g.isActive),
			goerr.V("responses", len(g.activeResponses)),
		)
	}
	return g.storage.AppendSummary(ctx, g.Summary(time.Now().UTC()))
}

func (g *StandupGroup) userName(id types.UserID) string {
	for _, u := range g.users {
		if u.ID == id {
			return u.Name
		}
	}
	return "Unknown"
}

// UserName resolves a member's display name, "Unknown" when not a member
func (g *StandupGroup) UserName(id types.UserID) string {
	return g.userName(id)
}
