package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/types"
)

// Document is the unified shape stored in the document store. Two document
// kinds share the keyspace, discriminated by Type: "group" documents hold a
// serialized StandupGroup, "history" documents hold its closed-standup
// summaries. Callers must check Type before trusting the rest of the fields.
//
// Rev is the optimistic-concurrency token: the store rejects a Set whose Rev
// does not match the stored revision.
type Document struct {
	ID       string             `firestore:"id"`
	TenantID types.TenantID     `firestore:"tenant_id"`
	Type     types.DocumentType `firestore:"type"`
	Rev      int64              `firestore:"rev"`

	// group document fields
	Users            []User            `firestore:"users,omitempty"`
	IsActive         bool              `firestore:"is_active"`
	ActiveResponses  []StandupResponse `firestore:"active_responses,omitempty"`
	ActiveActivityID string            `firestore:"active_activity_id,omitempty"`
	Storage          StorageInfo       `firestore:"storage"`

	// history document fields
	Summaries []StandupSummary `firestore:"summaries,omitempty"`

	UpdatedAt time.Time `firestore:"updated_at"`
}

// Validate checks the document identity and discriminator
func (d *Document) Validate() error {
	if d.ID == "" {
		return goerr.New("document ID cannot be empty")
	}
	if err := d.TenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid document tenant ID")
	}
	if !d.Type.IsValid() {
		return goerr.New("invalid document type", goerr.V("type", d.Type))
	}
	return nil
}

// GroupDocKey returns the store key of a conversation's group document.
func GroupDocKey(conversationID types.ConversationID) string {
	return conversationID.String()
}

// HistoryDocKey returns the store key of a conversation's history document.
// The prefix keeps it a sibling of the group document rather than a collision.
func HistoryDocKey(conversationID types.ConversationID) string {
	return "history:" + conversationID.String()
}

// NewHistoryDocument returns an empty history document for the conversation
func NewHistoryDocument(conversationID types.ConversationID, tenantID types.TenantID) *Document {
	return &Document{
		ID:       HistoryDocKey(conversationID),
		TenantID: tenantID,
		Type:     types.DocumentTypeHistory,
	}
}
