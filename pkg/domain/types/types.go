package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// ConversationID identifies a chat conversation (a Slack channel)
type ConversationID string

// Validate checks if the ConversationID is valid
func (c ConversationID) Validate() error {
	if c == "" {
		return goerr.New("conversation ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ConversationID
func (c ConversationID) String() string {
	return string(c)
}

// TenantID identifies the tenant a conversation belongs to. It is used as
// the partition key of the document store.
type TenantID string

// Validate checks if the TenantID is valid
func (t TenantID) Validate() error {
	if t == "" {
		return goerr.New("tenant ID cannot be empty")
	}
	return nil
}

// String returns the string representation of TenantID
func (t TenantID) String() string {
	return string(t)
}

// UserID identifies a chat user
type UserID string

// Validate checks if the UserID is valid
func (u UserID) Validate() error {
	if u == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// DocumentType discriminates the document shapes sharing the standup keyspace
type DocumentType string

const (
	DocumentTypeGroup   DocumentType = "group"
	DocumentTypeHistory DocumentType = "history"
)

// IsValid checks if the document type is a known discriminator
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeGroup, DocumentTypeHistory:
		return true
	default:
		return false
	}
}

// String returns the string representation of the document type
func (t DocumentType) String() string {
	return string(t)
}

// StorageKind identifies a summary archive adapter. The set is closed: every
// kind has a concrete adapter that can be reconstructed from persisted state.
type StorageKind string

const (
	StorageKindNone   StorageKind = "none"
	StorageKindNotion StorageKind = "notion"
	StorageKindGCS    StorageKind = "gcs"
)

// AllStorageKinds returns all valid storage kinds
func AllStorageKinds() []StorageKind {
	return []StorageKind{
		StorageKindNone,
		StorageKindNotion,
		StorageKindGCS,
	}
}

// IsValid checks if the storage kind is valid
func (k StorageKind) IsValid() bool {
	switch k {
	case StorageKindNone, StorageKindNotion, StorageKindGCS:
		return true
	default:
		return false
	}
}

// String returns the string representation of the storage kind
func (k StorageKind) String() string {
	return string(k)
}
