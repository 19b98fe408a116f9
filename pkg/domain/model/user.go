package model

import (
	"github.com/kohigashi/asakai/pkg/domain/types"
)

// User is a standup participant. Identity is ID; Name is display-only and
// may be stale relative to the chat platform.
type User struct {
	ID   types.UserID `firestore:"id" json:"id"`
	Name string       `firestore:"name" json:"name"`
}
