package model

import (
	"github.com/kohigashi/asakai/pkg/domain/types"
)

// CommandResult is the tagged outcome of an orchestrator operation.
// Business-rule failures are results, not Go errors: the Message is always
// ready for direct display in chat, and Kind stays internal for tests and
// logging.
type CommandResult struct {
	Kind    types.ResultKind
	Message string

	// Summary is set by a successful close-with-summary
	Summary string

	// Group details projection
	Members     []User
	IsActive    bool
	StorageKind types.StorageKind
}

// OK reports whether the operation succeeded
func (r *CommandResult) OK() bool {
	return r.Kind == types.ResultOK
}

// Succeed builds a success result with a display message
func Succeed(message string) *CommandResult {
	return &CommandResult{Kind: types.ResultOK, Message: message}
}

// Fail builds a failure result with a display message
func Fail(kind types.ResultKind, message string) *CommandResult {
	return &CommandResult{Kind: kind, Message: message}
}
