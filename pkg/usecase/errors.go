package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/interfaces"
)

var (
	ErrGroupNotFound = goerr.New("standup group not found")
	ErrConflictRetry = goerr.New("document revision conflict persisted after retries")
	ErrMissingTarget = goerr.New("storage target is required")
)

func isRevisionMismatch(err error) bool {
	return errors.Is(err, interfaces.ErrRevisionMismatch)
}
