package async

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/utils/logging"
)

// Dispatch runs a handler in a new goroutine, detached from the request
// context but bounded by the given timeout so downstream storage and
// transport calls cannot hang forever. The logger bound to the inbound
// context is carried over so asynchronous work keeps its request attributes.
func Dispatch(ctx context.Context, timeout time.Duration, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		ctx, cancel := context.WithTimeout(bgCtx, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				logging.From(ctx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(ctx); err != nil {
			logging.From(ctx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
