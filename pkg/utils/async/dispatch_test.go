package async_test

import (
	"context"
	"testing"
	"time"

	"github.com/kohigashi/asakai/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	t.Run("handler context carries a deadline", func(t *testing.T) {
		got := make(chan time.Time, 1)
		async.Dispatch(context.Background(), 5*time.Second, func(ctx context.Context) error {
			deadline, ok := ctx.Deadline()
			if !ok {
				t.Error("handler context has no deadline")
			}
			got <- deadline
			return nil
		})

		select {
		case deadline := <-got:
			if remaining := time.Until(deadline); remaining > 5*time.Second {
				t.Errorf("deadline too far out: %v", remaining)
			}
		case <-time.After(time.Second):
			t.Fatal("handler did not run")
		}
	})

	t.Run("handler survives a cancelled inbound context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		done := make(chan error, 1)
		async.Dispatch(ctx, time.Second, func(ctx context.Context) error {
			done <- ctx.Err()
			return nil
		})

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("handler context inherited cancellation: %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("handler did not run")
		}
	})

	t.Run("panic in the handler is contained", func(t *testing.T) {
		ran := make(chan struct{})
		async.Dispatch(context.Background(), time.Second, func(ctx context.Context) error {
			close(ran)
			panic("boom")
		})

		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("handler did not run")
		}
		// Give the goroutine a beat to unwind through the recover
		time.Sleep(10 * time.Millisecond)
	})
}
