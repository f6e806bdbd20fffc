package worker

import (
	"context"
	"time"
)

// RunEvery calls fn once immediately and then on every tick until ctx is done.
func RunEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fn(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
