package trunk

import (
	"context"
	"time"
)

// Run drives Clock on a steady tick until ctx is canceled. It is the only goroutine expected to call into the engine
// on a timer; ProcessRF/ProcessNet must still be serialized against
// it by the caller.
func (e *Engine) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Clock(tick)
		}
	}
}
