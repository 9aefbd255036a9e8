package commands

import (
	"context"
	"math/rand/v2"
	"time"
)

// simulateWork blocks for a random duration in [minDelay, maxDelay],
// standing in for an external collaborator call (payment check, carrier
// hand-off, last-mile delivery). The wait is cancellable: when ctx is done
// the context error is returned immediately so shutdown never hangs on a
// simulated sleep.
func simulateWork(ctx context.Context, minDelay, maxDelay time.Duration) error {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}

	delay := minDelay
	if maxDelay > minDelay {
		delay += rand.N(maxDelay - minDelay)
	}
	if delay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
