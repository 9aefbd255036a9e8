// Package taskqueue provides the in-process implementation of the TaskQueue
// port. Each enqueued task runs on its own goroutine after an optional delay,
// with a per-kind bounded retry policy. Delivery is at-most-once across
// process restarts; the stale-order sweeper is the safety net for work lost
// that way.
package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// HandlerFunc executes one stage task for one order.
type HandlerFunc func(ctx context.Context, orderID kernel.UUID) error

// RetryPolicy bounds how a failing task is retried. Backoff[i] is the fixed
// delay before attempt i+2; when attempts outnumber entries the last entry is
// reused.
//
// Failures wrapping errs.ErrObjectNotFound are never retried: the order is
// gone and no number of attempts will bring it back.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     []time.Duration
}

// DefaultRetryPolicy mirrors the pipeline's production profile: three
// attempts with growing fixed delays between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{60 * time.Second, 120 * time.Second, 180 * time.Second},
	}
}

// BackoffFor returns the delay to wait after the given failed attempt
// (1-based).
func (p RetryPolicy) BackoffFor(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if attempt > len(p.Backoff) {
		attempt = len(p.Backoff)
	}
	return p.Backoff[attempt-1]
}

type registration struct {
	handler HandlerFunc
	policy  RetryPolicy
}

// Dispatcher routes tasks to their registered handlers. Register all handlers
// during composition, before the first Enqueue; Stop cancels in-flight waits
// and blocks until every task goroutine has returned.
type Dispatcher struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[ports.TaskKind]registration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with no registered handlers.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		logger:   logger,
		handlers: make(map[ports.TaskKind]registration),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register binds a handler and retry policy to a task kind, replacing any
// previous registration.
func (d *Dispatcher) Register(kind ports.TaskKind, handler HandlerFunc, policy RetryPolicy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = registration{handler: handler, policy: policy}
}

// Enqueue schedules the task for execution after delay. It returns
// immediately; execution and retries happen on a dedicated goroutine whose
// lifetime is bound to the dispatcher, not to ctx.
func (d *Dispatcher) Enqueue(_ context.Context, task ports.Task, delay time.Duration) error {
	if err := task.OrderID.Validate(); err != nil {
		return err
	}

	d.mu.RLock()
	reg, ok := d.handlers[task.Kind]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler registered for task kind %q", task.Kind)
	}

	d.wg.Add(1)
	go d.run(reg, task, delay)
	return nil
}

// Stop cancels all pending waits and in-flight handler contexts, then blocks
// until every task goroutine has returned.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) run(reg registration, task ports.Task, delay time.Duration) {
	defer d.wg.Done()

	if !d.wait(delay) {
		return
	}

	for attempt := 1; ; attempt++ {
		err := reg.handler(d.ctx, task.OrderID)
		if err == nil {
			return
		}
		if d.ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, errs.ErrObjectNotFound) {
			d.logger.Warn("dropping task for missing order",
				slog.String("kind", string(task.Kind)),
				slog.String("order_id", task.OrderID.String()),
				slog.Any("error", err))
			return
		}
		if attempt >= reg.policy.MaxAttempts {
			d.logger.Error("task failed after exhausting retries",
				slog.String("kind", string(task.Kind)),
				slog.String("order_id", task.OrderID.String()),
				slog.Int("attempts", attempt),
				slog.Any("error", err))
			return
		}

		backoff := reg.policy.BackoffFor(attempt)
		d.logger.Warn("task failed, retrying",
			slog.String("kind", string(task.Kind)),
			slog.String("order_id", task.OrderID.String()),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.Any("error", err))

		if !d.wait(backoff) {
			return
		}
	}
}

// wait blocks for delay or until the dispatcher stops. Reports whether the
// full delay elapsed.
func (d *Dispatcher) wait(delay time.Duration) bool {
	if delay <= 0 {
		return d.ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-d.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
