package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// TaskKind identifies one stage of the fulfillment pipeline as a schedulable
// unit of work.
type TaskKind string

const (
	// TaskProcessOrder validates an order and allocates inventory.
	TaskProcessOrder TaskKind = "process_order"

	// TaskShipOrder ships a packaged order.
	TaskShipOrder TaskKind = "ship_order"

	// TaskDeliverOrder delivers a shipped order.
	TaskDeliverOrder TaskKind = "deliver_order"
)

// Task is one stage-work item keyed by order id. Tasks may be delivered more
// than once or late; stage workers guard against that with their status
// precondition check.
type Task struct {
	Kind    TaskKind
	OrderID kernel.UUID
}

// TaskQueue is the scheduler collaborator contract: it delivers stage-work
// items to stage workers asynchronously, with optional delayed execution.
// Per-task bounded retry with fixed backoff is the queue's responsibility,
// not the stage worker's.
type TaskQueue interface {
	// Enqueue schedules the task for execution after delay (zero means as
	// soon as possible). Enqueue never blocks on task execution.
	Enqueue(ctx context.Context, task Task, delay time.Duration) error
}
