package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order together with its lines and the creation
	// history entry, atomically.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the order's current status fields and appends any
	// history entries recorded since the aggregate was loaded. Existing
	// history rows are never touched.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate with its lines and full history.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllStale retrieves orders in a pipeline-active status whose
	// expected-next deadline lies before asOf. Used by the stale-order
	// sweeper.
	GetAllStale(ctx context.Context, asOf time.Time) ([]*order.Order, error)
}
