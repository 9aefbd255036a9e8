package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/product"
)

// InventoryRepository defines the persistence contract for the per-product
// stock ledger, including the atomic allocation protocol.
type InventoryRepository interface {
	// Add persists a new inventory record.
	Add(ctx context.Context, aggregate *product.InventoryRecord) error

	// Get retrieves the inventory record for a product.
	Get(ctx context.Context, productID kernel.UUID) (*product.InventoryRecord, error)

	// Allocate reserves quantity units of the product's stock. It acquires
	// an exclusive lock on the inventory row, compares the stock level
	// against quantity, and decrements in the same atomic unit. On shortage
	// it returns a product.InsufficientStockError without mutating.
	//
	// Allocate runs inside the caller's transaction: when a multi-line
	// allocation fails on a later line, rolling back the transaction undoes
	// the decrements of earlier lines.
	Allocate(ctx context.Context, productID kernel.UUID, quantity int) error
}
