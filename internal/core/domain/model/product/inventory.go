package product

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrInventoryRecordIsNotConstructed is returned when an InventoryRecord
	// was not created through the NewInventoryRecord factory function.
	ErrInventoryRecordIsNotConstructed = errors.New(
		"InventoryRecord must be created via NewInventoryRecord constructor",
	)

	// ErrInsufficientStock classifies allocation failures caused by stock
	// shortage. Use errors.Is against it; the concrete error is
	// InsufficientStockError, which carries the shortfall details.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports that an allocation requested more units than
// the inventory record holds. It unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID kernel.UUID
	Requested int
	Available int
}

// NewInsufficientStockError creates an InsufficientStockError for one product.
func NewInsufficientStockError(productID kernel.UUID, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InventoryRecord is the per-product stock ledger, one-to-one with Product.
// Its stock level never goes negative: allocation is a conditional decrement
// executed atomically by the repository, never a post-hoc correction.
//
// The aggregate itself is a read/seed model; the decrement happens in the
// store under a row-level exclusive lock so that concurrent allocations for
// the same product serialize correctly.
type InventoryRecord struct {
	productID   kernel.UUID
	stockLevel  int
	lastUpdated time.Time

	isConstructed bool
}

// NewInventoryRecord creates an inventory record with validation.
// The stock level must not be negative.
func NewInventoryRecord(productID kernel.UUID, stockLevel int) (*InventoryRecord, error) {
	if err := productID.Validate(); err != nil {
		return nil, err
	}
	if stockLevel < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("stockLevel is invalid",
			fmt.Errorf("%d is negative", stockLevel))
	}

	return &InventoryRecord{
		productID:     productID,
		stockLevel:    stockLevel,
		lastUpdated:   time.Now().UTC(),
		isConstructed: true,
	}, nil
}

// RestoreInventoryRecord reconstructs an inventory record from persistence.
func RestoreInventoryRecord(productID kernel.UUID, stockLevel int, lastUpdated time.Time) (*InventoryRecord, error) {
	record, err := NewInventoryRecord(productID, stockLevel)
	if err != nil {
		return nil, err
	}
	record.lastUpdated = lastUpdated
	return record, nil
}

// Validate ensures the record was created via NewInventoryRecord.
func (r *InventoryRecord) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrInventoryRecordIsNotConstructed
	}
	return nil
}

// ProductID returns the identifier of the product this record tracks.
func (r *InventoryRecord) ProductID() kernel.UUID {
	return r.productID
}

// StockLevel returns the number of units currently available.
func (r *InventoryRecord) StockLevel() int {
	return r.stockLevel
}

// LastUpdated returns when the stock level last changed.
func (r *InventoryRecord) LastUpdated() time.Time {
	return r.lastUpdated
}

// CanAllocate reports whether the record holds enough stock for quantity.
// This is a read-side convenience; the authoritative check is the
// repository's conditional decrement.
func (r *InventoryRecord) CanAllocate(quantity int) bool {
	return quantity > 0 && r.stockLevel >= quantity
}
