package inventoryrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/product"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements InventoryRepository using GORM.
type GormInventoryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormInventoryRepository creates a new GORM inventory repository.
func NewGormInventoryRepository(db *gorm.DB, tracker aggregateTracker) *GormInventoryRepository {
	return &GormInventoryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new inventory record to the database.
func (r *GormInventoryRepository) Add(ctx context.Context, aggregate *product.InventoryRecord) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ProductID(), aggregate)
	return nil
}

// Get retrieves the inventory record for a product.
func (r *GormInventoryRepository) Get(ctx context.Context, productID kernel.UUID) (*product.InventoryRecord, error) {
	if err := productID.Validate(); err != nil {
		return nil, err
	}

	var dto InventoryDTO
	if err := r.db.WithContext(ctx).First(&dto, "product_id = ?", productID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("inventory", productID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Allocate reserves quantity units of the product's stock.
//
// The row is locked with SELECT FOR UPDATE so concurrent allocations for the
// same product serialize, then decremented with a conditional UPDATE that
// re-checks the stock level. The condition makes the decrement safe even
// against writers outside this repository: the stock level can never go
// negative.
//
// Allocate runs on whatever connection the repository was bound to. Bind it
// to an active transaction when allocating multiple lines, so a later
// shortage rolls back the earlier decrements.
func (r *GormInventoryRepository) Allocate(ctx context.Context, productID kernel.UUID, quantity int) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}

	var dto InventoryDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "product_id = ?", productID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("inventory", productID.String())
	}
	if err != nil {
		return err
	}

	if dto.StockLevel < quantity {
		return product.NewInsufficientStockError(productID, quantity, dto.StockLevel)
	}

	result := r.db.WithContext(ctx).Model(&InventoryDTO{}).
		Where("product_id = ? AND stock_level >= ?", productID.Bytes(), quantity).
		Updates(map[string]any{
			"stock_level":  gorm.Expr("stock_level - ?", quantity),
			"last_updated": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return product.NewInsufficientStockError(productID, quantity, dto.StockLevel)
	}

	return nil
}
