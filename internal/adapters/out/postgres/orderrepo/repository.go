package orderrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order with its lines and creation history entry.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	aggregate.ClearUncommittedHistory()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update persists the order's mutable fields and appends the history entries
// recorded since the aggregate was loaded. Lines and existing history rows
// are immutable and never touched.
//
// When the aggregate carries unpersisted transitions, the write is conditional
// on the stored status still being the one the first transition started from.
// A concurrent writer that advanced the order in between makes the condition
// fail, and Update returns a ConcurrentModificationError instead of
// overwriting the newer state.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	updates := map[string]any{
		"status":                 aggregate.Status().String(),
		"updated_at":             aggregate.UpdatedAt(),
		"expected_next_deadline": aggregate.ExpectedNextDeadline(),
	}

	query := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", aggregate.ID().Bytes())
	uncommitted := aggregate.UncommittedHistory()
	if len(uncommitted) > 0 && uncommitted[0].FromStatus() != nil {
		query = query.Where("status = ?", uncommitted[0].FromStatus().String())
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderDTO{}).
			Where("id = ?", aggregate.ID().Bytes()).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return errs.NewConcurrentModificationError("order", aggregate.ID().String())
	}

	if len(uncommitted) > 0 {
		rows := make([]OrderHistoryDTO, 0, len(uncommitted))
		for _, entry := range uncommitted {
			rows = append(rows, historyFromDomain(aggregate.ID(), entry))
		}
		if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return err
		}
	}

	aggregate.ClearUncommittedHistory()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID with its lines and full history.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.preloaded(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllStale retrieves orders in a pipeline-active status whose expected
// deadline lies before asOf.
func (r *GormOrderRepository) GetAllStale(ctx context.Context, asOf time.Time) ([]*order.Order, error) {
	statuses := []string{
		order.Pending.String(),
		order.Processing.String(),
		order.Packaging.String(),
		order.Shipped.String(),
	}

	var dtos []OrderDTO
	err := r.preloaded(ctx).
		Where("status IN ? AND expected_next_deadline IS NOT NULL AND expected_next_deadline < ?",
			statuses, asOf).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, toErr := toDomain(dto)
		if toErr != nil {
			return nil, toErr
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_lines.id")
		}).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_history.timestamp, order_history.id")
		})
}
