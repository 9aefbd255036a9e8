// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. The aggregate spans three tables: the order row, its
// lines, and its append-only history ledger.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// CreatedAt and UpdatedAt are owned by the domain model, so GORM's automatic
// timestamping is disabled for them.
type OrderDTO struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerName         string
	Status               string     `gorm:"type:varchar(16);index"`
	CreatedAt            time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime:false"`
	ExpectedNextDeadline *time.Time `gorm:"index"`

	Lines   []OrderLineDTO    `gorm:"foreignKey:OrderID;references:ID"`
	History []OrderHistoryDTO `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderLineDTO represents one order line row with its immutable price
// snapshot.
type OrderLineDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"type:uuid;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;index"`
	Quantity        int
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(12,2)"`
}

// TableName specifies the database table name for order lines.
func (OrderLineDTO) TableName() string {
	return "order_lines"
}

// OrderHistoryDTO represents one audit record. Rows are insert-only; the
// autoincrement key preserves insertion order for entries sharing a
// timestamp.
type OrderHistoryDTO struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;index"`
	FromStatus *string   `gorm:"type:varchar(16)"`
	ToStatus   string    `gorm:"type:varchar(16)"`
	Timestamp  time.Time `gorm:"index"`
	Notes      string
}

// TableName specifies the database table name for order history entries.
func (OrderHistoryDTO) TableName() string {
	return "order_history"
}

// fromDomain converts an order aggregate to its database representation,
// including all lines and the full history. Used on Add; Update writes the
// order row and the uncommitted history suffix separately.
func fromDomain(aggregate *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:                   aggregate.ID().Bytes(),
		CustomerName:         aggregate.CustomerName(),
		Status:               aggregate.Status().String(),
		CreatedAt:            aggregate.CreatedAt(),
		UpdatedAt:            aggregate.UpdatedAt(),
		ExpectedNextDeadline: aggregate.ExpectedNextDeadline(),
	}

	for _, line := range aggregate.Lines() {
		dto.Lines = append(dto.Lines, lineFromDomain(aggregate.ID(), line))
	}
	for _, entry := range aggregate.History() {
		dto.History = append(dto.History, historyFromDomain(aggregate.ID(), entry))
	}

	return dto
}

func lineFromDomain(orderID kernel.UUID, line *order.Line) OrderLineDTO {
	return OrderLineDTO{
		ID:              line.ID().Bytes(),
		OrderID:         orderID.Bytes(),
		ProductID:       line.ProductID().Bytes(),
		Quantity:        line.Quantity(),
		PriceAtPurchase: line.PriceAtPurchase(),
	}
}

func historyFromDomain(orderID kernel.UUID, entry order.HistoryEntry) OrderHistoryDTO {
	var fromStatus *string
	if from := entry.FromStatus(); from != nil {
		s := from.String()
		fromStatus = &s
	}

	return OrderHistoryDTO{
		OrderID:    orderID.Bytes(),
		FromStatus: fromStatus,
		ToStatus:   entry.ToStatus().String(),
		Timestamp:  entry.Timestamp(),
		Notes:      entry.Notes(),
	}
}

// toDomain converts database rows to an order aggregate using RestoreOrder.
// History rows must already be ordered by timestamp ascending.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	lines := make([]*order.Line, 0, len(dto.Lines))
	for _, lineDTO := range dto.Lines {
		line, lineErr := lineToDomain(lineDTO)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	history := make([]order.HistoryEntry, 0, len(dto.History))
	for _, entryDTO := range dto.History {
		entry, entryErr := historyToDomain(entryDTO)
		if entryErr != nil {
			return nil, entryErr
		}
		history = append(history, entry)
	}

	return order.RestoreOrder(
		id,
		dto.CustomerName,
		status,
		dto.CreatedAt,
		dto.UpdatedAt,
		dto.ExpectedNextDeadline,
		lines,
		history,
	)
}

func lineToDomain(dto OrderLineDTO) (*order.Line, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreLine(id, productID, dto.Quantity, dto.PriceAtPurchase)
}

func historyToDomain(dto OrderHistoryDTO) (order.HistoryEntry, error) {
	var fromStatus *order.Status
	if dto.FromStatus != nil {
		from, err := order.StatusFromString(*dto.FromStatus)
		if err != nil {
			return order.HistoryEntry{}, err
		}
		fromStatus = &from
	}

	toStatus, err := order.StatusFromString(dto.ToStatus)
	if err != nil {
		return order.HistoryEntry{}, err
	}

	return order.RestoreHistoryEntry(fromStatus, toStatus, dto.Timestamp, dto.Notes)
}
