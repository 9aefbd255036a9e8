package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler retrieves one order with its lines from the database.
//
// Example:
//
//	handler := NewGetOrderQueryHandler(db)
//	query, _ := NewGetOrderQuery(orderID)
//
//	resp, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get order: %w", err)
//	}
//	fmt.Printf("Order %s is %s\n", resp.ID, resp.Status)
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order lookups.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the order lookup. Returns an errs.ObjectNotFoundError when
// the order does not exist. The total price is computed from the persisted
// line snapshots, so later catalog price changes never affect it.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp, err := h.readOrder(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	lines, err := h.readLines(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.Lines = lines

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.PriceAtPurchase.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	resp.TotalPrice = total

	return resp, nil
}

func (h GetOrderQueryHandler) readOrder(ctx context.Context, orderID kernel.UUID) (GetOrderQueryResponse, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_name,
			status,
			created_at,
			updated_at,
			expected_next_deadline
		FROM orders
		WHERE id = ?
	`, orderID.String()).Row()

	var (
		id           uuid.UUID
		customerName string
		statusRaw    string
		createdAt    time.Time
		updatedAt    time.Time
		deadline     sql.NullTime
	)

	err := row.Scan(&id, &customerName, &statusRaw, &createdAt, &updatedAt, &deadline)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("orderID", orderID)
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	orderUUID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	status, err := order.StatusFromString(statusRaw)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp := GetOrderQueryResponse{
		ID:           orderUUID,
		CustomerName: customerName,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
	if deadline.Valid {
		d := deadline.Time
		resp.ExpectedNextDeadline = &d
	}

	return resp, nil
}

func (h GetOrderQueryHandler) readLines(ctx context.Context, orderID kernel.UUID) ([]OrderLineResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			product_id,
			quantity,
			price_at_purchase
		FROM order_lines
		WHERE order_id = ?
		ORDER BY id
	`, orderID.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]OrderLineResponse, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			productID uuid.UUID
			quantity  int
			price     decimal.Decimal
		)

		if err = rows.Scan(&id, &productID, &quantity, &price); err != nil {
			return nil, err
		}

		lineID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		productUUID, idErr := kernel.UUIDFromBytes(productID[:])
		if idErr != nil {
			return nil, idErr
		}

		lines = append(lines, OrderLineResponse{
			ID:              lineID,
			ProductID:       productUUID,
			Quantity:        quantity,
			PriceAtPurchase: price,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
