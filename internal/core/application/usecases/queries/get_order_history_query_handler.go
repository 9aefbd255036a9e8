package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderHistoryQueryHandler retrieves the append-only transition ledger of
// one order. Because the ledger rows are never updated or deleted, the
// response is always sufficient to audit what happened to the order.
type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderHistoryQueryHandler creates a handler for history lookups.
func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle returns the order's history entries ordered by timestamp ascending.
// Returns an errs.ObjectNotFoundError when the order does not exist.
func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) ([]OrderHistoryEntryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if err := h.ensureOrderExists(ctx, query.OrderID()); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			from_status,
			to_status,
			timestamp,
			notes
		FROM order_history
		WHERE order_id = ?
		ORDER BY timestamp, id
	`, query.OrderID().String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]OrderHistoryEntryResponse, 0)
	for rows.Next() {
		var (
			fromRaw   sql.NullString
			toRaw     string
			timestamp time.Time
			notes     string
		)

		if err = rows.Scan(&fromRaw, &toRaw, &timestamp, &notes); err != nil {
			return nil, err
		}

		entry := OrderHistoryEntryResponse{
			Timestamp: timestamp,
			Notes:     notes,
		}

		entry.ToStatus, err = order.StatusFromString(toRaw)
		if err != nil {
			return nil, err
		}

		if fromRaw.Valid {
			from, fromErr := order.StatusFromString(fromRaw.String)
			if fromErr != nil {
				return nil, fromErr
			}
			entry.FromStatus = &from
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (h GetOrderHistoryQueryHandler) ensureOrderExists(ctx context.Context, orderID kernel.UUID) error {
	row := h.db.WithContext(ctx).Raw(
		`SELECT 1 FROM orders WHERE id = ?`, orderID.String()).Row()

	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NewObjectNotFoundError("orderID", orderID)
	}
	return err
}
