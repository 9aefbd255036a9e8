package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
)

// Error is the uniform error body returned by all endpoints.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateOrderLine is one requested line in an order creation request.
type CreateOrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	CustomerName string            `json:"customer_name"`
	Lines        []CreateOrderLine `json:"lines"`
}

// CreateOrderResponse acknowledges an accepted order.
type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
}

// BulkCreateOrdersRequest is the body of POST /api/v1/orders/bulk.
type BulkCreateOrdersRequest struct {
	Orders []CreateOrderRequest `json:"orders"`
}

// Bulk item outcomes. The endpoint answers 207 Multi-Status and reports each
// order independently, so one bad item never sinks the batch.
const (
	BulkItemAccepted        = "ACCEPTED"
	BulkItemValidationError = "VALIDATION_ERROR"
	BulkItemCreationFailed  = "CREATION_FAILED"
)

// BulkCreateOrderResult is the per-item outcome in a bulk creation response.
type BulkCreateOrderResult struct {
	Index   int    `json:"index"`
	Status  string `json:"status"`
	OrderID string `json:"order_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OrderLine is one order line in a lookup response.
type OrderLine struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"`
}

// Order is the body of GET /api/v1/orders/:id.
type Order struct {
	ID                   string      `json:"id"`
	CustomerName         string      `json:"customer_name"`
	Status               string      `json:"status"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
	ExpectedNextDeadline *time.Time  `json:"expected_next_deadline,omitempty"`
	Lines                []OrderLine `json:"lines"`
	TotalPrice           string      `json:"total_price"`
}

// HistoryEntry is one audit record in GET /api/v1/orders/:id/history.
type HistoryEntry struct {
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Timestamp  time.Time `json:"timestamp"`
	Notes      string    `json:"notes"`
}

func orderFromQueryResponse(resp queries.GetOrderQueryResponse) Order {
	out := Order{
		ID:                   resp.ID.String(),
		CustomerName:         resp.CustomerName,
		Status:               resp.Status.String(),
		CreatedAt:            resp.CreatedAt,
		UpdatedAt:            resp.UpdatedAt,
		ExpectedNextDeadline: resp.ExpectedNextDeadline,
		Lines:                make([]OrderLine, 0, len(resp.Lines)),
		TotalPrice:           resp.TotalPrice.StringFixed(2),
	}

	for _, line := range resp.Lines {
		out.Lines = append(out.Lines, OrderLine{
			ID:              line.ID.String(),
			ProductID:       line.ProductID.String(),
			Quantity:        line.Quantity,
			PriceAtPurchase: line.PriceAtPurchase.StringFixed(2),
		})
	}

	return out
}

func historyFromQueryResponse(entries []queries.OrderHistoryEntryResponse) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		var fromStatus *string
		if entry.FromStatus != nil {
			s := entry.FromStatus.String()
			fromStatus = &s
		}
		out = append(out, HistoryEntry{
			FromStatus: fromStatus,
			ToStatus:   entry.ToStatus.String(),
			Timestamp:  entry.Timestamp,
			Notes:      entry.Notes,
		})
	}
	return out
}
