// Package queries contains the read side of the service. Query handlers
// bypass the aggregate repositories and read projection rows straight from
// the database, returning plain response structs shaped for the API.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves one order with its lines and current pipeline
// position.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for the given order.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the order to look up.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryResponse is the read model for one order.
type GetOrderQueryResponse struct {
	ID                   kernel.UUID
	CustomerName         string
	Status               order.Status
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ExpectedNextDeadline *time.Time
	Lines                []OrderLineResponse
	TotalPrice           decimal.Decimal
}

// OrderLineResponse is the read model for one order line. PriceAtPurchase is
// the snapshot captured at creation, not the live catalog price.
type OrderLineResponse struct {
	ID              kernel.UUID
	ProductID       kernel.UUID
	Quantity        int
	PriceAtPurchase decimal.Decimal
}
