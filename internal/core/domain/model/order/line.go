package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrLineIsNotConstructed is returned when a Line instance was not created
// through the NewLine factory function.
var ErrLineIsNotConstructed = errors.New("Line must be created via NewLine constructor")

// Line represents one order line: a quantity of a single product together
// with the price captured at purchase time.
//
// The price snapshot is immutable and deliberately decoupled from later
// catalog price changes. An order holds at most one line per product.
type Line struct {
	id              kernel.UUID
	productID       kernel.UUID
	quantity        int
	priceAtPurchase decimal.Decimal

	isConstructed bool
}

// NewLine creates an order line with validation.
// Quantity must be positive and the price snapshot must not be negative.
func NewLine(id kernel.UUID, productID kernel.UUID, quantity int, priceAtPurchase decimal.Decimal) (*Line, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := productID.Validate(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("quantity is invalid",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	if priceAtPurchase.IsNegative() {
		return nil, errs.NewValueIsInvalidErrorWithCause("priceAtPurchase is invalid",
			fmt.Errorf("%s is negative", priceAtPurchase))
	}

	return &Line{
		id:              id,
		productID:       productID,
		quantity:        quantity,
		priceAtPurchase: priceAtPurchase,
		isConstructed:   true,
	}, nil
}

// RestoreLine reconstructs an order line from persistence.
func RestoreLine(id kernel.UUID, productID kernel.UUID, quantity int, priceAtPurchase decimal.Decimal) (*Line, error) {
	return NewLine(id, productID, quantity, priceAtPurchase)
}

// Validate ensures the line was created via NewLine.
func (l *Line) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLineIsNotConstructed
	}
	return nil
}

// ID returns the line's unique identifier.
func (l *Line) ID() kernel.UUID {
	return l.id
}

// ProductID returns the identifier of the referenced product.
func (l *Line) ProductID() kernel.UUID {
	return l.productID
}

// Quantity returns the ordered quantity.
func (l *Line) Quantity() int {
	return l.quantity
}

// PriceAtPurchase returns the price snapshot captured at order creation.
func (l *Line) PriceAtPurchase() decimal.Decimal {
	return l.priceAtPurchase
}
