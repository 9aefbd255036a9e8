// Package product provides the catalog-side aggregates the pipeline depends
// on: Product, whose current price is snapshotted into order lines at
// creation time, and InventoryRecord, the per-product stock ledger that
// allocation decrements.
package product

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrProductIsNotConstructed is returned when a Product instance was not
// created through the NewProduct factory function.
var ErrProductIsNotConstructed = errors.New("Product must be created via NewProduct constructor")

// Product is a catalog item. The catalog itself is owned by an external
// collaborator; the pipeline only reads products to capture price snapshots
// and to name items in failure notes.
type Product struct {
	id    kernel.UUID
	sku   string
	name  string
	price decimal.Decimal

	isConstructed bool
}

// NewProduct creates a product with validation. SKU and name are required
// and the price must not be negative.
func NewProduct(id kernel.UUID, sku, name string, price decimal.Decimal) (*Product, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if sku == "" {
		return nil, errs.NewValueIsRequiredError("sku")
	}
	if name == "" {
		return nil, errs.NewValueIsRequiredError("name")
	}
	if price.IsNegative() {
		return nil, errs.NewValueIsInvalidErrorWithCause("price is invalid",
			fmt.Errorf("%s is negative", price))
	}

	return &Product{
		id:            id,
		sku:           sku,
		name:          name,
		price:         price,
		isConstructed: true,
	}, nil
}

// RestoreProduct reconstructs a product from persistence.
func RestoreProduct(id kernel.UUID, sku, name string, price decimal.Decimal) (*Product, error) {
	return NewProduct(id, sku, name, price)
}

// Validate ensures the product was created via NewProduct.
func (p *Product) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrProductIsNotConstructed
	}
	return nil
}

// ID returns the product's unique identifier.
func (p *Product) ID() kernel.UUID {
	return p.id
}

// SKU returns the unique stock keeping unit.
func (p *Product) SKU() string {
	return p.sku
}

// Name returns the display name.
func (p *Product) Name() string {
	return p.name
}

// Price returns the current catalog price. Orders never hold this live
// value; they capture it into Line.PriceAtPurchase at creation.
func (p *Product) Price() decimal.Decimal {
	return p.price
}
