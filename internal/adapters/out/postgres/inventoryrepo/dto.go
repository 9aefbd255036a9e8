// Package inventoryrepo provides data transfer objects and mapping functions
// for the per-product stock ledger, including the atomic allocation protocol.
package inventoryrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/product"

	"github.com/google/uuid"
)

// InventoryDTO represents the database structure for the stock ledger.
// One row per product; the row is the unit of locking during allocation.
type InventoryDTO struct {
	ProductID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	StockLevel  int
	LastUpdated time.Time
}

// TableName specifies the database table name for inventory records.
func (InventoryDTO) TableName() string {
	return "inventory_records"
}

func fromDomain(aggregate *product.InventoryRecord) InventoryDTO {
	return InventoryDTO{
		ProductID:   aggregate.ProductID().Bytes(),
		StockLevel:  aggregate.StockLevel(),
		LastUpdated: aggregate.LastUpdated(),
	}
}

func toDomain(dto InventoryDTO) (*product.InventoryRecord, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}

	return product.RestoreInventoryRecord(productID, dto.StockLevel, dto.LastUpdated)
}
