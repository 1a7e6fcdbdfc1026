package models

import (
	"time"

	"github.com/google/uuid"
)

// RestockEvent is the append-only audit trail for stock raises. StockBefore
// and StockAfter are computed inside the restock transaction, never supplied
// by the caller.
type RestockEvent struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Product       *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	QuantityAdded int       `gorm:"column:quantity_added;not null"`
	StockBefore   int       `gorm:"column:stock_before;not null"`
	StockAfter    int       `gorm:"column:stock_after;not null"`
	Actor         *string   `gorm:"column:actor"`
	RestockedAt   time.Time `gorm:"column:restocked_at;autoCreateTime"`
}
