package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alioune4002/boutique-caisse/pkg/enums"
)

// Discount reduces a monetary base by a percentage or a fixed amount.
//
// Targeting rules:
//   - ProductID nil, SaleID nil: global, applies to the whole cart total.
//   - ProductID set, SaleID nil: pending, applies to that product's line
//     until a checkout commit attaches it to the resulting sale.
//   - SaleID set: consumed; no longer considered by pricing.
type Discount struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Kind      enums.DiscountKind `gorm:"column:kind;not null"`
	Value     decimal.Decimal    `gorm:"column:value;type:numeric(10,2);not null"`
	ProductID *uuid.UUID         `gorm:"column:product_id;type:uuid"`
	SaleID    *uuid.UUID         `gorm:"column:sale_id;type:uuid"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// IsGlobal reports whether the discount applies to the whole cart.
func (d Discount) IsGlobal() bool {
	return d.ProductID == nil && d.SaleID == nil
}

// IsPending reports whether the discount targets a product but no sale yet.
func (d Discount) IsPending() bool {
	return d.ProductID != nil && d.SaleID == nil
}
