package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alioune4002/boutique-caisse/pkg/enums"
)

// Payment records one settled amount against a sale. A split payment yields
// several rows for the same sale.
type Payment struct {
	ID     uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	SaleID uuid.UUID         `gorm:"column:sale_id;type:uuid;not null"`
	Sale   *Sale             `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Mode   enums.PaymentMode `gorm:"column:mode;not null"`
	Amount decimal.Decimal   `gorm:"column:amount;type:numeric(10,2);not null"`
	PaidAt time.Time         `gorm:"column:paid_at;autoCreateTime"`
}
