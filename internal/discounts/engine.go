package discounts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Alioune4002/boutique-caisse/pkg/enums"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// ValidateValue rejects discount values that make no arithmetic sense.
// Percentages must sit in (0, 100]; fixed amounts only need to be positive.
func ValidateValue(kind enums.DiscountKind, value decimal.Decimal) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInvalidDiscountValue, fmt.Sprintf("unknown discount kind %q", kind))
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeInvalidDiscountValue, "discount value must be positive")
	}
	if kind == enums.DiscountKindPercentage && value.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeInvalidDiscountValue, "percentage discount cannot exceed 100")
	}
	return nil
}

// Deduction returns the raw amount a discount removes from base. The result
// can exceed base for fixed discounts; callers clamp the remainder at zero.
func Deduction(kind enums.DiscountKind, value, base decimal.Decimal) decimal.Decimal {
	if kind == enums.DiscountKindPercentage {
		return base.Mul(value).Div(hundred)
	}
	return value
}
