package discounts

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Alioune4002/boutique-caisse/pkg/enums"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
)

func TestValidateValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		kind    enums.DiscountKind
		value   string
		wantErr bool
	}{
		{name: "percentage in range", kind: enums.DiscountKindPercentage, value: "10"},
		{name: "percentage at ceiling", kind: enums.DiscountKindPercentage, value: "100"},
		{name: "percentage above 100", kind: enums.DiscountKindPercentage, value: "100.01", wantErr: true},
		{name: "fixed positive", kind: enums.DiscountKindFixed, value: "250"},
		{name: "fixed above 100 allowed", kind: enums.DiscountKindFixed, value: "150"},
		{name: "zero value", kind: enums.DiscountKindFixed, value: "0", wantErr: true},
		{name: "negative value", kind: enums.DiscountKindPercentage, value: "-5", wantErr: true},
		{name: "unknown kind", kind: enums.DiscountKind("bogus"), value: "10", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateValue(tc.kind, decimal.RequireFromString(tc.value))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if pkgerrors.As(err).Code() != pkgerrors.CodeInvalidDiscountValue {
					t.Fatalf("expected INVALID_DISCOUNT_VALUE, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDeduction(t *testing.T) {
	t.Parallel()

	base := decimal.RequireFromString("50")

	got := Deduction(enums.DiscountKindPercentage, decimal.RequireFromString("10"), base)
	if !got.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("10%% of 50 should be 5, got %s", got)
	}

	got = Deduction(enums.DiscountKindFixed, decimal.RequireFromString("5"), base)
	if !got.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("fixed 5 should deduct 5, got %s", got)
	}

	// fixed deductions can exceed the base; clamping is the caller's job
	got = Deduction(enums.DiscountKindFixed, decimal.RequireFromString("80"), base)
	if !got.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("fixed 80 should deduct 80, got %s", got)
	}
}
