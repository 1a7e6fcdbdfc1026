package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Alioune4002/boutique-caisse/internal/cart"
	"github.com/Alioune4002/boutique-caisse/internal/catalog"
	"github.com/Alioune4002/boutique-caisse/internal/discounts"
	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
)

// Line is one priced cart entry. Subtotal already reflects the pending
// discounts targeting its product, floored at zero.
type Line struct {
	Index     int
	Product   models.Product
	Quantity  int
	Gross     decimal.Decimal
	Subtotal  decimal.Decimal
	Discounts []models.Discount
}

// Quote is a fully priced cart: its lines plus the payable total after
// global discounts.
type Quote struct {
	Lines           []Line
	GlobalDiscounts []models.Discount
	Total           decimal.Decimal
}

// Calculator prices cart states against the catalog and pending discounts.
type Calculator interface {
	WithTx(tx *gorm.DB) Calculator
	Quote(ctx context.Context, state cart.State) (*Quote, error)
}

type calculator struct {
	products  catalog.Repository
	discounts discounts.Repository
}

// NewCalculator builds a Calculator over the given catalog and discount
// repositories.
func NewCalculator(products catalog.Repository, discountRepo discounts.Repository) (Calculator, error) {
	if products == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount repository is required")
	}
	return &calculator{products: products, discounts: discountRepo}, nil
}

func (c *calculator) WithTx(tx *gorm.DB) Calculator {
	if tx == nil {
		return c
	}
	return &calculator{
		products:  c.products.WithTx(tx),
		discounts: c.discounts.WithTx(tx),
	}
}

// Quote walks the cart in insertion order. Entries pointing at products
// deleted since they were added are silently skipped, matching what the
// terminal shows the cashier.
func (c *calculator) Quote(ctx context.Context, state cart.State) (*Quote, error) {
	quote := &Quote{Total: decimal.Zero}

	for i, entry := range state {
		product, err := c.products.FindByID(ctx, entry.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		gross := product.Price.Mul(decimal.NewFromInt(int64(entry.Quantity)))
		pending, err := c.discounts.PendingForProduct(ctx, product.ID)
		if err != nil {
			return nil, err
		}

		subtotal := gross
		for _, d := range pending {
			subtotal = subtotal.Sub(discounts.Deduction(d.Kind, d.Value, subtotal))
			if subtotal.IsNegative() {
				subtotal = decimal.Zero
			}
		}

		quote.Lines = append(quote.Lines, Line{
			Index:     i,
			Product:   *product,
			Quantity:  entry.Quantity,
			Gross:     gross,
			Subtotal:  subtotal,
			Discounts: pending,
		})
		quote.Total = quote.Total.Add(subtotal)
	}

	globals, err := c.discounts.PendingGlobal(ctx)
	if err != nil {
		return nil, err
	}
	quote.GlobalDiscounts = globals
	for _, d := range globals {
		quote.Total = quote.Total.Sub(discounts.Deduction(d.Kind, d.Value, quote.Total))
		if quote.Total.IsNegative() {
			quote.Total = decimal.Zero
		}
	}

	return quote, nil
}
