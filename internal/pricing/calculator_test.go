package pricing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Alioune4002/boutique-caisse/internal/cart"
	"github.com/Alioune4002/boutique-caisse/internal/catalog"
	"github.com/Alioune4002/boutique-caisse/internal/discounts"
	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
	"github.com/Alioune4002/boutique-caisse/pkg/enums"
)

func newTestCalculator(t *testing.T, products ...models.Product) (Calculator, discounts.Repository) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "pricing_test.db")), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Discount{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	catalogRepo := catalog.NewRepository(conn)
	for i := range products {
		p := products[i]
		if err := catalogRepo.Create(context.Background(), &p); err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	repo := discounts.NewRepository(conn)
	calc, err := NewCalculator(catalogRepo, repo)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return calc, repo
}

func addDiscount(t *testing.T, repo discounts.Repository, kind enums.DiscountKind, value string, productID *uuid.UUID, at time.Time) {
	t.Helper()
	if err := repo.Create(context.Background(), &models.Discount{
		Kind:      kind,
		Value:     decimal.RequireFromString(value),
		ProductID: productID,
		CreatedAt: at,
	}); err != nil {
		t.Fatalf("failed to create discount: %v", err)
	}
}

func TestQuoteAppliesGlobalDiscountsInOrder(t *testing.T) {
	product := models.Product{ID: uuid.New(), Name: "espresso", Price: decimal.RequireFromString("25"), Stock: 10}
	calc, repo := newTestCalculator(t, product)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	addDiscount(t, repo, enums.DiscountKindPercentage, "10", nil, base)
	addDiscount(t, repo, enums.DiscountKindFixed, "5", nil, base.Add(time.Minute))

	state := cart.State{}.Add(product.ID).Add(product.ID)
	quote, err := calc.Quote(ctx, state)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	// 50 gross, minus 10% -> 45, minus fixed 5 -> 40
	if !quote.Total.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("expected total 40, got %s", quote.Total)
	}
	if len(quote.Lines) != 1 || !quote.Lines[0].Subtotal.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("line subtotal should stay gross when no line discount applies: %+v", quote.Lines)
	}
	if len(quote.GlobalDiscounts) != 2 {
		t.Fatalf("expected 2 global discounts on the quote, got %d", len(quote.GlobalDiscounts))
	}
}

func TestQuoteLineDiscountsStayOnTheirProduct(t *testing.T) {
	coffee := models.Product{ID: uuid.New(), Name: "coffee", Price: decimal.RequireFromString("10"), Stock: 5}
	tea := models.Product{ID: uuid.New(), Name: "tea", Price: decimal.RequireFromString("8"), Stock: 5}
	calc, repo := newTestCalculator(t, coffee, tea)
	ctx := context.Background()

	addDiscount(t, repo, enums.DiscountKindPercentage, "50", &coffee.ID, time.Now().UTC())

	state := cart.State{}.Add(coffee.ID).Add(tea.ID)
	quote, err := calc.Quote(ctx, state)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if len(quote.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(quote.Lines))
	}
	if !quote.Lines[0].Subtotal.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("discounted coffee line should be 5, got %s", quote.Lines[0].Subtotal)
	}
	if !quote.Lines[1].Subtotal.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("tea line must be untouched, got %s", quote.Lines[1].Subtotal)
	}
	if !quote.Total.Equal(decimal.RequireFromString("13")) {
		t.Fatalf("expected total 13, got %s", quote.Total)
	}
}

func TestQuoteFloorsLineAtZero(t *testing.T) {
	product := models.Product{ID: uuid.New(), Name: "sandwich", Price: decimal.RequireFromString("4.50"), Stock: 5}
	calc, repo := newTestCalculator(t, product)

	addDiscount(t, repo, enums.DiscountKindFixed, "80", &product.ID, time.Now().UTC())

	quote, err := calc.Quote(context.Background(), cart.State{}.Add(product.ID))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !quote.Lines[0].Subtotal.IsZero() {
		t.Fatalf("oversized fixed discount should floor the line at zero, got %s", quote.Lines[0].Subtotal)
	}
	if !quote.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", quote.Total)
	}
}

func TestQuoteSkipsDeletedProducts(t *testing.T) {
	product := models.Product{ID: uuid.New(), Name: "juice", Price: decimal.RequireFromString("3"), Stock: 5}
	calc, _ := newTestCalculator(t, product)

	state := cart.State{}.Add(uuid.New()).Add(product.ID)
	quote, err := calc.Quote(context.Background(), state)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("expected deleted product to be skipped, got %d lines", len(quote.Lines))
	}
	if quote.Lines[0].Index != 1 {
		t.Fatalf("surviving line should keep its cart index, got %d", quote.Lines[0].Index)
	}
	if !quote.Total.Equal(decimal.RequireFromString("3")) {
		t.Fatalf("expected total 3, got %s", quote.Total)
	}
}
