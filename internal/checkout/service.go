package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Alioune4002/boutique-caisse/internal/cart"
	"github.com/Alioune4002/boutique-caisse/internal/catalog"
	"github.com/Alioune4002/boutique-caisse/internal/discounts"
	"github.com/Alioune4002/boutique-caisse/internal/pricing"
	"github.com/Alioune4002/boutique-caisse/pkg/db"
	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
	"github.com/Alioune4002/boutique-caisse/pkg/enums"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
	"github.com/Alioune4002/boutique-caisse/pkg/metrics"
)

// paymentTolerance is the largest gap between the paid sum and the cart
// total that still settles a sale.
var paymentTolerance = decimal.RequireFromString("0.01")

// PaymentInput is one (mode, amount) pair tendered at the register.
type PaymentInput struct {
	Mode   string
	Amount decimal.Decimal
}

// LineView is one cart line as shown on the register screen.
type LineView struct {
	Index     int             `json:"index"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the register's rendering of the current session cart.
type CartView struct {
	Lines []LineView      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// Receipt summarizes a settled checkout.
type Receipt struct {
	Sales    []models.Sale    `json:"sales"`
	Payments []models.Payment `json:"payments"`
	Total    decimal.Decimal  `json:"total"`
}

// Service drives the register: cart mutation, discount application and
// the payment commit. It is the only component that moves stock or
// creates Sale/Payment rows during a checkout.
type Service interface {
	View(ctx context.Context, sessionID string) (*CartView, error)
	AddLine(ctx context.Context, sessionID string, productID uuid.UUID) (*CartView, error)
	RemoveLine(ctx context.Context, sessionID string, lineIndex int) (*CartView, error)
	ClearCart(ctx context.Context, sessionID string) error
	ApplyGlobalDiscount(ctx context.Context, kind enums.DiscountKind, value decimal.Decimal) error
	ApplyLineDiscount(ctx context.Context, sessionID string, lineIndex int, kind enums.DiscountKind, value decimal.Decimal) error
	Pay(ctx context.Context, sessionID string, pairs []PaymentInput) (*Receipt, error)
}

type service struct {
	carts      cart.Store
	catalog    catalog.Repository
	discounts  discounts.Repository
	calculator pricing.Calculator
	dbClient   *db.Client
	metrics    *metrics.RegisterMetrics
	logg       *logger.Logger
}

// NewService constructs the checkout service.
func NewService(
	carts cart.Store,
	catalogRepo catalog.Repository,
	discountRepo discounts.Repository,
	calculator pricing.Calculator,
	dbClient *db.Client,
	m *metrics.RegisterMetrics,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if calculator == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		carts:      carts,
		catalog:    catalogRepo,
		discounts:  discountRepo,
		calculator: calculator,
		dbClient:   dbClient,
		metrics:    m,
		logg:       logg,
	}, nil
}

func (s *service) View(ctx context.Context, sessionID string) (*CartView, error) {
	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, state)
}

// AddLine reserves one unit: the stock decrement is a conditional UPDATE,
// so two terminals cannot take the last unit twice. If persisting the
// cart afterwards fails, the unit is put back.
func (s *service) AddLine(ctx context.Context, sessionID string, productID uuid.UUID) (*CartView, error) {
	start := time.Now()

	if _, err := s.catalog.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}

	ok, err := s.catalog.DecrementStock(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to reserve stock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "product is out of stock")
	}

	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		s.compensateStock(ctx, productID, 1)
		return nil, err
	}
	next := state.Add(productID)
	if err := s.carts.Set(ctx, sessionID, next); err != nil {
		s.compensateStock(ctx, productID, 1)
		return nil, err
	}

	s.metrics.ObserveCheckout("add_line", time.Since(start))
	return s.render(ctx, next)
}

// RemoveLine resolves lineIndex against the lines the cashier currently
// sees, takes one unit off that line and puts it back on the shelf.
func (s *service) RemoveLine(ctx context.Context, sessionID string, lineIndex int) (*CartView, error) {
	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	quote, err := s.calculator.Quote(ctx, state)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to price cart")
	}
	if lineIndex < 0 || lineIndex >= len(quote.Lines) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidLineReference, "cart line does not exist")
	}
	productID := quote.Lines[lineIndex].Product.ID

	if err := s.catalog.IncrementStock(ctx, productID, 1); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to restore stock")
	}

	next := state.Remove(productID)
	if err := s.carts.Set(ctx, sessionID, next); err != nil {
		s.compensateStock(ctx, productID, -1)
		return nil, err
	}

	return s.render(ctx, next)
}

// ClearCart puts every reserved unit back on the shelf and empties the
// session. It never fails on individual entries.
func (s *service) ClearCart(ctx context.Context, sessionID string) error {
	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	for _, entry := range state {
		if err := s.catalog.IncrementStock(ctx, entry.ProductID, entry.Quantity); err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "product_id", entry.ProductID.String()), "failed to restore stock while clearing cart")
			}
		}
	}

	return s.carts.Clear(ctx, sessionID)
}

func (s *service) ApplyGlobalDiscount(ctx context.Context, kind enums.DiscountKind, value decimal.Decimal) error {
	if err := discounts.ValidateValue(kind, value); err != nil {
		return err
	}
	record := models.Discount{Kind: kind, Value: value}
	if err := s.discounts.Create(ctx, &record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create discount")
	}
	return nil
}

func (s *service) ApplyLineDiscount(ctx context.Context, sessionID string, lineIndex int, kind enums.DiscountKind, value decimal.Decimal) error {
	if err := discounts.ValidateValue(kind, value); err != nil {
		return err
	}

	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	quote, err := s.calculator.Quote(ctx, state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to price cart")
	}
	if lineIndex < 0 || lineIndex >= len(quote.Lines) {
		return pkgerrors.New(pkgerrors.CodeInvalidLineReference, "cart line does not exist")
	}

	productID := quote.Lines[lineIndex].Product.ID
	record := models.Discount{Kind: kind, Value: value, ProductID: &productID}
	if err := s.discounts.Create(ctx, &record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create discount")
	}
	return nil
}

// Pay settles the cart. The tendered pairs must cover the current total
// within the tolerance; otherwise nothing moves except the purge of
// never-used global discounts.
func (s *service) Pay(ctx context.Context, sessionID string, pairs []PaymentInput) (*Receipt, error) {
	start := time.Now()

	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	valid := validPairs(pairs)
	sum := decimal.Zero
	for _, pair := range valid {
		sum = sum.Add(pair.Amount)
	}

	quote, err := s.calculator.Quote(ctx, state)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to price cart")
	}

	if state.IsEmpty() || len(valid) == 0 || sum.Sub(quote.Total).Abs().GreaterThanOrEqual(paymentTolerance) {
		if _, purgeErr := s.discounts.PurgeUnattachedGlobal(ctx); purgeErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to purge unused global discounts")
		}
		return nil, pkgerrors.New(pkgerrors.CodePaymentMismatch, "paid amount does not match cart total").
			WithDetails(map[string]string{
				"total": quote.Total.StringFixed(2),
				"paid":  sum.StringFixed(2),
			})
	}

	receipt := &Receipt{Total: quote.Total}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		discountRepo := s.discounts.WithTx(tx)

		for _, line := range quote.Lines {
			sale := models.Sale{
				ID:        uuid.New(),
				ProductID: line.Product.ID,
				Quantity:  line.Quantity,
				Total:     line.Subtotal,
			}
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}

			ids := make([]uuid.UUID, 0, len(line.Discounts))
			for _, d := range line.Discounts {
				ids = append(ids, d.ID)
			}
			if err := discountRepo.AttachToSale(ctx, ids, sale.ID); err != nil {
				return err
			}
			receipt.Sales = append(receipt.Sales, sale)
		}

		if len(receipt.Sales) == 0 {
			return pkgerrors.New(pkgerrors.CodePaymentMismatch, "cart holds no sellable lines")
		}

		// Global discounts ride on the first sale; every payment rides
		// on the last one. Reporting code depends on this shape.
		firstSale := receipt.Sales[0].ID
		globalIDs := make([]uuid.UUID, 0, len(quote.GlobalDiscounts))
		for _, d := range quote.GlobalDiscounts {
			globalIDs = append(globalIDs, d.ID)
		}
		if err := discountRepo.AttachToSale(ctx, globalIDs, firstSale); err != nil {
			return err
		}

		lastSale := receipt.Sales[len(receipt.Sales)-1].ID
		for _, pair := range valid {
			mode, _ := enums.ParsePaymentMode(pair.Mode)
			payment := models.Payment{
				ID:     uuid.New(),
				SaleID: lastSale,
				Mode:   mode,
				Amount: pair.Amount,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			receipt.Payments = append(receipt.Payments, payment)
		}

		if _, err := discountRepo.PurgeUnattached(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		return nil, err
	}

	for _, payment := range receipt.Payments {
		s.metrics.IncPayment(payment.Mode.String())
	}
	s.metrics.ObserveCheckout("pay", time.Since(start))
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "total", receipt.Total.StringFixed(2)), "checkout settled")
	}
	return receipt, nil
}

// validPairs keeps the tendered pairs worth counting: positive amount
// and a recognized mode.
func validPairs(pairs []PaymentInput) []PaymentInput {
	var valid []PaymentInput
	for _, pair := range pairs {
		if pair.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if _, err := enums.ParsePaymentMode(pair.Mode); err != nil {
			continue
		}
		valid = append(valid, pair)
	}
	return valid
}

func (s *service) render(ctx context.Context, state cart.State) (*CartView, error) {
	quote, err := s.calculator.Quote(ctx, state)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to price cart")
	}

	view := &CartView{Total: quote.Total, Lines: make([]LineView, 0, len(quote.Lines))}
	for i, line := range quote.Lines {
		view.Lines = append(view.Lines, LineView{
			Index:     i,
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
		})
	}
	return view, nil
}

func (s *service) compensateStock(ctx context.Context, productID uuid.UUID, delta int) {
	if err := s.catalog.IncrementStock(ctx, productID, delta); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "product_id", productID.String()), "failed to compensate stock", err)
	}
}
