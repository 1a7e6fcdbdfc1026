package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Alioune4002/boutique-caisse/internal/cart"
	"github.com/Alioune4002/boutique-caisse/internal/catalog"
	"github.com/Alioune4002/boutique-caisse/internal/checkout"
	"github.com/Alioune4002/boutique-caisse/internal/discounts"
	"github.com/Alioune4002/boutique-caisse/internal/pricing"
	"github.com/Alioune4002/boutique-caisse/internal/reporting"
	"github.com/Alioune4002/boutique-caisse/internal/restock"
	"github.com/Alioune4002/boutique-caisse/pkg/config"
	"github.com/Alioune4002/boutique-caisse/pkg/db"
	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	client, err := db.New(ctx, config.DBConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "router_test.db"),
	}, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(
		&models.Product{},
		&models.Sale{},
		&models.Payment{},
		&models.Discount{},
		&models.RestockEvent{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	catalogRepo := catalog.NewRepository(client.DB())
	discountRepo := discounts.NewRepository(client.DB())
	calculator, err := pricing.NewCalculator(catalogRepo, discountRepo)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	catalogService, err := catalog.NewService(catalogRepo, nil)
	if err != nil {
		t.Fatalf("catalog.NewService: %v", err)
	}
	checkoutService, err := checkout.NewService(cart.NewMemoryStore(), catalogRepo, discountRepo, calculator, client, nil, nil)
	if err != nil {
		t.Fatalf("checkout.NewService: %v", err)
	}
	restockService, err := restock.NewService(catalogRepo, client, config.RestockConfig{ThresholdMin: 5, TargetStock: 20}, nil, nil)
	if err != nil {
		t.Fatalf("restock.NewService: %v", err)
	}
	reportingService, err := reporting.NewService(client, nil)
	if err != nil {
		t.Fatalf("reporting.NewService: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.Cart.SessionTTL = time.Hour

	return NewRouter(cfg, nil, stubPinger{}, stubPinger{}, catalogService, checkoutService, restockService, reportingService)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestRouterFullCheckoutFlow(t *testing.T) {
	router := newTestRouter(t)

	// create a product
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/products",
		strings.NewReader(`{"name":"espresso","price":"2.50","stock":10}`)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	var created struct {
		Data models.Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created product: %v", err)
	}

	// the first cart request mints the session cookie
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines",
		strings.NewReader(`{"product_id":"`+created.Data.ID.String()+`"}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("add line: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected a session cookie, got %d", len(cookies))
	}
	session := cookies[0]

	// pay with the same session
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/pay",
		strings.NewReader(`{"payments":[{"mode":"cash","amount":"2.50"}]}`))
	req.AddCookie(session)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("pay: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}

	// the settled payment shows up in the report
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("reports: expected 200, got %d", resp.Code)
	}
	var report struct {
		Data struct {
			Total  string            `json:"total"`
			ByMode map[string]string `json:"by_mode"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Data.ByMode["cash"] != "2.5" && report.Data.ByMode["cash"] != "2.50" {
		t.Fatalf("expected cash revenue 2.50, got %q", report.Data.ByMode["cash"])
	}
}
