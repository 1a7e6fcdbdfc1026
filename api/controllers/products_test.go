package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogsvc "github.com/Alioune4002/boutique-caisse/internal/catalog"
	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
)

type stubCatalog struct {
	product  *models.Product
	products []models.Product
	result   *catalogsvc.ImportResult
	err      error

	gotInput catalogsvc.CreateProductInput
	gotID    uuid.UUID
}

func (s *stubCatalog) CreateProduct(_ context.Context, input catalogsvc.CreateProductInput) (*models.Product, error) {
	s.gotInput = input
	return s.product, s.err
}

func (s *stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.gotID = id
	return s.product, s.err
}

func (s *stubCatalog) ListProducts(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s *stubCatalog) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.gotID = id
	return s.err
}

func (s *stubCatalog) ImportCSV(context.Context, io.Reader) (*catalogsvc.ImportResult, error) {
	return s.result, s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateProductCreated(t *testing.T) {
	stub := &stubCatalog{product: &models.Product{
		ID:    uuid.New(),
		Name:  "bread",
		Price: decimal.RequireFromString("2.50"),
		Stock: 3,
	}}

	body := `{"name":"bread","price":"2.50","stock":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	CreateProduct(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if stub.gotInput.Name != "bread" || stub.gotInput.Stock != 3 {
		t.Fatalf("unexpected input forwarded: %+v", stub.gotInput)
	}
}

func TestCreateProductInvalidDataStatus(t *testing.T) {
	stub := &stubCatalog{err: pkgerrors.New(pkgerrors.CodeInvalidProductData, "product price must be positive")}

	body := `{"name":"bread","price":"-1","stock":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	CreateProduct(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "INVALID_PRODUCT_DATA" {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
}

func TestCreateProductRejectsUnknownFields(t *testing.T) {
	stub := &stubCatalog{}
	body := `{"name":"bread","price":"2.50","stock":3,"bogus":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	CreateProduct(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDeleteProductParsesID(t *testing.T) {
	stub := &stubCatalog{}
	id := uuid.New()

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+id.String(), nil), "productId", id.String())
	resp := httptest.NewRecorder()
	DeleteProduct(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if stub.gotID != id {
		t.Fatalf("expected id forwarded, got %s", stub.gotID)
	}

	req = withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/products/nope", nil), "productId", "nope")
	resp = httptest.NewRecorder()
	DeleteProduct(stub, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", resp.Code)
	}
}

func TestImportProductsReportsCounts(t *testing.T) {
	stub := &stubCatalog{result: &catalogsvc.ImportResult{Imported: 2, Skipped: 1}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", strings.NewReader("nom,prix,stock\n"))
	resp := httptest.NewRecorder()
	ImportProducts(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var envelope struct {
		Data catalogsvc.ImportResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Imported != 2 || envelope.Data.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", envelope.Data)
	}
}
