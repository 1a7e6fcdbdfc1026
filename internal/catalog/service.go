package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
)

// Service exposes product catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// ImportResult summarizes a best-effort CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:  strings.TrimSpace(input.Name),
		Price: input.Price,
		Stock: input.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create product")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product created")
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list products")
	}
	return products, nil
}

// DeleteProduct removes the product and everything that references it.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete product")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "product_id", id.String()), "product deleted")
	}
	return nil
}

// ImportCSV loads products from a "nom,prix,stock" file. Rows that fail
// validation are counted and skipped; the import never aborts midway.
func (s *service) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ImportResult{}
	sawHeader := false

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "unreadable CSV payload")
		}

		if !sawHeader {
			sawHeader = true
			if looksLikeHeader(row) {
				continue
			}
		}

		input, ok := parseCSVRow(row)
		if !ok {
			result.Skipped++
			continue
		}
		if _, err := s.CreateProduct(ctx, input); err != nil {
			result.Skipped++
			continue
		}
		result.Imported++
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"imported": result.Imported,
			"skipped":  result.Skipped,
		}), "catalog import finished")
	}
	return result, nil
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "nom" || first == "name"
}

func parseCSVRow(row []string) (CreateProductInput, bool) {
	if len(row) < 3 {
		return CreateProductInput{}, false
	}
	price, err := decimal.NewFromString(strings.TrimSpace(row[1]))
	if err != nil {
		return CreateProductInput{}, false
	}
	stock, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return CreateProductInput{}, false
	}
	input := CreateProductInput{
		Name:  strings.TrimSpace(row[0]),
		Price: price,
		Stock: stock,
	}
	if err := validateProductInput(input); err != nil {
		return CreateProductInput{}, false
	}
	return input, true
}

func validateProductInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidProductData, "product name is required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeInvalidProductData, "product price must be positive")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidProductData, "product stock cannot be negative")
	}
	return nil
}
