package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog_repo.db")), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Product{},
		&models.Sale{},
		&models.Payment{},
		&models.Discount{},
		&models.RestockEvent{},
	))
	return conn
}

func seedProduct(t *testing.T, repo Repository, name string, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestListOrdersByName(t *testing.T) {
	repo := NewRepository(setupCatalogTestDB(t))
	ctx := context.Background()

	seedProduct(t, repo, "the", "1.00", 1)
	seedProduct(t, repo, "cafe", "2.00", 1)
	seedProduct(t, repo, "jus", "3.00", 1)

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "cafe", listed[0].Name)
	assert.Equal(t, "jus", listed[1].Name)
	assert.Equal(t, "the", listed[2].Name)
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewRepository(setupCatalogTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCreateAssignsID(t *testing.T) {
	repo := NewRepository(setupCatalogTestDB(t))

	product := seedProduct(t, repo, "croissant", "1.20", 8)
	assert.NotEqual(t, uuid.Nil, product.ID)

	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "croissant", found.Name)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("1.20")))
}

func TestIncrementStock(t *testing.T) {
	repo := NewRepository(setupCatalogTestDB(t))
	ctx := context.Background()

	product := seedProduct(t, repo, "eau", "0.80", 2)
	require.NoError(t, repo.IncrementStock(ctx, product.ID, 7))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, found.Stock)
}

func TestFindBelowStockThresholdIsInclusive(t *testing.T) {
	repo := NewRepository(setupCatalogTestDB(t))
	ctx := context.Background()

	seedProduct(t, repo, "sirop", "4.00", 5)
	seedProduct(t, repo, "lait", "1.10", 3)
	seedProduct(t, repo, "farine", "2.30", 6)

	low, err := repo.FindBelowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "lait", low[0].Name)
	assert.Equal(t, "sirop", low[1].Name)
}
