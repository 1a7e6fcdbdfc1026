package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
)

// Repository persists catalog products and their stock counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Save(ctx context.Context, product *models.Product) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	FindBelowStock(ctx context.Context, threshold int) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var record models.Product
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context) ([]models.Product, error) {
	var records []models.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// DeleteCascade removes a product together with its sales history,
// payments and discounts. The deletes run inside one transaction so a
// partial failure never strands orphaned rows.
func (r *repository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var saleIDs []uuid.UUID
		if err := tx.Model(&models.Sale{}).
			Where("product_id = ?", id).
			Pluck("id", &saleIDs).Error; err != nil {
			return err
		}
		if len(saleIDs) > 0 {
			if err := tx.Where("sale_id IN ?", saleIDs).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("sale_id IN ?", saleIDs).Delete(&models.Discount{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Discount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.RestockEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Sale{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
}

// DecrementStock takes one unit off the shelf. Returns false when the
// product is already out of stock; the guard and the write are a single
// conditional UPDATE so concurrent terminals cannot oversell.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= 1", id).
		UpdateColumn("stock", gorm.Expr("stock - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}

func (r *repository) FindBelowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var records []models.Product
	err := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC, name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
