package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
)

// Repository persists discount rows and the attach/purge lifecycle around
// checkout commits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, discount *models.Discount) error
	PendingForProduct(ctx context.Context, productID uuid.UUID) ([]models.Discount, error)
	PendingGlobal(ctx context.Context) ([]models.Discount, error)
	AttachToSale(ctx context.Context, discountIDs []uuid.UUID, saleID uuid.UUID) error
	PurgeUnattached(ctx context.Context) (int64, error)
	PurgeUnattachedGlobal(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a discount repository backed by the provided DB.
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

func (r *repository) Create(ctx context.Context, discount *models.Discount) error {
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(discount).Error
}

func (r *repository) PendingForProduct(ctx context.Context, productID uuid.UUID) ([]models.Discount, error) {
	var records []models.Discount
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND sale_id IS NULL", productID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) PendingGlobal(ctx context.Context) ([]models.Discount, error) {
	var records []models.Discount
	err := r.db.WithContext(ctx).
		Where("product_id IS NULL AND sale_id IS NULL").
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) AttachToSale(ctx context.Context, discountIDs []uuid.UUID, saleID uuid.UUID) error {
	if len(discountIDs) == 0 || saleID == uuid.Nil {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id IN ?", discountIDs).
		Update("sale_id", saleID).Error
}

// PurgeUnattached deletes every discount that never reached a sale. Runs
// after a successful checkout so stale rows cannot leak into the next cart.
func (r *repository) PurgeUnattached(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("sale_id IS NULL").
		Delete(&models.Discount{})
	return res.RowsAffected, res.Error
}

// PurgeUnattachedGlobal deletes only sale-less global discounts. Runs after
// a rejected payment: product-targeted discounts survive for the next try.
func (r *repository) PurgeUnattachedGlobal(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("sale_id IS NULL AND product_id IS NULL").
		Delete(&models.Discount{})
	return res.RowsAffected, res.Error
}
