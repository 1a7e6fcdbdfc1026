package restock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alioune4002/boutique-caisse/internal/catalog"
	"github.com/Alioune4002/boutique-caisse/pkg/config"
	"github.com/Alioune4002/boutique-caisse/pkg/db"
	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
	"github.com/Alioune4002/boutique-caisse/pkg/metrics"
)

const (
	triggerManual = "manual"
	triggerAuto   = "auto"
)

// Service replenishes product stock and keeps the audit trail of every
// replenishment.
type Service interface {
	Restock(ctx context.Context, productID uuid.UUID, quantity int, actor *string) (*models.RestockEvent, error)
	AutoRestock(ctx context.Context) (int, error)
	Critical(ctx context.Context) ([]models.Product, error)
	History(ctx context.Context, productID uuid.UUID) ([]models.RestockEvent, error)
}

type service struct {
	catalogRepo catalog.Repository
	dbClient    *db.Client
	cfg         config.RestockConfig
	metrics     *metrics.RegisterMetrics
	logg        *logger.Logger
}

// NewService constructs a restock service instance.
func NewService(catalogRepo catalog.Repository, dbClient *db.Client, cfg config.RestockConfig, m *metrics.RegisterMetrics, logg *logger.Logger) (Service, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		catalogRepo: catalogRepo,
		dbClient:    dbClient,
		cfg:         cfg,
		metrics:     m,
		logg:        logg,
	}, nil
}

// Restock adds quantity units to a product. The stock read and the write
// share one transaction so the recorded before/after counters stay honest
// under concurrent terminals.
func (s *service) Restock(ctx context.Context, productID uuid.UUID, quantity int, actor *string) (*models.RestockEvent, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "restock quantity must be positive")
	}

	var event *models.RestockEvent
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.catalogRepo.WithTx(tx)
		product, err := repo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
		}

		if err := repo.IncrementStock(ctx, productID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to increase stock")
		}

		event = &models.RestockEvent{
			ID:            uuid.New(),
			ProductID:     productID,
			QuantityAdded: quantity,
			StockBefore:   product.Stock,
			StockAfter:    product.Stock + quantity,
			Actor:         actor,
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRestock(triggerManual)
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "product_id", productID.String()), "stock replenished")
	}
	return event, nil
}

// AutoRestock tops every product at or below the configured threshold
// back up to the target stock. Returns how many products were topped up.
func (s *service) AutoRestock(ctx context.Context) (int, error) {
	topped := 0
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.catalogRepo.WithTx(tx)
		low, err := repo.FindBelowStock(ctx, s.cfg.ThresholdMin)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list low-stock products")
		}

		for _, product := range low {
			missing := s.cfg.TargetStock - product.Stock
			if missing <= 0 {
				continue
			}
			if err := repo.IncrementStock(ctx, product.ID, missing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to increase stock")
			}
			event := models.RestockEvent{
				ID:            uuid.New(),
				ProductID:     product.ID,
				QuantityAdded: missing,
				StockBefore:   product.Stock,
				StockAfter:    s.cfg.TargetStock,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
			topped++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i := 0; i < topped; i++ {
		s.metrics.IncRestock(triggerAuto)
	}
	if s.logg != nil && topped > 0 {
		s.logg.Info(s.logg.WithField(ctx, "products", topped), "automatic restock completed")
	}
	return topped, nil
}

// Critical lists products at or below the restock threshold.
func (s *service) Critical(ctx context.Context) ([]models.Product, error) {
	products, err := s.catalogRepo.FindBelowStock(ctx, s.cfg.ThresholdMin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list critical products")
	}
	return products, nil
}

// History returns a product's replenishment trail, newest first.
func (s *service) History(ctx context.Context, productID uuid.UUID) ([]models.RestockEvent, error) {
	var events []models.RestockEvent
	err := s.dbClient.DB().WithContext(ctx).
		Where("product_id = ?", productID).
		Order("restocked_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load restock history")
	}
	return events, nil
}
