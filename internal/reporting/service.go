package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alioune4002/boutique-caisse/pkg/db"
	"github.com/Alioune4002/boutique-caisse/pkg/db/models"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
	"github.com/Alioune4002/boutique-caisse/pkg/pagination"
)

// Bucket is one aggregated revenue row, keyed by a calendar period.
type Bucket struct {
	Key    string                     `json:"key"`
	Total  decimal.Decimal            `json:"total"`
	ByMode map[string]decimal.Decimal `json:"by_mode"`
}

// Summary is the register's revenue report over a date range.
type Summary struct {
	From    time.Time                  `json:"from"`
	To      time.Time                  `json:"to"`
	Total   decimal.Decimal            `json:"total"`
	ByMode  map[string]decimal.Decimal `json:"by_mode"`
	ByDay   []Bucket                   `json:"by_day"`
	ByWeek  []Bucket                   `json:"by_week"`
	ByMonth []Bucket                   `json:"by_month"`
	ByYear  []Bucket                   `json:"by_year"`
}

// Service exposes read-only revenue aggregates and sale/payment listings.
type Service interface {
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
	RecentSales(ctx context.Context, limit int) ([]models.Sale, error)
	RecentPayments(ctx context.Context, limit int) ([]models.Payment, error)
	ExportXLSX(ctx context.Context, from, to time.Time) ([]byte, error)
}

type service struct {
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs a reporting service instance.
func NewService(dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{dbClient: dbClient, logg: logg}, nil
}

// Summary aggregates payments in Go rather than SQL so the report reads
// the same on postgres and sqlite.
func (s *service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	payments, err := s.paymentsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		From:   from,
		To:     to,
		Total:  decimal.Zero,
		ByMode: map[string]decimal.Decimal{},
	}

	days := map[string]*Bucket{}
	weeks := map[string]*Bucket{}
	months := map[string]*Bucket{}
	years := map[string]*Bucket{}

	for _, payment := range payments {
		summary.Total = summary.Total.Add(payment.Amount)

		mode := payment.Mode.String()
		summary.ByMode[mode] = summary.ByMode[mode].Add(payment.Amount)

		paidAt := payment.PaidAt.UTC()
		isoYear, isoWeek := paidAt.ISOWeek()
		accumulate(days, paidAt.Format("2006-01-02"), mode, payment.Amount)
		accumulate(weeks, fmt.Sprintf("%04d-W%02d", isoYear, isoWeek), mode, payment.Amount)
		accumulate(months, paidAt.Format("2006-01"), mode, payment.Amount)
		accumulate(years, paidAt.Format("2006"), mode, payment.Amount)
	}

	summary.ByDay = sortBuckets(days)
	summary.ByWeek = sortBuckets(weeks)
	summary.ByMonth = sortBuckets(months)
	summary.ByYear = sortBuckets(years)
	return summary, nil
}

func (s *service) RecentSales(ctx context.Context, limit int) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.dbClient.DB().WithContext(ctx).
		Preload("Product").
		Order("sold_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&sales).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list sales")
	}
	return sales, nil
}

func (s *service) RecentPayments(ctx context.Context, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.dbClient.DB().WithContext(ctx).
		Order("paid_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&payments).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list payments")
	}
	return payments, nil
}

func (s *service) paymentsBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	query := s.dbClient.DB().WithContext(ctx).Order("paid_at ASC")
	if !from.IsZero() {
		query = query.Where("paid_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("paid_at < ?", to)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load payments")
	}
	return payments, nil
}

func accumulate(buckets map[string]*Bucket, key, mode string, amount decimal.Decimal) {
	bucket, ok := buckets[key]
	if !ok {
		bucket = &Bucket{Key: key, Total: decimal.Zero, ByMode: map[string]decimal.Decimal{}}
		buckets[key] = bucket
	}
	bucket.Total = bucket.Total.Add(amount)
	bucket.ByMode[mode] = bucket.ByMode[mode].Add(amount)
}

func sortBuckets(buckets map[string]*Bucket) []Bucket {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		out = append(out, *buckets[key])
	}
	return out
}
