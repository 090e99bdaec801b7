package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/harborlane/ledgerdesk/internal/exchangerate/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

// New returns the gorm-backed exchange rate repository.
func New() domain.Repository {
	return &repository{}
}

func (r *repository) Upsert(ctx context.Context, db *gorm.DB, rate *domain.ExchangeRate) error {
	if rate == nil {
		return errors.New("missing_rate")
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "currency_code"}, {Name: "year"}, {Name: "month"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(rate).Error
}

func (r *repository) Find(ctx context.Context, db *gorm.DB, currencyCode string, year, month int) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	err := db.WithContext(ctx).
		Where("currency_code = ? AND year = ? AND month = ?", currencyCode, year, month).
		First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.ExchangeRate, error) {
	query := db.WithContext(ctx).Model(&domain.ExchangeRate{})
	if code := strings.TrimSpace(filter.CurrencyCode); code != "" {
		query = query.Where("currency_code = ?", strings.ToUpper(code))
	}
	if filter.Year > 0 {
		query = query.Where("year = ?", filter.Year)
	}

	var rates []domain.ExchangeRate
	if err := query.Order("currency_code ASC, year ASC, month ASC").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}
