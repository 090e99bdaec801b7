package domain

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	CurrencyCode string
	Year         int
}

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, rate *ExchangeRate) error
	Find(ctx context.Context, db *gorm.DB, currencyCode string, year, month int) (*ExchangeRate, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]ExchangeRate, error)
}
