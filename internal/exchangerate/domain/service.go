package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type UpsertRateRequest struct {
	CurrencyCode string
	Year         int
	Month        int
	Rate         decimal.Decimal
}

type ListRateRequest struct {
	CurrencyCode string
	Year         int
}

type Service interface {
	Upsert(ctx context.Context, req UpsertRateRequest) (*ExchangeRate, error)
	Get(ctx context.Context, currencyCode string, year, month int) (*ExchangeRate, error)
	List(ctx context.Context, req ListRateRequest) ([]ExchangeRate, error)
}

var (
	ErrRateNotFound    = errors.New("exchange_rate_not_found")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidRate     = errors.New("invalid_rate")
)
