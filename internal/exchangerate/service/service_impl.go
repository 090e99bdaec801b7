package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/clock"
	"github.com/harborlane/ledgerdesk/internal/exchangerate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("exchangerate.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertRateRequest) (*domain.ExchangeRate, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" {
		return nil, domain.ErrInvalidCurrency
	}
	if req.Year < 2000 || req.Year > 2200 || req.Month < 1 || req.Month > 12 {
		return nil, domain.ErrInvalidPeriod
	}
	if !req.Rate.IsPositive() {
		return nil, domain.ErrInvalidRate
	}

	now := s.clock.Now()
	rate := &domain.ExchangeRate{
		ID:           s.genID.Generate(),
		CurrencyCode: currency,
		Year:         req.Year,
		Month:        req.Month,
		Rate:         req.Rate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Upsert(ctx, s.db, rate); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, s.db, currency, req.Year, req.Month)
}

func (s *Service) Get(ctx context.Context, currencyCode string, year, month int) (*domain.ExchangeRate, error) {
	currency := strings.ToUpper(strings.TrimSpace(currencyCode))
	rate, err := s.repo.Find(ctx, s.db, currency, year, month)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, domain.ErrRateNotFound
	}
	return rate, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRateRequest) ([]domain.ExchangeRate, error) {
	return s.repo.List(ctx, s.db, domain.ListFilter{
		CurrencyCode: req.CurrencyCode,
		Year:         req.Year,
	})
}
