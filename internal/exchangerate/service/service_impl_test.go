package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/clock"
	"github.com/harborlane/ledgerdesk/internal/exchangerate/domain"
	"github.com/harborlane/ledgerdesk/internal/exchangerate/repository"
	"github.com/harborlane/ledgerdesk/internal/migration"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migration.RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.SystemClock{},
		Repo:  repository.New(),
	})
	return svc, db
}

func TestUpsertKeepsOneRowPerPeriod(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, domain.UpsertRateRequest{
		CurrencyCode: "gbp", Year: 2024, Month: 3, Rate: decimal.NewFromFloat(1.21),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.CurrencyCode != "GBP" {
		t.Fatalf("expected normalized currency GBP, got %q", first.CurrencyCode)
	}

	second, err := svc.Upsert(ctx, domain.UpsertRateRequest{
		CurrencyCode: "GBP", Year: 2024, Month: 3, Rate: decimal.NewFromFloat(1.27),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if !second.Rate.Equal(decimal.NewFromFloat(1.27)) {
		t.Fatalf("expected updated rate 1.27, got %s", second.Rate)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM exchange_rates WHERE currency_code = 'GBP'`).Scan(&count).Error; err != nil {
		t.Fatalf("count rates: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row per period, got %d", count)
	}
}

func TestUpsertValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, domain.UpsertRateRequest{CurrencyCode: "", Year: 2024, Month: 1, Rate: decimal.NewFromInt(1)}); err != domain.ErrInvalidCurrency {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
	if _, err := svc.Upsert(ctx, domain.UpsertRateRequest{CurrencyCode: "USD", Year: 2024, Month: 13, Rate: decimal.NewFromInt(1)}); err != domain.ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := svc.Upsert(ctx, domain.UpsertRateRequest{CurrencyCode: "USD", Year: 2024, Month: 1}); err != domain.ErrInvalidRate {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestGetMissingRate(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Get(context.Background(), "JPY", 2024, 2); err != domain.ErrRateNotFound {
		t.Fatalf("expected ErrRateNotFound, got %v", err)
	}
}
