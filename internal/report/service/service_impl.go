package service

import (
	"context"

	"github.com/bwmarrin/snowflake"

	assignmentdomain "github.com/harborlane/ledgerdesk/internal/assignment/domain"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	employeedomain "github.com/harborlane/ledgerdesk/internal/employee/domain"
	exchangeratedomain "github.com/harborlane/ledgerdesk/internal/exchangerate/domain"
	"github.com/harborlane/ledgerdesk/internal/report/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	ClientRepo     clientdomain.Repository
	EmployeeRepo   employeedomain.Repository
	AssignmentRepo assignmentdomain.Repository
	RateRepo       exchangeratedomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clientRepo     clientdomain.Repository
	employeeRepo   employeedomain.Repository
	assignmentRepo assignmentdomain.Repository
	rateRepo       exchangeratedomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("report.service"),
		clientRepo:     p.ClientRepo,
		employeeRepo:   p.EmployeeRepo,
		assignmentRepo: p.AssignmentRepo,
		rateRepo:       p.RateRepo,
	}
}

// Profitability aggregates, per client, the invoiced total for the fiscal
// month against the monthly cost of the employees assigned to that client in
// the same month. Billed amounts in a foreign currency are converted with the
// stored exchange rate; a missing rate falls back to identity.
func (s *Service) Profitability(ctx context.Context, year, month int) ([]domain.ClientProfit, error) {
	if year < 2000 || year > 2200 || month < 1 || month > 12 {
		return nil, domain.ErrInvalidPeriod
	}

	clients, err := s.clientRepo.List(ctx, s.db, clientdomain.ListFilter{})
	if err != nil {
		return nil, err
	}

	report := make([]domain.ClientProfit, 0, len(clients))
	for _, client := range clients {
		billed, err := s.billedTotal(ctx, client.ID, year, month)
		if err != nil {
			return nil, err
		}
		billed, err = s.convert(ctx, billed, client.CurrencyCode, year, month)
		if err != nil {
			return nil, err
		}

		cost, err := s.assignedCost(ctx, client.ID, year, month)
		if err != nil {
			return nil, err
		}

		report = append(report, domain.ClientProfit{
			ClientID:   client.ID,
			ClientName: client.Name,
			Billed:     billed,
			Cost:       cost,
			Margin:     billed.Sub(cost),
		})
	}
	return report, nil
}

func (s *Service) billedTotal(ctx context.Context, clientID snowflake.ID, year, month int) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal `gorm:"column:total"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT SUM(total_amount) AS total FROM invoices
		 WHERE client_id = ? AND year = ? AND month = ? AND deleted_at IS NULL`,
		clientID, year, month,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}

func (s *Service) assignedCost(ctx context.Context, clientID snowflake.ID, year, month int) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal `gorm:"column:total"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT SUM(e.monthly_cost) AS total
		 FROM assignments a
		 JOIN employees e ON e.id = a.employee_id AND e.deleted_at IS NULL
		 WHERE a.client_id = ?
		   AND a.deleted_at IS NULL
		   AND a.start_year * 12 + a.start_month <= ?
		   AND (a.end_year IS NULL OR a.end_year * 12 + a.end_month >= ?)`,
		clientID, year*12+month, year*12+month,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}

func (s *Service) convert(ctx context.Context, amount decimal.Decimal, currencyCode string, year, month int) (decimal.Decimal, error) {
	if amount.IsZero() {
		return amount, nil
	}
	rate, err := s.rateRepo.Find(ctx, s.db, currencyCode, year, month)
	if err != nil {
		return decimal.Zero, err
	}
	if rate == nil {
		return amount, nil
	}
	return amount.Mul(rate.Rate), nil
}
