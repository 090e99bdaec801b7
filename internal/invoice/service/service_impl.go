package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	assignmentdomain "github.com/harborlane/ledgerdesk/internal/assignment/domain"
	auditdomain "github.com/harborlane/ledgerdesk/internal/audit/domain"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	"github.com/harborlane/ledgerdesk/internal/clock"
	"github.com/harborlane/ledgerdesk/internal/events"
	exchangeratedomain "github.com/harborlane/ledgerdesk/internal/exchangerate/domain"
	"github.com/harborlane/ledgerdesk/internal/invoice/domain"
	"github.com/harborlane/ledgerdesk/internal/invoice/render"
	ledgerdomain "github.com/harborlane/ledgerdesk/internal/ledger/domain"
	"github.com/harborlane/ledgerdesk/internal/observability/metrics"
	organizationdomain "github.com/harborlane/ledgerdesk/internal/organization/domain"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	ClientRepo     clientdomain.Repository
	AssignmentRepo assignmentdomain.Repository
	RateRepo       exchangeratedomain.Repository
	LedgerSvc      ledgerdomain.Service
	Outbox         *events.Outbox
	AuditSvc       auditdomain.Service
	Renderer       render.Renderer
	Metrics        *metrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	clientRepo     clientdomain.Repository
	assignmentRepo assignmentdomain.Repository
	rateRepo       exchangeratedomain.Repository
	ledgerSvc      ledgerdomain.Service
	outbox         *events.Outbox
	auditSvc       auditdomain.Service
	renderer       render.Renderer
	metrics        *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("invoice.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		clientRepo:     p.ClientRepo,
		assignmentRepo: p.AssignmentRepo,
		rateRepo:       p.RateRepo,
		ledgerSvc:      p.LedgerSvc,
		outbox:         p.Outbox,
		auditSvc:       p.AuditSvc,
		renderer:       p.Renderer,
		metrics:        p.Metrics,
	}
}

// Generate creates the invoice for one client and fiscal month, writes the
// matching ledger charge and reconciles balances, all in one transaction. At
// most one invoice exists per client+period.
func (s *Service) Generate(ctx context.Context, req domain.GenerateInvoiceRequest) (*domain.Invoice, error) {
	if req.Year < 2000 || req.Year > 2200 || req.Month < 1 || req.Month > 12 {
		return nil, domain.ErrInvalidPeriod
	}
	if req.TotalAmount.IsNegative() {
		return nil, domain.ErrInvalidTotal
	}

	var invoice *domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := s.clientRepo.FindByID(ctx, tx, req.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return clientdomain.ErrClientNotFound
		}

		existing, err := s.repo.FindByPeriod(ctx, tx, client.ID, req.Year, req.Month)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrInvoiceExists
		}

		total := req.TotalAmount
		if total.IsZero() {
			total, err = s.assignmentTotal(ctx, tx, client, req.Year, req.Month)
			if err != nil {
				return err
			}
		}

		now := s.clock.Now()
		inv := &domain.Invoice{
			ID:           s.genID.Generate(),
			ClientID:     client.ID,
			CurrencyCode: client.CurrencyCode,
			Year:         req.Year,
			Month:        req.Month,
			TotalAmount:  total,
			Status:       domain.StatusGenerated,
			GeneratedOn:  now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Insert(ctx, tx, inv); err != nil {
			return err
		}

		if total.IsPositive() {
			if _, err := s.ledgerSvc.CreateEntryTx(ctx, tx, ledgerdomain.CreateEntryRequest{
				ClientID:  client.ID,
				EntryDate: inv.PeriodStart(),
				Amount:    total,
			}); err != nil {
				return err
			}
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventInvoiceGenerated,
			Payload: events.InvoicePayload{
				InvoiceID: inv.ID.String(),
				ClientID:  client.ID.String(),
				Year:      inv.Year,
				Month:     inv.Month,
			}.ToMap(),
			DedupeKey: "invoice:" + inv.ID.String(),
		}); err != nil {
			return err
		}

		invoice = inv
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate invoice: %w", err)
	}

	if s.metrics != nil {
		s.metrics.InvoicesGenerated.Inc()
	}
	targetID := invoice.ID.String()
	_ = s.auditSvc.Record(ctx, "invoice.generated", "invoice", &targetID, map[string]any{
		"client_id": invoice.ClientID.String(),
		"year":      invoice.Year,
		"month":     invoice.Month,
		"total":     invoice.TotalAmount.String(),
	})
	s.log.Info("invoice generated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("client_id", invoice.ClientID.String()),
		zap.Int("year", invoice.Year),
		zap.Int("month", invoice.Month),
		zap.String("total", invoice.TotalAmount.String()),
	)
	return invoice, nil
}

// assignmentTotal sums the monthly rates of the client's assignments active in
// the period, converting through the stored exchange rate when an assignment
// bills in a different currency. Missing rates fall back to identity.
func (s *Service) assignmentTotal(ctx context.Context, tx *gorm.DB, client *clientdomain.Client, year, month int) (decimal.Decimal, error) {
	assignments, err := s.assignmentRepo.ActiveForPeriod(ctx, tx, client.ID, year, month)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, a := range assignments {
		amount := a.MonthlyRate
		if a.CurrencyCode != "" && a.CurrencyCode != client.CurrencyCode {
			rate, err := s.rateRepo.Find(ctx, tx, a.CurrencyCode, year, month)
			if err != nil {
				return decimal.Zero, err
			}
			if rate != nil {
				amount = amount.Mul(rate.Rate)
			}
		}
		total = total.Add(amount)
	}
	return total, nil
}

func (s *Service) SetTotal(ctx context.Context, id snowflake.ID, total decimal.Decimal) (*domain.Invoice, error) {
	if total.IsNegative() {
		return nil, domain.ErrInvalidTotal
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	if invoice.Status == domain.StatusSent {
		return nil, domain.ErrInvoiceAlreadySent
	}

	invoice.TotalAmount = total
	invoice.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) MarkSent(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	if invoice.Status == domain.StatusSent {
		return nil, domain.ErrInvoiceAlreadySent
	}

	now := s.clock.Now()
	invoice.Status = domain.StatusSent
	invoice.InvoicedOn = &now
	invoice.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return nil, err
	}

	if err := s.outbox.Publish(ctx, events.Event{
		Type: events.EventInvoiceSent,
		Payload: events.InvoicePayload{
			InvoiceID: invoice.ID.String(),
			ClientID:  invoice.ClientID.String(),
			Year:      invoice.Year,
			Month:     invoice.Month,
		}.ToMap(),
		DedupeKey: "invoice_sent:" + invoice.ID.String(),
	}); err != nil {
		s.log.Warn("invoice sent event publish failed", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
	}

	targetID := invoice.ID.String()
	_ = s.auditSvc.Record(ctx, "invoice.sent", "invoice", &targetID, map[string]any{
		"client_id": invoice.ClientID.String(),
	})
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	limit := req.Limit()
	offset := req.Offset()

	invoices, err := s.repo.List(ctx, s.db, domain.ListFilter{
		ClientID: req.ClientID,
		Year:     req.Year,
		Month:    req.Month,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	return domain.ListInvoiceResponse{
		PageInfo: pagination.PageInfo{NextPageToken: pagination.NextToken(offset, limit, len(invoices))},
		Invoices: invoices,
	}, nil
}

// RenderDocument builds the HTML invoice document from the stored invoice and
// its client, organization and bank rows.
func (s *Service) RenderDocument(ctx context.Context, id snowflake.ID) (string, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	client, err := s.clientRepo.FindByID(ctx, s.db, invoice.ClientID)
	if err != nil {
		return "", err
	}
	if client == nil {
		return "", clientdomain.ErrClientNotFound
	}

	input := render.DocumentInput{
		Client: render.ClientView{
			Name:          client.Name,
			ContactPerson: client.ContactPerson,
			Email:         client.Email,
			Address:       client.Address,
		},
		Invoice: render.InvoiceView{
			Number:      invoiceNumber(client.Abbreviation, invoice.Year, invoice.Month),
			Status:      invoice.Status,
			Currency:    invoice.CurrencyCode,
			PeriodStart: invoice.PeriodStart(),
			PeriodEnd:   invoice.PeriodEnd(),
			GeneratedOn: invoice.GeneratedOn,
			InvoicedOn:  invoice.InvoicedOn,
			Total:       invoice.TotalAmount,
		},
	}

	if client.OrganizationID != nil {
		var org organizationdomain.Organization
		err := s.db.WithContext(ctx).Where("id = ?", *client.OrganizationID).First(&org).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		if err == nil {
			input.Organization = render.OrganizationView{Name: org.Name, Address: org.Address, TaxID: org.TaxID}
		}
	}
	if client.BankDetailID != nil {
		var bank organizationdomain.BankDetail
		err := s.db.WithContext(ctx).Where("id = ?", *client.BankDetailID).First(&bank).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		if err == nil {
			input.Bank = &render.BankView{
				BankName:      bank.BankName,
				AccountName:   bank.AccountName,
				AccountNumber: bank.AccountNumber,
				BranchCode:    bank.BranchCode,
			}
		}
	}

	return s.renderer.RenderHTML(input)
}

func invoiceNumber(abbreviation string, year, month int) string {
	if abbreviation == "" {
		abbreviation = "INV"
	}
	return fmt.Sprintf("%s-%04d-%02d", abbreviation, year, month)
}
