package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/harborlane/ledgerdesk/internal/audit/domain"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	"github.com/harborlane/ledgerdesk/internal/clock"
	"github.com/harborlane/ledgerdesk/internal/events"
	"github.com/harborlane/ledgerdesk/internal/ledger/domain"
	"github.com/harborlane/ledgerdesk/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
	Outbox     *events.Outbox
	AuditSvc   auditdomain.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	clientRepo clientdomain.Repository
	outbox     *events.Outbox
	auditSvc   auditdomain.Service
	metrics    *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
		outbox:     p.Outbox,
		auditSvc:   p.AuditSvc,
		metrics:    p.Metrics,
	}
}

// RecordPayment inserts the payment, bumps the client's payment timestamp and
// re-establishes the running-balance invariant, all in one transaction. Any
// failure rolls the whole unit back; no partial state survives.
func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (*domain.PaymentTracker, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if req.ReceivedDate.IsZero() {
		return nil, domain.ErrInvalidReceivedDate
	}

	var payment *domain.PaymentTracker
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := s.clientRepo.FindByID(ctx, tx, req.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return domain.ErrClientNotFound
		}

		now := s.clock.Now()
		p := &domain.PaymentTracker{
			ID:           s.genID.Generate(),
			ClientID:     client.ID,
			ReceivedDate: normalizeDate(req.ReceivedDate),
			Amount:       req.Amount,
			Remark:       strings.TrimSpace(req.Remark),
			CreatedAt:    now,
		}
		if err := s.repo.InsertPayment(ctx, tx, p); err != nil {
			return err
		}

		if err := s.clientRepo.TouchPaymentLastUpdated(ctx, tx, client.ID, now); err != nil {
			return err
		}

		if err := s.recalculateTx(ctx, tx, client.ID); err != nil {
			return err
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventPaymentRecorded,
			Payload: events.PaymentRecordedPayload{
				PaymentID: p.ID.String(),
				ClientID:  client.ID.String(),
				Amount:    p.Amount.String(),
				Currency:  client.CurrencyCode,
			}.ToMap(),
			DedupeKey: "payment:" + p.ID.String(),
		}); err != nil {
			return err
		}

		payment = p
		return nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.ReconciliationErrors.Inc()
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.Inc()
	}
	targetID := payment.ID.String()
	_ = s.auditSvc.Record(ctx, "payment.recorded", "payment_tracker", &targetID, map[string]any{
		"client_id":     payment.ClientID.String(),
		"amount":        payment.Amount.String(),
		"received_date": payment.ReceivedDate.Format(time.DateOnly),
	})
	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("client_id", payment.ClientID.String()),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

// CreateEntry records an invoice charge and reconciles, mirroring
// RecordPayment for the other side of the ledger.
func (s *Service) CreateEntry(ctx context.Context, req domain.CreateEntryRequest) (*domain.Ledger, error) {
	var entry *domain.Ledger
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := s.CreateEntryTx(ctx, tx, req)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}

	targetID := entry.ID.String()
	_ = s.auditSvc.Record(ctx, "ledger.entry_created", "ledger", &targetID, map[string]any{
		"client_id":  entry.ClientID.String(),
		"amount":     entry.Amount.String(),
		"entry_date": entry.EntryDate.Format(time.DateOnly),
	})
	return entry, nil
}

// CreateEntryTx is CreateEntry running inside a caller-owned transaction;
// invoice generation uses it to keep the invoice row and its ledger charge in
// one atomic unit.
func (s *Service) CreateEntryTx(ctx context.Context, tx *gorm.DB, req domain.CreateEntryRequest) (*domain.Ledger, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if req.EntryDate.IsZero() {
		return nil, domain.ErrInvalidEntryDate
	}

	client, err := s.clientRepo.FindByID(ctx, tx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}

	now := s.clock.Now()
	entry := &domain.Ledger{
		ID:        s.genID.Generate(),
		ClientID:  client.ID,
		EntryDate: normalizeDate(req.EntryDate),
		Amount:    req.Amount,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := s.recalculateTx(ctx, tx, client.ID); err != nil {
		return nil, err
	}
	return entry, nil
}

// RecalculateBalances rebuilds the running balances for one client. Exposed
// for manual repair; RecordPayment and CreateEntry call the same logic inside
// their own transactions.
func (s *Service) RecalculateBalances(ctx context.Context, clientID snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := s.clientRepo.FindByID(ctx, tx, clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return domain.ErrClientNotFound
		}
		return s.recalculateTx(ctx, tx, clientID)
	})
	if err != nil {
		return fmt.Errorf("recalculate balances: %w", err)
	}
	return s.outbox.Publish(ctx, events.Event{
		Type:    events.EventLedgerRecalculated,
		Payload: map[string]any{"client_id": clientID.String()},
	})
}

// recalculateTx merges the client's invoice and payment history, sorts it by
// date with creation order (snowflake ID) breaking ties, and walks it with a
// running total, persisting the total onto every invoice row it passes.
func (s *Service) recalculateTx(ctx context.Context, tx *gorm.DB, clientID snowflake.ID) error {
	entries, err := s.repo.ListEntries(ctx, tx, clientID)
	if err != nil {
		return err
	}
	payments, err := s.repo.ListPayments(ctx, tx, clientID)
	if err != nil {
		return err
	}

	merged := make([]domain.BalanceEvent, 0, len(entries)+len(payments))
	for _, entry := range entries {
		merged = append(merged, domain.BalanceEvent{
			Kind:     domain.EventKindInvoice,
			RecordID: entry.ID,
			Date:     entry.EntryDate,
			Amount:   entry.Amount,
		})
	}
	for _, payment := range payments {
		merged = append(merged, domain.BalanceEvent{
			Kind:     domain.EventKindPayment,
			RecordID: payment.ID,
			Date:     payment.ReceivedDate,
			Amount:   payment.Amount,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.Before(merged[j].Date)
		}
		return merged[i].RecordID < merged[j].RecordID
	})

	byID := make(map[snowflake.ID]domain.Ledger, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	now := s.clock.Now()
	balance := decimal.Zero
	for _, event := range merged {
		switch event.Kind {
		case domain.EventKindInvoice:
			balance = balance.Add(event.Amount)
			if stored, ok := byID[event.RecordID]; ok && !stored.Balance.Equal(balance) {
				if err := s.repo.UpdateBalance(ctx, tx, event.RecordID, balance, now); err != nil {
					return err
				}
			}
		case domain.EventKindPayment:
			balance = balance.Sub(event.Amount)
		}
	}

	if s.metrics != nil {
		s.metrics.ReconciliationRuns.Inc()
	}
	return nil
}

func (s *Service) ListEntries(ctx context.Context, clientID snowflake.ID) ([]domain.Ledger, error) {
	return s.repo.ListEntries(ctx, s.db, clientID)
}

func (s *Service) ListPayments(ctx context.Context, clientID snowflake.ID) ([]domain.PaymentTracker, error) {
	return s.repo.ListPayments(ctx, s.db, clientID)
}

// BalanceReport aggregates total billed, total paid and the net balance per
// client from the raw tables on every call. When the database-level SUM comes
// back null or zero while raw rows exist, the rows are re-summed in process
// so inconsistent aggregates never surface as a silent zero balance.
func (s *Service) BalanceReport(ctx context.Context) ([]domain.ClientBalance, error) {
	clients, err := s.clientRepo.List(ctx, s.db, clientdomain.ListFilter{})
	if err != nil {
		return nil, err
	}

	report := make([]domain.ClientBalance, 0, len(clients))
	for _, client := range clients {
		totalBill, err := s.clientInvoiceTotal(ctx, client.ID)
		if err != nil {
			return nil, err
		}
		totalPaid, err := s.clientPaymentTotal(ctx, client.ID)
		if err != nil {
			return nil, err
		}
		report = append(report, domain.ClientBalance{
			ClientID:   client.ID,
			ClientName: client.Name,
			TotalBill:  totalBill,
			TotalPaid:  totalPaid,
			Balance:    totalBill.Sub(totalPaid),
		})
	}
	return report, nil
}

func (s *Service) clientInvoiceTotal(ctx context.Context, clientID snowflake.ID) (decimal.Decimal, error) {
	agg, err := s.sumQuery(ctx,
		`SELECT SUM(total_amount) AS total FROM invoices WHERE client_id = ? AND deleted_at IS NULL`,
		clientID,
	)
	if err != nil {
		return decimal.Zero, err
	}
	return s.resolveTotal(agg, func() ([]decimal.Decimal, error) {
		var rows []struct {
			TotalAmount decimal.Decimal `gorm:"column:total_amount"`
		}
		err := s.db.WithContext(ctx).Raw(
			`SELECT total_amount FROM invoices WHERE client_id = ? AND deleted_at IS NULL`,
			clientID,
		).Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		amounts := make([]decimal.Decimal, 0, len(rows))
		for _, row := range rows {
			amounts = append(amounts, row.TotalAmount)
		}
		return amounts, nil
	})
}

func (s *Service) clientPaymentTotal(ctx context.Context, clientID snowflake.ID) (decimal.Decimal, error) {
	agg, err := s.sumQuery(ctx,
		`SELECT SUM(amount) AS total FROM payment_trackers WHERE client_id = ?`,
		clientID,
	)
	if err != nil {
		return decimal.Zero, err
	}
	return s.resolveTotal(agg, func() ([]decimal.Decimal, error) {
		payments, err := s.repo.ListPayments(ctx, s.db, clientID)
		if err != nil {
			return nil, err
		}
		amounts := make([]decimal.Decimal, 0, len(payments))
		for _, payment := range payments {
			amounts = append(amounts, payment.Amount)
		}
		return amounts, nil
	})
}

func (s *Service) sumQuery(ctx context.Context, query string, clientID snowflake.ID) (decimal.NullDecimal, error) {
	var row struct {
		Total decimal.NullDecimal `gorm:"column:total"`
	}
	if err := s.db.WithContext(ctx).Raw(query, clientID).Scan(&row).Error; err != nil {
		return decimal.NullDecimal{}, err
	}
	return row.Total, nil
}

// resolveTotal guards against aggregation returning null or zero for clients
// that do have rows: in that case the raw amounts are summed in process.
func (s *Service) resolveTotal(agg decimal.NullDecimal, loadRows func() ([]decimal.Decimal, error)) (decimal.Decimal, error) {
	if agg.Valid && !agg.Decimal.IsZero() {
		return agg.Decimal, nil
	}

	amounts, err := loadRows()
	if err != nil {
		return decimal.Zero, err
	}
	if len(amounts) == 0 {
		return decimal.Zero, nil
	}
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}

func (s *Service) UpsertNote(ctx context.Context, clientID snowflake.ID, note string) (*domain.ReconciliationNote, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, domain.ErrInvalidNote
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}

	now := s.clock.Now()
	record := &domain.ReconciliationNote{
		ID:        s.genID.Generate(),
		ClientID:  clientID,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertNote(ctx, s.db, record); err != nil {
		return nil, err
	}
	return s.repo.FindNote(ctx, s.db, clientID)
}

func (s *Service) GetNote(ctx context.Context, clientID snowflake.ID) (*domain.ReconciliationNote, error) {
	note, err := s.repo.FindNote(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.ErrNoteNotFound
	}
	return note, nil
}

// normalizeDate truncates timestamps to UTC midnight so ledger ordering only
// ever compares calendar dates.
func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
