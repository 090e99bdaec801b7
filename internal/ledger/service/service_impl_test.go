package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	clientrepository "github.com/harborlane/ledgerdesk/internal/client/repository"
	"github.com/harborlane/ledgerdesk/internal/clock"
	"github.com/harborlane/ledgerdesk/internal/events"
	"github.com/harborlane/ledgerdesk/internal/ledger/domain"
	"github.com/harborlane/ledgerdesk/internal/ledger/repository"
	"github.com/harborlane/ledgerdesk/internal/migration"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type nopAudit struct{}

func (nopAudit) Record(context.Context, string, string, *string, map[string]any) error {
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migration.RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	return &Service{
		db:         db,
		log:        zap.NewNop(),
		genID:      node,
		clock:      clock.SystemClock{},
		repo:       repository.New(),
		clientRepo: clientrepository.New(),
		outbox:     events.NewOutbox(db, node),
		auditSvc:   nopAudit{},
	}
}

func insertClient(t *testing.T, svc *Service, name string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	client := &clientdomain.Client{
		ID:           svc.genID.Generate(),
		Name:         name,
		Abbreviation: "TC",
		CurrencyCode: "USD",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := svc.clientRepo.Insert(context.Background(), svc.db, client); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	return client.ID
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecordPaymentScenario(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Acme Consulting")

	if _, err := svc.CreateEntry(ctx, domain.CreateEntryRequest{
		ClientID:  clientID,
		EntryDate: date(2024, time.April, 1),
		Amount:    dec("8000"),
	}); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	for _, p := range []struct {
		day    time.Time
		amount string
	}{
		{date(2024, time.May, 1), "8000"},
		{date(2024, time.June, 1), "2000"},
	} {
		if _, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
			ClientID:     clientID,
			ReceivedDate: p.day,
			Amount:       dec(p.amount),
		}); err != nil {
			t.Fatalf("record payment: %v", err)
		}
	}

	entries, err := svc.ListEntries(ctx, clientID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	// The stored balance reflects the running total at the entry's own date,
	// before later payments are applied.
	if !entries[0].Balance.Equal(dec("8000")) {
		t.Fatalf("expected balance 8000, got %s", entries[0].Balance)
	}

	var client clientdomain.Client
	if err := db.Where("id = ?", clientID).First(&client).Error; err != nil {
		t.Fatalf("reload client: %v", err)
	}
	if client.PaymentLastUpdated == nil {
		t.Fatalf("expected payment_last_updated to be set")
	}
}

func TestRecalculateInvariantRandomHistory(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Randomized Corp")

	rng := rand.New(rand.NewSource(42))
	base := date(2024, time.January, 1)

	type event struct {
		day     time.Time
		amount  decimal.Decimal
		invoice bool
	}
	var history []event
	for i := 0; i < 12; i++ {
		history = append(history, event{
			day:     base.AddDate(0, 0, rng.Intn(300)),
			amount:  decimal.NewFromInt(int64(rng.Intn(9000) + 100)),
			invoice: true,
		})
	}
	for i := 0; i < 8; i++ {
		history = append(history, event{
			day:    base.AddDate(0, 0, rng.Intn(300)),
			amount: decimal.NewFromInt(int64(rng.Intn(9000) + 100)),
		})
	}

	for _, ev := range history {
		var err error
		if ev.invoice {
			_, err = svc.CreateEntry(ctx, domain.CreateEntryRequest{ClientID: clientID, EntryDate: ev.day, Amount: ev.amount})
		} else {
			_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{ClientID: clientID, ReceivedDate: ev.day, Amount: ev.amount})
		}
		if err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	if err := svc.RecalculateBalances(ctx, clientID); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	entries, err := svc.ListEntries(ctx, clientID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	payments, err := svc.ListPayments(ctx, clientID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}

	// Independently recompute the expected running balance for each entry:
	// cumulative invoices minus cumulative payments up to and including the
	// entry, under date order with creation order breaking ties.
	for _, entry := range entries {
		expected := decimal.Zero
		for _, other := range entries {
			if beforeOrSame(other.EntryDate, int64(other.ID), entry.EntryDate, int64(entry.ID)) {
				expected = expected.Add(other.Amount)
			}
		}
		for _, payment := range payments {
			if beforeOrSame(payment.ReceivedDate, int64(payment.ID), entry.EntryDate, int64(entry.ID)) {
				expected = expected.Sub(payment.Amount)
			}
		}
		if !entry.Balance.Equal(expected) {
			t.Fatalf("entry %s on %s: balance %s, expected %s",
				entry.ID, entry.EntryDate.Format(time.DateOnly), entry.Balance, expected)
		}
	}
}

func beforeOrSame(d1 time.Time, id1 int64, d2 time.Time, id2 int64) bool {
	if !d1.Equal(d2) {
		return d1.Before(d2)
	}
	return id1 <= id2
}

func TestRecalculateEmptyLedgerIsNoop(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Empty Ltd")

	if err := svc.RecalculateBalances(ctx, clientID); err != nil {
		t.Fatalf("expected no error on empty ledger, got %v", err)
	}

	// A payment against a client with zero ledger rows is also fine.
	if _, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ClientID:     clientID,
		ReceivedDate: date(2024, time.March, 10),
		Amount:       dec("500"),
	}); err != nil {
		t.Fatalf("record payment on empty ledger: %v", err)
	}
}

func TestRecordPaymentRollsBackAtomically(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Rollback Inc")

	// Force the recalculation step to fail after the payment insert by
	// removing the table it reads from.
	if err := db.Exec(`DROP TABLE ledgers`).Error; err != nil {
		t.Fatalf("drop ledgers: %v", err)
	}

	_, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ClientID:     clientID,
		ReceivedDate: date(2024, time.July, 1),
		Amount:       dec("1000"),
	})
	if err == nil {
		t.Fatalf("expected record payment to fail")
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM payment_trackers WHERE client_id = ?`, clientID).Scan(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orphan payment after rollback, found %d", count)
	}

	var client clientdomain.Client
	if err := db.Where("id = ?", clientID).First(&client).Error; err != nil {
		t.Fatalf("reload client: %v", err)
	}
	if client.PaymentLastUpdated != nil {
		t.Fatalf("expected payment_last_updated to remain unset after rollback")
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Stable LLC")

	seed := []struct {
		day     time.Time
		amount  string
		invoice bool
	}{
		{date(2024, time.April, 1), "4000", true},
		{date(2024, time.April, 20), "1500", false},
		{date(2024, time.May, 1), "3000", true},
	}
	for _, s := range seed {
		var err error
		if s.invoice {
			_, err = svc.CreateEntry(ctx, domain.CreateEntryRequest{ClientID: clientID, EntryDate: s.day, Amount: dec(s.amount)})
		} else {
			_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{ClientID: clientID, ReceivedDate: s.day, Amount: dec(s.amount)})
		}
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := svc.RecalculateBalances(ctx, clientID); err != nil {
		t.Fatalf("first recalculation: %v", err)
	}
	first, err := svc.ListEntries(ctx, clientID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}

	if err := svc.RecalculateBalances(ctx, clientID); err != nil {
		t.Fatalf("second recalculation: %v", err)
	}
	second, err := svc.ListEntries(ctx, clientID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("entry count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Balance.Equal(second[i].Balance) {
			t.Fatalf("balance drifted on entry %s: %s vs %s", first[i].ID, first[i].Balance, second[i].Balance)
		}
	}
}

func TestSameDateTieBreakFollowsCreationOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Tie Break Co")

	day := date(2024, time.August, 15)
	entry, err := svc.CreateEntry(ctx, domain.CreateEntryRequest{ClientID: clientID, EntryDate: day, Amount: dec("1000")})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{ClientID: clientID, ReceivedDate: day, Amount: dec("400")}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	entries, err := svc.ListEntries(ctx, clientID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	// The invoice was created before the payment, so it sorts first on the
	// shared date and its stored balance excludes the payment.
	if !entries[0].Balance.Equal(dec("1000")) {
		t.Fatalf("expected balance 1000 for entry %s, got %s", entry.ID, entries[0].Balance)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Valid Co")

	if _, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ClientID:     clientID,
		ReceivedDate: date(2024, time.May, 1),
		Amount:       dec("0"),
	}); err != domain.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if _, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ClientID: clientID,
		Amount:   dec("100"),
	}); err != domain.ErrInvalidReceivedDate {
		t.Fatalf("expected ErrInvalidReceivedDate, got %v", err)
	}

	_, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ClientID:     svc.genID.Generate(),
		ReceivedDate: date(2024, time.May, 1),
		Amount:       dec("100"),
	})
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected client_not_found, got %v", err)
	}
}

func TestBalanceReportSumsAndFallback(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Report Co")

	now := time.Now().UTC()
	for i, amount := range []string{"1200.50", "799.50"} {
		if err := db.Exec(
			`INSERT INTO invoices (id, client_id, currency_code, year, month, total_amount, status, generated_on, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			int64(svc.genID.Generate()), int64(clientID), "USD", 2024, i+1, amount, "generated", now, now, now,
		).Error; err != nil {
			t.Fatalf("insert invoice: %v", err)
		}
	}
	if _, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		ClientID:     clientID,
		ReceivedDate: date(2024, time.June, 1),
		Amount:       dec("500"),
	}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	report, err := svc.BalanceReport(ctx)
	if err != nil {
		t.Fatalf("balance report: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 report row, got %d", len(report))
	}
	row := report[0]
	if !row.TotalBill.Equal(dec("2000")) {
		t.Fatalf("expected total bill 2000, got %s", row.TotalBill)
	}
	if !row.TotalPaid.Equal(dec("500")) {
		t.Fatalf("expected total paid 500, got %s", row.TotalPaid)
	}
	if !row.Balance.Equal(dec("1500")) {
		t.Fatalf("expected balance 1500, got %s", row.Balance)
	}
}

func TestResolveTotalFallsBackOnNullAggregate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	total, err := svc.resolveTotal(decimal.NullDecimal{}, func() ([]decimal.Decimal, error) {
		return []decimal.Decimal{dec("1000"), dec("250.25")}, nil
	})
	if err != nil {
		t.Fatalf("resolve total: %v", err)
	}
	if !total.Equal(dec("1250.25")) {
		t.Fatalf("expected fallback sum 1250.25, got %s", total)
	}

	// Zero aggregate with no raw rows stays zero.
	total, err = svc.resolveTotal(decimal.NullDecimal{}, func() ([]decimal.Decimal, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("resolve total: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("expected zero, got %s", total)
	}
}

func TestUpsertNoteKeepsSingleCurrentNote(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	clientID := insertClient(t, svc, "Notes Co")

	if _, err := svc.UpsertNote(ctx, clientID, "first pass"); err != nil {
		t.Fatalf("upsert note: %v", err)
	}
	note, err := svc.UpsertNote(ctx, clientID, "revised after call")
	if err != nil {
		t.Fatalf("upsert note again: %v", err)
	}
	if note.Note != "revised after call" {
		t.Fatalf("expected updated note text, got %q", note.Note)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM reconciliation_notes WHERE client_id = ?`, clientID).Scan(&count).Error; err != nil {
		t.Fatalf("count notes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one note row, got %d", count)
	}

	if _, err := svc.GetNote(ctx, svc.genID.Generate()); err != domain.ErrNoteNotFound {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}
