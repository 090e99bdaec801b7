package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordPaymentRequest carries the inputs for recording a received payment.
type RecordPaymentRequest struct {
	ClientID     snowflake.ID
	ReceivedDate time.Time
	Amount       decimal.Decimal
	Remark       string
}

// CreateEntryRequest carries the inputs for recording an invoice charge.
type CreateEntryRequest struct {
	ClientID  snowflake.ID
	EntryDate time.Time
	Amount    decimal.Decimal
}

// Service is the ledger reconciliation engine. Every mutation re-establishes
// the running-balance invariant within the same transaction it writes in.
type Service interface {
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentTracker, error)
	CreateEntry(ctx context.Context, req CreateEntryRequest) (*Ledger, error)
	RecalculateBalances(ctx context.Context, clientID snowflake.ID) error

	// CreateEntryTx records a charge inside a caller-owned transaction so other
	// services (invoice generation) can keep their writes atomic with the
	// ledger's.
	CreateEntryTx(ctx context.Context, tx *gorm.DB, req CreateEntryRequest) (*Ledger, error)

	ListEntries(ctx context.Context, clientID snowflake.ID) ([]Ledger, error)
	ListPayments(ctx context.Context, clientID snowflake.ID) ([]PaymentTracker, error)

	BalanceReport(ctx context.Context) ([]ClientBalance, error)

	UpsertNote(ctx context.Context, clientID snowflake.ID, note string) (*ReconciliationNote, error)
	GetNote(ctx context.Context, clientID snowflake.ID) (*ReconciliationNote, error)
}

var (
	ErrClientNotFound      = errors.New("client_not_found")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidReceivedDate = errors.New("invalid_received_date")
	ErrInvalidEntryDate    = errors.New("invalid_entry_date")
	ErrInvalidNote         = errors.New("invalid_note")
	ErrNoteNotFound        = errors.New("note_not_found")
)
