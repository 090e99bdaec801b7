package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger is a stored invoice charge against a client, annotated with the
// running balance at that point in the client's history. Balance is engine
// managed and never accepted from callers.
type Ledger struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	ClientID  snowflake.ID    `gorm:"not null;index:ix_ledgers_client_date,priority:1" json:"client_id"`
	EntryDate time.Time       `gorm:"not null;index:ix_ledgers_client_date,priority:2" json:"entry_date"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the database table name.
func (Ledger) TableName() string { return "ledgers" }

// PaymentTracker records a payment received from a client. Rows are written
// once and never updated; they are immutable inputs to reconciliation.
type PaymentTracker struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	ClientID     snowflake.ID    `gorm:"not null;index:ix_payment_trackers_client_date,priority:1" json:"client_id"`
	ReceivedDate time.Time       `gorm:"not null;index:ix_payment_trackers_client_date,priority:2" json:"received_date"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Remark       string          `gorm:"type:text" json:"remark,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (PaymentTracker) TableName() string { return "payment_trackers" }

// ReconciliationNote is the single free-text note kept per client.
type ReconciliationNote struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID  snowflake.ID `gorm:"not null;uniqueIndex:ux_reconciliation_notes_client" json:"client_id"`
	Note      string       `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (ReconciliationNote) TableName() string { return "reconciliation_notes" }

// EventKind tags a merged history event during recalculation.
type EventKind string

const (
	EventKindInvoice EventKind = "invoice"
	EventKindPayment EventKind = "payment"
)

// BalanceEvent is one dated entry in a client's merged invoice/payment
// history. RecordID is the source row's snowflake ID; snowflake IDs increase
// with creation time, so it doubles as the same-date tie-break.
type BalanceEvent struct {
	Kind     EventKind
	RecordID snowflake.ID
	Date     time.Time
	Amount   decimal.Decimal
}

// ClientBalance is one row of the balance report.
type ClientBalance struct {
	ClientID   snowflake.ID    `json:"clientId"`
	ClientName string          `json:"clientName"`
	TotalBill  decimal.Decimal `json:"totalBill"`
	TotalPaid  decimal.Decimal `json:"totalPaid"`
	Balance    decimal.Decimal `json:"balance"`
}
