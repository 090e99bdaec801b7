package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists ledger rows, payment trackers and notes. Callers pass
// the database handle so a service-level transaction flows through.
type Repository interface {
	InsertEntry(ctx context.Context, db *gorm.DB, entry *Ledger) error
	ListEntries(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]Ledger, error)
	UpdateBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, balance decimal.Decimal, now time.Time) error

	InsertPayment(ctx context.Context, db *gorm.DB, payment *PaymentTracker) error
	ListPayments(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]PaymentTracker, error)

	UpsertNote(ctx context.Context, db *gorm.DB, note *ReconciliationNote) error
	FindNote(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (*ReconciliationNote, error)
}
