package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/ledger/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

// New returns the gorm-backed ledger repository.
func New() domain.Repository {
	return &repository{}
}

func (r *repository) InsertEntry(ctx context.Context, db *gorm.DB, entry *domain.Ledger) error {
	if entry == nil {
		return errors.New("missing_entry")
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]domain.Ledger, error) {
	var entries []domain.Ledger
	err := db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("entry_date ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) UpdateBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, balance decimal.Decimal, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Ledger{}).
		Where("id = ?", id).
		Updates(map[string]any{"balance": balance, "updated_at": now}).Error
}

func (r *repository) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.PaymentTracker) error {
	if payment == nil {
		return errors.New("missing_payment")
	}
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repository) ListPayments(ctx context.Context, db *gorm.DB, clientID snowflake.ID) ([]domain.PaymentTracker, error) {
	var payments []domain.PaymentTracker
	err := db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("received_date ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) UpsertNote(ctx context.Context, db *gorm.DB, note *domain.ReconciliationNote) error {
	if note == nil {
		return errors.New("missing_note")
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"note", "updated_at"}),
		}).
		Create(note).Error
}

func (r *repository) FindNote(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (*domain.ReconciliationNote, error) {
	var note domain.ReconciliationNote
	err := db.WithContext(ctx).
		Where("client_id = ?", clientID).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}
