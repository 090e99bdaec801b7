package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice statuses. An invoice is generated first and marked sent once the
// document has gone out to the client.
const (
	StatusGenerated = "generated"
	StatusSent      = "sent"
)

// Invoice bills one client for one fiscal month. One row per client+period.
type Invoice struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	ClientID     snowflake.ID    `gorm:"not null;index:ix_invoices_client_period" json:"client_id"`
	CurrencyCode string          `gorm:"type:text;not null" json:"currency_code"`
	Year         int             `gorm:"not null;index:ix_invoices_client_period" json:"year"`
	Month        int             `gorm:"not null;index:ix_invoices_client_period" json:"month"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	Status       string          `gorm:"type:text;not null" json:"status"`
	DocumentPath string          `gorm:"type:text" json:"document_path,omitempty"`
	GeneratedOn  time.Time       `gorm:"not null" json:"generated_on"`
	InvoicedOn   *time.Time      `json:"invoiced_on,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// PeriodStart is the first day of the invoice's fiscal month.
func (i Invoice) PeriodStart() time.Time {
	return time.Date(i.Year, time.Month(i.Month), 1, 0, 0, 0, 0, time.UTC)
}

// PeriodEnd is the last day of the invoice's fiscal month.
func (i Invoice) PeriodEnd() time.Time {
	return i.PeriodStart().AddDate(0, 1, -1)
}
