package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ExchangeRate converts one unit of the named currency into the organization's
// base currency for a given fiscal month. One row per (currency, year, month).
type ExchangeRate struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	CurrencyCode string          `gorm:"type:text;not null;uniqueIndex:ux_exchange_rates_period" json:"currency_code"`
	Year         int             `gorm:"not null;uniqueIndex:ux_exchange_rates_period" json:"year"`
	Month        int             `gorm:"not null;uniqueIndex:ux_exchange_rates_period" json:"month"`
	Rate         decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"rate"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (ExchangeRate) TableName() string { return "exchange_rates" }
