package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Assignment bills an employee's time to a client at a monthly rate between
// a start period and an optional end period (inclusive).
type Assignment struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	EmployeeID   snowflake.ID    `gorm:"not null;index" json:"employee_id"`
	ClientID     snowflake.ID    `gorm:"not null;index" json:"client_id"`
	MonthlyRate  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"monthly_rate"`
	CurrencyCode string          `gorm:"type:text;not null" json:"currency_code"`
	StartYear    int             `gorm:"not null" json:"start_year"`
	StartMonth   int             `gorm:"not null" json:"start_month"`
	EndYear      *int            `json:"end_year,omitempty"`
	EndMonth     *int            `json:"end_month,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the database table name.
func (Assignment) TableName() string { return "assignments" }

// ActiveIn reports whether the assignment covers the given fiscal month.
func (a Assignment) ActiveIn(year, month int) bool {
	start := year*12 + month
	if start < a.StartYear*12+a.StartMonth {
		return false
	}
	if a.EndYear != nil && a.EndMonth != nil && start > *a.EndYear*12+*a.EndMonth {
		return false
	}
	return true
}
