package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Employee is a billable staff member whose cost feeds profitability reports.
type Employee struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	Email       string          `gorm:"type:text" json:"email,omitempty"`
	Title       string          `gorm:"type:text" json:"title,omitempty"`
	MonthlyCost decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"monthly_cost"`
	JoinedOn    *time.Time      `gorm:"type:date" json:"joined_on,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the database table name.
func (Employee) TableName() string { return "employees" }
