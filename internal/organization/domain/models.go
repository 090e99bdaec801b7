package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organization is the billing entity issuing invoices. A single row is seeded
// at startup; multi-tenant support is out of scope.
type Organization struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`
	TaxID     string       `gorm:"type:text" json:"tax_id,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// BankDetail is a payable bank account printed on invoice documents.
type BankDetail struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	BankName      string       `gorm:"type:text;not null" json:"bank_name"`
	AccountName   string       `gorm:"type:text;not null" json:"account_name"`
	AccountNumber string       `gorm:"type:text;not null" json:"account_number"`
	BranchCode    string       `gorm:"type:text" json:"branch_code,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (BankDetail) TableName() string { return "bank_details" }
