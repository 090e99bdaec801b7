package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Client is a billable customer of the organization.
type Client struct {
	ID                 snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"type:text;not null;index" json:"name"`
	Abbreviation       string         `gorm:"type:text;not null" json:"abbreviation"`
	ContactPerson      string         `gorm:"type:text" json:"contact_person,omitempty"`
	Email              string         `gorm:"type:text" json:"email,omitempty"`
	Address            string         `gorm:"type:text" json:"address,omitempty"`
	CurrencyCode       string         `gorm:"type:text;not null" json:"currency_code"`
	OrganizationID     *snowflake.ID  `gorm:"index" json:"organization_id,omitempty"`
	BankDetailID       *snowflake.ID  `gorm:"index" json:"bank_detail_id,omitempty"`
	PaymentLastUpdated *time.Time     `json:"payment_last_updated,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }
