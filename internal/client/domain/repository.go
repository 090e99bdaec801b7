package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Name   string
	Offset int
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Client, error)
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// TouchPaymentLastUpdated bumps the client's payment timestamp; called by
	// the ledger engine inside the record-payment transaction.
	TouchPaymentLastUpdated(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}
