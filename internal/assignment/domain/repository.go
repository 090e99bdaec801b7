package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	ClientID   *snowflake.ID
	EmployeeID *snowflake.ID
	Offset     int
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, assignment *Assignment) error
	Update(ctx context.Context, db *gorm.DB, assignment *Assignment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Assignment, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Assignment, error)
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// ActiveForPeriod returns the client's assignments covering a fiscal month;
	// used by invoice generation and profitability reporting.
	ActiveForPeriod(ctx context.Context, db *gorm.DB, clientID snowflake.ID, year, month int) ([]Assignment, error)
}
