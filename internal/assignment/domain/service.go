package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateAssignmentRequest struct {
	EmployeeID   snowflake.ID
	ClientID     snowflake.ID
	MonthlyRate  decimal.Decimal
	CurrencyCode string
	StartYear    int
	StartMonth   int
	EndYear      *int
	EndMonth     *int
}

// UpdateAssignmentRequest carries partial updates; nil fields are left untouched.
type UpdateAssignmentRequest struct {
	MonthlyRate *decimal.Decimal
	EndYear     *int
	EndMonth    *int
}

type ListAssignmentRequest struct {
	pagination.Pagination
	ClientID   *snowflake.ID
	EmployeeID *snowflake.ID
}

type ListAssignmentResponse struct {
	pagination.PageInfo
	Assignments []Assignment `json:"assignments"`
}

type Service interface {
	Create(ctx context.Context, req CreateAssignmentRequest) (*Assignment, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateAssignmentRequest) (*Assignment, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Assignment, error)
	List(ctx context.Context, req ListAssignmentRequest) (ListAssignmentResponse, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrAssignmentNotFound = errors.New("assignment_not_found")
	ErrInvalidRate        = errors.New("invalid_rate")
	ErrInvalidPeriod      = errors.New("invalid_period")
)
