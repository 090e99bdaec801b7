package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	Name        string
	Email       string
	Title       string
	MonthlyCost decimal.Decimal
	JoinedOn    *time.Time
}

// UpdateEmployeeRequest carries partial updates; nil fields are left untouched.
type UpdateEmployeeRequest struct {
	Name        *string
	Email       *string
	Title       *string
	MonthlyCost *decimal.Decimal
	JoinedOn    *time.Time
}

type ListEmployeeRequest struct {
	pagination.Pagination
	Name string
}

type ListEmployeeResponse struct {
	pagination.PageInfo
	Employees []Employee `json:"employees"`
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (*Employee, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateEmployeeRequest) (*Employee, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Employee, error)
	List(ctx context.Context, req ListEmployeeRequest) (ListEmployeeResponse, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrEmployeeNotFound   = errors.New("employee_not_found")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidMonthlyCost = errors.New("invalid_monthly_cost")
)
