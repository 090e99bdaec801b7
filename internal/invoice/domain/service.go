package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// GenerateInvoiceRequest asks for an invoice covering one client and fiscal
// month. A zero TotalAmount means "derive the total from the client's active
// assignments for that month".
type GenerateInvoiceRequest struct {
	ClientID    snowflake.ID
	Year        int
	Month       int
	TotalAmount decimal.Decimal
}

type ListInvoiceRequest struct {
	pagination.Pagination
	ClientID *snowflake.ID
	Year     int
	Month    int
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Generate(ctx context.Context, req GenerateInvoiceRequest) (*Invoice, error)
	SetTotal(ctx context.Context, id snowflake.ID, total decimal.Decimal) (*Invoice, error)
	MarkSent(ctx context.Context, id snowflake.ID) (*Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)

	// RenderDocument produces the HTML invoice document.
	RenderDocument(ctx context.Context, id snowflake.ID) (string, error)
}

var (
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrInvoiceExists      = errors.New("invoice_exists")
	ErrInvoiceAlreadySent = errors.New("invoice_already_sent")
	ErrInvalidPeriod      = errors.New("invalid_period")
	ErrInvalidTotal       = errors.New("invalid_total")
)
