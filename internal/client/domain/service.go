package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
)

// CreateClientRequest carries the fields accepted when registering a client.
type CreateClientRequest struct {
	Name           string
	Abbreviation   string
	ContactPerson  string
	Email          string
	Address        string
	CurrencyCode   string
	OrganizationID *snowflake.ID
	BankDetailID   *snowflake.ID
}

// UpdateClientRequest carries partial updates; nil fields are left untouched.
type UpdateClientRequest struct {
	Name          *string
	Abbreviation  *string
	ContactPerson *string
	Email         *string
	Address       *string
	CurrencyCode  *string
	BankDetailID  *snowflake.ID
}

// ListClientRequest filters the client listing.
type ListClientRequest struct {
	pagination.Pagination
	Name string
}

// ListClientResponse is the paged client listing.
type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (*Client, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateClientRequest) (*Client, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Client, error)
	List(ctx context.Context, req ListClientRequest) (ListClientResponse, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrClientNotFound  = errors.New("client_not_found")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCurrency = errors.New("invalid_currency")
)
