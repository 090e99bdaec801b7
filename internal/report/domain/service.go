package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ClientProfit is one row of the profitability report: what a client was
// billed for a fiscal month against the cost of the staff assigned to it.
type ClientProfit struct {
	ClientID   snowflake.ID    `json:"clientId"`
	ClientName string          `json:"clientName"`
	Billed     decimal.Decimal `json:"billed"`
	Cost       decimal.Decimal `json:"cost"`
	Margin     decimal.Decimal `json:"margin"`
}

type Service interface {
	Profitability(ctx context.Context, year, month int) ([]ClientProfit, error)
}

var ErrInvalidPeriod = errors.New("invalid_period")
