package render

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentInput is the deterministic input used to render an invoice document.
type DocumentInput struct {
	Organization OrganizationView
	Client       ClientView
	Invoice      InvoiceView
	Lines        []LineView
	Bank         *BankView
}

type OrganizationView struct {
	Name    string
	Address string
	TaxID   string
}

type ClientView struct {
	Name          string
	ContactPerson string
	Email         string
	Address       string
}

type InvoiceView struct {
	Number      string
	Status      string
	Currency    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	GeneratedOn time.Time
	InvoicedOn  *time.Time
	Total       decimal.Decimal
}

type LineView struct {
	Description string
	Amount      decimal.Decimal
}

type BankView struct {
	BankName      string
	AccountName   string
	AccountNumber string
	BranchCode    string
}

type Renderer interface {
	RenderHTML(input DocumentInput) (string, error)
}
