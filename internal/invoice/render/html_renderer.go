package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Invoice.Number}}</title>
  <style>
    body {
      margin: 0;
      padding: 40px;
      font-family: Georgia, "Times New Roman", serif;
      color: #1f2933;
      background: #ffffff;
    }
    .page { max-width: 760px; margin: 0 auto; }
    .top {
      display: flex;
      justify-content: space-between;
      border-bottom: 3px double #1f2933;
      padding-bottom: 20px;
      margin-bottom: 28px;
    }
    .top h1 { margin: 0; font-size: 28px; letter-spacing: 0.02em; }
    .ref { text-align: right; font-size: 14px; }
    .ref .number { font-size: 18px; font-weight: bold; }
    .parties { display: flex; gap: 48px; margin-bottom: 28px; font-size: 14px; }
    .parties h2 {
      font-size: 11px;
      text-transform: uppercase;
      letter-spacing: 0.08em;
      color: #616e7c;
      margin: 0 0 6px;
    }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { padding: 10px 8px; border-bottom: 1px solid #cbd2d9; text-align: left; }
    td.amount, th.amount { text-align: right; }
    tfoot td { border-bottom: none; font-weight: bold; font-size: 16px; }
    .bank {
      margin-top: 32px;
      padding: 16px;
      background: #f5f7fa;
      font-size: 13px;
    }
    .bank h2 {
      font-size: 11px;
      text-transform: uppercase;
      letter-spacing: 0.08em;
      color: #616e7c;
      margin: 0 0 8px;
    }
  </style>
</head>
<body>
  <div class="page">
    <div class="top">
      <div>
        <h1>Invoice</h1>
        <div>{{.Organization.Name}}</div>
        {{if .Organization.Address}}<div>{{.Organization.Address}}</div>{{end}}
        {{if .Organization.TaxID}}<div>Tax ID: {{.Organization.TaxID}}</div>{{end}}
      </div>
      <div class="ref">
        <div class="number">{{.Invoice.Number}}</div>
        <div>Status: {{.Invoice.Status}}</div>
        <div>Generated: {{formatDate .Invoice.GeneratedOn}}</div>
        {{if .Invoice.InvoicedOn}}<div>Sent: {{formatDatePtr .Invoice.InvoicedOn}}</div>{{end}}
      </div>
    </div>

    <div class="parties">
      <div>
        <h2>Billed To</h2>
        <div><strong>{{.Client.Name}}</strong></div>
        {{if .Client.ContactPerson}}<div>Attn: {{.Client.ContactPerson}}</div>{{end}}
        {{if .Client.Address}}<div>{{.Client.Address}}</div>{{end}}
        {{if .Client.Email}}<div>{{.Client.Email}}</div>{{end}}
      </div>
      <div>
        <h2>Billing Period</h2>
        <div>{{formatDate .Invoice.PeriodStart}} to {{formatDate .Invoice.PeriodEnd}}</div>
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th>Description</th>
          <th class="amount">Amount</th>
        </tr>
      </thead>
      <tbody>
        {{range .Lines}}
        <tr>
          <td>{{.Description}}</td>
          <td class="amount">{{formatMoney .Amount $.Invoice.Currency}}</td>
        </tr>
        {{end}}
      </tbody>
      <tfoot>
        <tr>
          <td>Total Due</td>
          <td class="amount">{{formatMoney .Invoice.Total .Invoice.Currency}}</td>
        </tr>
      </tfoot>
    </table>

    {{if .Bank}}
    <div class="bank">
      <h2>Payment Details</h2>
      <div>{{.Bank.BankName}}</div>
      <div>Account: {{.Bank.AccountName}} / {{.Bank.AccountNumber}}</div>
      {{if .Bank.BranchCode}}<div>Branch: {{.Bank.BranchCode}}</div>{{end}}
    </div>
    {{end}}
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatMoney":   formatMoney,
		"formatDate":    formatDate,
		"formatDatePtr": formatDatePtr,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input DocumentInput) (string, error) {
	if input.Organization.Name == "" {
		input.Organization.Name = "Invoice"
	}
	if len(input.Lines) == 0 {
		input.Lines = []LineView{{
			Description: fmt.Sprintf("Professional services, %s", input.Invoice.PeriodStart.Format("January 2006")),
			Amount:      input.Invoice.Total,
		}}
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatMoney(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}

func formatDatePtr(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return formatDate(*value)
}
