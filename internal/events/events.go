package events

// Billing event types emitted through the outbox.
const (
	EventPaymentRecorded    = "payment.recorded"
	EventInvoiceGenerated   = "invoice.generated"
	EventInvoiceSent        = "invoice.sent"
	EventLedgerRecalculated = "ledger.recalculated"
)

// PaymentRecordedPayload captures the minimal data downstream consumers need
// to react to a recorded payment.
type PaymentRecordedPayload struct {
	PaymentID string `json:"payment_id"`
	ClientID  string `json:"client_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p PaymentRecordedPayload) ToMap() map[string]any {
	payload := map[string]any{
		"payment_id": p.PaymentID,
		"client_id":  p.ClientID,
		"amount":     p.Amount,
	}
	if p.Currency != "" {
		payload["currency"] = p.Currency
	}
	return payload
}

// InvoicePayload captures the minimal data needed to roll up invoice events.
type InvoicePayload struct {
	InvoiceID string `json:"invoice_id"`
	ClientID  string `json:"client_id"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p InvoicePayload) ToMap() map[string]any {
	return map[string]any{
		"invoice_id": p.InvoiceID,
		"client_id":  p.ClientID,
		"year":       p.Year,
		"month":      p.Month,
	}
}
