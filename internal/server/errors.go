package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/harborlane/ledgerdesk/internal/assignment/domain"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	employeedomain "github.com/harborlane/ledgerdesk/internal/employee/domain"
	exchangeratedomain "github.com/harborlane/ledgerdesk/internal/exchangerate/domain"
	invoicedomain "github.com/harborlane/ledgerdesk/internal/invoice/domain"
	ledgerdomain "github.com/harborlane/ledgerdesk/internal/ledger/domain"
	reportdomain "github.com/harborlane/ledgerdesk/internal/report/domain"
)

type errorKind int

const (
	kindValidation errorKind = iota
	kindNotFound
	kindConflict
	kindInternal
)

// apiError is a tagged error the HTTP layer can map to a status code without
// inspecting message strings.
type apiError struct {
	kind    errorKind
	code    string
	message string
	field   string
}

func (e *apiError) Error() string { return e.code }

func newValidationError(field, code, message string) *apiError {
	return &apiError{kind: kindValidation, code: code, message: message, field: field}
}

func invalidRequestError() *apiError {
	return &apiError{kind: kindValidation, code: "invalid_request", message: "request body or parameters are malformed"}
}

func notFoundError(code string) *apiError {
	return &apiError{kind: kindNotFound, code: code, message: "resource not found"}
}

// sentinelStatus maps domain sentinels onto HTTP statuses. Wrapped errors are
// matched with errors.Is, so services may annotate freely.
var sentinelStatus = []struct {
	err    error
	status int
}{
	{clientdomain.ErrClientNotFound, http.StatusNotFound},
	{ledgerdomain.ErrClientNotFound, http.StatusNotFound},
	{ledgerdomain.ErrNoteNotFound, http.StatusNotFound},
	{employeedomain.ErrEmployeeNotFound, http.StatusNotFound},
	{assignmentdomain.ErrAssignmentNotFound, http.StatusNotFound},
	{exchangeratedomain.ErrRateNotFound, http.StatusNotFound},
	{invoicedomain.ErrInvoiceNotFound, http.StatusNotFound},

	{invoicedomain.ErrInvoiceExists, http.StatusConflict},
	{invoicedomain.ErrInvoiceAlreadySent, http.StatusConflict},

	{clientdomain.ErrInvalidName, http.StatusBadRequest},
	{clientdomain.ErrInvalidCurrency, http.StatusBadRequest},
	{ledgerdomain.ErrInvalidAmount, http.StatusBadRequest},
	{ledgerdomain.ErrInvalidReceivedDate, http.StatusBadRequest},
	{ledgerdomain.ErrInvalidEntryDate, http.StatusBadRequest},
	{ledgerdomain.ErrInvalidNote, http.StatusBadRequest},
	{employeedomain.ErrInvalidName, http.StatusBadRequest},
	{employeedomain.ErrInvalidMonthlyCost, http.StatusBadRequest},
	{assignmentdomain.ErrInvalidRate, http.StatusBadRequest},
	{assignmentdomain.ErrInvalidPeriod, http.StatusBadRequest},
	{exchangeratedomain.ErrInvalidCurrency, http.StatusBadRequest},
	{exchangeratedomain.ErrInvalidPeriod, http.StatusBadRequest},
	{exchangeratedomain.ErrInvalidRate, http.StatusBadRequest},
	{invoicedomain.ErrInvalidPeriod, http.StatusBadRequest},
	{invoicedomain.ErrInvalidTotal, http.StatusBadRequest},
	{reportdomain.ErrInvalidPeriod, http.StatusBadRequest},
}

// AbortWithError translates any error into the `{"error": {...}}` response
// shape and aborts the request.
func AbortWithError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		status := http.StatusInternalServerError
		switch ae.kind {
		case kindValidation:
			status = http.StatusBadRequest
		case kindNotFound:
			status = http.StatusNotFound
		case kindConflict:
			status = http.StatusConflict
		}
		abortJSON(c, status, ae.code, ae.message, ae.field)
		return
	}

	for _, entry := range sentinelStatus {
		if errors.Is(err, entry.err) {
			abortJSON(c, entry.status, entry.err.Error(), entry.err.Error(), "")
			return
		}
	}

	abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error", "")
}

func abortJSON(c *gin.Context, status int, code, message, field string) {
	body := gin.H{"code": code, "message": message}
	if field != "" {
		body["field"] = field
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
