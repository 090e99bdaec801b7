package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/harborlane/ledgerdesk/internal/ledger/domain"
	"github.com/shopspring/decimal"
)

type recordPaymentRequest struct {
	ClientID     string `json:"client_id"`
	ReceivedDate string `json:"received_date"`
	Amount       string `json:"amount"`
	Remark       string `json:"remark"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	clientID, ok := parseIDString(req.ClientID)
	if !ok {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
		return
	}
	receivedDate, err := parseDate(req.ReceivedDate)
	if err != nil {
		AbortWithError(c, newValidationError("received_date", "invalid_received_date", "expected YYYY-MM-DD"))
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "expected a decimal amount"))
		return
	}

	payment, err := s.ledgerSvc.RecordPayment(c.Request.Context(), ledgerdomain.RecordPaymentRequest{
		ClientID:     clientID,
		ReceivedDate: receivedDate,
		Amount:       amount,
		Remark:       req.Remark,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": payment})
}

func (s *Server) ListPayments(c *gin.Context) {
	clientID, ok := parseIDString(c.Query("client_id"))
	if !ok {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "client_id query parameter is required"))
		return
	}

	payments, err := s.ledgerSvc.ListPayments(c.Request.Context(), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payments})
}

// parseIDString parses a snowflake ID from request input.
func parseIDString(raw string) (snowflake.ID, bool) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return snowflake.ID(parsed), true
}
