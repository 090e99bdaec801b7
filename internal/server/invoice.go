package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/harborlane/ledgerdesk/internal/invoice/domain"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type generateInvoiceRequest struct {
	ClientID    string `json:"client_id"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	TotalAmount string `json:"total_amount"`
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	clientID, ok := parseIDString(req.ClientID)
	if !ok {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
		return
	}

	total := decimal.Zero
	if strings.TrimSpace(req.TotalAmount) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(req.TotalAmount))
		if err != nil {
			AbortWithError(c, newValidationError("total_amount", "invalid_total", "expected a decimal amount"))
			return
		}
		total = parsed
	}

	invoice, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateInvoiceRequest{
		ClientID:    clientID,
		Year:        req.Year,
		Month:       req.Month,
		TotalAmount: total,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ClientID string `form:"client_id"`
		Year     int    `form:"year"`
		Month    int    `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var clientID *snowflake.ID
	if strings.TrimSpace(query.ClientID) != "" {
		id, ok := parseIDString(query.ClientID)
		if !ok {
			AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
			return
		}
		clientID = &id
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		Pagination: query.Pagination,
		ClientID:   clientID,
		Year:       query.Year,
		Month:      query.Month,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

type setInvoiceTotalRequest struct {
	TotalAmount string `json:"total_amount"`
}

func (s *Server) SetInvoiceTotal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setInvoiceTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	total, err := decimal.NewFromString(strings.TrimSpace(req.TotalAmount))
	if err != nil {
		AbortWithError(c, newValidationError("total_amount", "invalid_total", "expected a decimal amount"))
		return
	}

	invoice, err := s.invoiceSvc.SetTotal(c.Request.Context(), id, total)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) MarkInvoiceSent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := s.invoiceSvc.MarkSent(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) InvoiceDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	html, err := s.invoiceSvc.RenderDocument(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}
