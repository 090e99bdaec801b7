package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	exchangeratedomain "github.com/harborlane/ledgerdesk/internal/exchangerate/domain"
	"github.com/shopspring/decimal"
)

type upsertExchangeRateRequest struct {
	CurrencyCode string `json:"currency_code"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Rate         string `json:"rate"`
}

func (s *Server) UpsertExchangeRate(c *gin.Context) {
	var req upsertExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(req.Rate))
	if err != nil {
		AbortWithError(c, newValidationError("rate", "invalid_rate", "expected a decimal rate"))
		return
	}

	stored, err := s.rateSvc.Upsert(c.Request.Context(), exchangeratedomain.UpsertRateRequest{
		CurrencyCode: req.CurrencyCode,
		Year:         req.Year,
		Month:        req.Month,
		Rate:         rate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stored})
}

func (s *Server) ListExchangeRates(c *gin.Context) {
	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("year", "invalid_year", "expected a year"))
			return
		}
		year = parsed
	}

	rates, err := s.rateSvc.List(c.Request.Context(), exchangeratedomain.ListRateRequest{
		CurrencyCode: c.Query("currency_code"),
		Year:         year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rates})
}
