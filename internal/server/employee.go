package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	employeedomain "github.com/harborlane/ledgerdesk/internal/employee/domain"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type createEmployeeRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Title       string `json:"title"`
	MonthlyCost string `json:"monthly_cost"`
	JoinedOn    string `json:"joined_on"`
}

func (s *Server) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cost := decimal.Zero
	if strings.TrimSpace(req.MonthlyCost) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(req.MonthlyCost))
		if err != nil {
			AbortWithError(c, newValidationError("monthly_cost", "invalid_monthly_cost", "expected a decimal amount"))
			return
		}
		cost = parsed
	}

	var joinedOn *time.Time
	if strings.TrimSpace(req.JoinedOn) != "" {
		parsed, err := parseDate(req.JoinedOn)
		if err != nil {
			AbortWithError(c, newValidationError("joined_on", "invalid_joined_on", "expected YYYY-MM-DD"))
			return
		}
		joinedOn = &parsed
	}

	employee, err := s.employeeSvc.Create(c.Request.Context(), employeedomain.CreateEmployeeRequest{
		Name:        req.Name,
		Email:       req.Email,
		Title:       req.Title,
		MonthlyCost: cost,
		JoinedOn:    joinedOn,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": employee})
}

func (s *Server) ListEmployees(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name string `form:"name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.List(c.Request.Context(), employeedomain.ListEmployeeRequest{
		Pagination: query.Pagination,
		Name:       strings.TrimSpace(query.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	employee, err := s.employeeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": employee})
}

type updateEmployeeRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Title       *string `json:"title"`
	MonthlyCost *string `json:"monthly_cost"`
	JoinedOn    *string `json:"joined_on"`
}

func (s *Server) UpdateEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := employeedomain.UpdateEmployeeRequest{
		Name:  req.Name,
		Email: req.Email,
		Title: req.Title,
	}
	if req.MonthlyCost != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.MonthlyCost))
		if err != nil {
			AbortWithError(c, newValidationError("monthly_cost", "invalid_monthly_cost", "expected a decimal amount"))
			return
		}
		update.MonthlyCost = &parsed
	}
	if req.JoinedOn != nil {
		parsed, err := parseDate(*req.JoinedOn)
		if err != nil {
			AbortWithError(c, newValidationError("joined_on", "invalid_joined_on", "expected YYYY-MM-DD"))
			return
		}
		update.JoinedOn = &parsed
	}

	employee, err := s.employeeSvc.Update(c.Request.Context(), id, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": employee})
}

func (s *Server) DeleteEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.employeeSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
