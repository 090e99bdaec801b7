package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/harborlane/ledgerdesk/internal/assignment/domain"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type createAssignmentRequest struct {
	EmployeeID   string `json:"employee_id"`
	ClientID     string `json:"client_id"`
	MonthlyRate  string `json:"monthly_rate"`
	CurrencyCode string `json:"currency_code"`
	StartYear    int    `json:"start_year"`
	StartMonth   int    `json:"start_month"`
	EndYear      *int   `json:"end_year"`
	EndMonth     *int   `json:"end_month"`
}

func (s *Server) CreateAssignment(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	employeeID, ok := parseIDString(req.EmployeeID)
	if !ok {
		AbortWithError(c, newValidationError("employee_id", "invalid_employee_id", "invalid employee id"))
		return
	}
	clientID, ok := parseIDString(req.ClientID)
	if !ok {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
		return
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(req.MonthlyRate))
	if err != nil {
		AbortWithError(c, newValidationError("monthly_rate", "invalid_monthly_rate", "expected a decimal amount"))
		return
	}

	assignment, err := s.assignmentSvc.Create(c.Request.Context(), assignmentdomain.CreateAssignmentRequest{
		EmployeeID:   employeeID,
		ClientID:     clientID,
		MonthlyRate:  rate,
		CurrencyCode: req.CurrencyCode,
		StartYear:    req.StartYear,
		StartMonth:   req.StartMonth,
		EndYear:      req.EndYear,
		EndMonth:     req.EndMonth,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": assignment})
}

func (s *Server) ListAssignments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ClientID   string `form:"client_id"`
		EmployeeID string `form:"employee_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var clientID, employeeID *snowflake.ID
	if strings.TrimSpace(query.ClientID) != "" {
		id, ok := parseIDString(query.ClientID)
		if !ok {
			AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
			return
		}
		clientID = &id
	}
	if strings.TrimSpace(query.EmployeeID) != "" {
		id, ok := parseIDString(query.EmployeeID)
		if !ok {
			AbortWithError(c, newValidationError("employee_id", "invalid_employee_id", "invalid employee id"))
			return
		}
		employeeID = &id
	}

	resp, err := s.assignmentSvc.List(c.Request.Context(), assignmentdomain.ListAssignmentRequest{
		Pagination: query.Pagination,
		ClientID:   clientID,
		EmployeeID: employeeID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	assignment, err := s.assignmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": assignment})
}

type updateAssignmentRequest struct {
	MonthlyRate *string `json:"monthly_rate"`
	EndYear     *int    `json:"end_year"`
	EndMonth    *int    `json:"end_month"`
}

func (s *Server) UpdateAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := assignmentdomain.UpdateAssignmentRequest{
		EndYear:  req.EndYear,
		EndMonth: req.EndMonth,
	}
	if req.MonthlyRate != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.MonthlyRate))
		if err != nil {
			AbortWithError(c, newValidationError("monthly_rate", "invalid_monthly_rate", "expected a decimal amount"))
			return
		}
		update.MonthlyRate = &parsed
	}

	assignment, err := s.assignmentSvc.Update(c.Request.Context(), id, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": assignment})
}

func (s *Server) DeleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.assignmentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
