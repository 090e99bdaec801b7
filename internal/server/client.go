package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
)

type createClientRequest struct {
	Name          string `json:"name"`
	Abbreviation  string `json:"abbreviation"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	CurrencyCode  string `json:"currency_code"`
}

func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	client, err := s.clientSvc.Create(c.Request.Context(), clientdomain.CreateClientRequest{
		Name:          req.Name,
		Abbreviation:  req.Abbreviation,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Address:       req.Address,
		CurrencyCode:  req.CurrencyCode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	targetID := client.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "client.created", "client", &targetID, map[string]any{
		"name": client.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": client})
}

func (s *Server) ListClients(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name string `form:"name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.List(c.Request.Context(), clientdomain.ListClientRequest{
		Pagination: query.Pagination,
		Name:       strings.TrimSpace(query.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	client, err := s.clientSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": client})
}

type updateClientRequest struct {
	Name          *string `json:"name"`
	Abbreviation  *string `json:"abbreviation"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	CurrencyCode  *string `json:"currency_code"`
}

func (s *Server) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	client, err := s.clientSvc.Update(c.Request.Context(), id, clientdomain.UpdateClientRequest{
		Name:          req.Name,
		Abbreviation:  req.Abbreviation,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Address:       req.Address,
		CurrencyCode:  req.CurrencyCode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": client})
}

func (s *Server) DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.clientSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	targetID := id.String()
	_ = s.auditSvc.Record(c.Request.Context(), "client.deleted", "client", &targetID, nil)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListLedgerEntries(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := s.ledgerSvc.ListEntries(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

type upsertNoteRequest struct {
	Note string `json:"note"`
}

func (s *Server) UpsertClientNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req upsertNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	note, err := s.ledgerSvc.UpsertNote(c.Request.Context(), id, req.Note)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}

func (s *Server) GetClientNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	note, err := s.ledgerSvc.GetNote(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}

func (s *Server) RecalculateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.ledgerSvc.RecalculateBalances(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"recalculated": true}})
}
