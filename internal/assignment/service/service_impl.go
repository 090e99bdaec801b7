package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/assignment/domain"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	"github.com/harborlane/ledgerdesk/internal/clock"
	employeedomain "github.com/harborlane/ledgerdesk/internal/employee/domain"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ClientRepo   clientdomain.Repository
	EmployeeRepo employeedomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	clientRepo   clientdomain.Repository
	employeeRepo employeedomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("assignment.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		clientRepo:   p.ClientRepo,
		employeeRepo: p.EmployeeRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAssignmentRequest) (*domain.Assignment, error) {
	if req.MonthlyRate.IsNegative() {
		return nil, domain.ErrInvalidRate
	}
	if !validPeriod(req.StartYear, req.StartMonth) {
		return nil, domain.ErrInvalidPeriod
	}
	if (req.EndYear == nil) != (req.EndMonth == nil) {
		return nil, domain.ErrInvalidPeriod
	}
	if req.EndYear != nil {
		if !validPeriod(*req.EndYear, *req.EndMonth) {
			return nil, domain.ErrInvalidPeriod
		}
		if *req.EndYear*12+*req.EndMonth < req.StartYear*12+req.StartMonth {
			return nil, domain.ErrInvalidPeriod
		}
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, clientdomain.ErrClientNotFound
	}
	employee, err := s.employeeRepo.FindByID(ctx, s.db, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, employeedomain.ErrEmployeeNotFound
	}

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" {
		currency = client.CurrencyCode
	}

	now := s.clock.Now()
	assignment := &domain.Assignment{
		ID:           s.genID.Generate(),
		EmployeeID:   employee.ID,
		ClientID:     client.ID,
		MonthlyRate:  req.MonthlyRate,
		CurrencyCode: currency,
		StartYear:    req.StartYear,
		StartMonth:   req.StartMonth,
		EndYear:      req.EndYear,
		EndMonth:     req.EndMonth,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, assignment); err != nil {
		return nil, err
	}

	s.log.Info("assignment created",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("client_id", assignment.ClientID.String()),
		zap.String("employee_id", assignment.EmployeeID.String()),
	)
	return assignment, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateAssignmentRequest) (*domain.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, domain.ErrAssignmentNotFound
	}

	if req.MonthlyRate != nil {
		if req.MonthlyRate.IsNegative() {
			return nil, domain.ErrInvalidRate
		}
		assignment.MonthlyRate = *req.MonthlyRate
	}
	if req.EndYear != nil && req.EndMonth != nil {
		if !validPeriod(*req.EndYear, *req.EndMonth) {
			return nil, domain.ErrInvalidPeriod
		}
		assignment.EndYear = req.EndYear
		assignment.EndMonth = req.EndMonth
	}

	assignment.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, domain.ErrAssignmentNotFound
	}
	return assignment, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAssignmentRequest) (domain.ListAssignmentResponse, error) {
	limit := req.Limit()
	offset := req.Offset()

	assignments, err := s.repo.List(ctx, s.db, domain.ListFilter{
		ClientID:   req.ClientID,
		EmployeeID: req.EmployeeID,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return domain.ListAssignmentResponse{}, err
	}

	return domain.ListAssignmentResponse{
		PageInfo:    pagination.PageInfo{NextPageToken: pagination.NextToken(offset, limit, len(assignments))},
		Assignments: assignments,
	}, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if err := s.repo.SoftDelete(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("assignment deleted", zap.String("assignment_id", id.String()))
	return nil
}

func validPeriod(year, month int) bool {
	return year >= 2000 && year <= 2200 && month >= 1 && month <= 12
}
