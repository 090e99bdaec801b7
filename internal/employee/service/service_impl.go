package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/clock"
	"github.com/harborlane/ledgerdesk/internal/employee/domain"
	"github.com/harborlane/ledgerdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("employee.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEmployeeRequest) (*domain.Employee, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.MonthlyCost.IsNegative() {
		return nil, domain.ErrInvalidMonthlyCost
	}

	now := s.clock.Now()
	employee := &domain.Employee{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       strings.TrimSpace(req.Email),
		Title:       strings.TrimSpace(req.Title),
		MonthlyCost: req.MonthlyCost,
		JoinedOn:    req.JoinedOn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, employee); err != nil {
		return nil, err
	}

	s.log.Info("employee created", zap.String("employee_id", employee.ID.String()), zap.String("name", employee.Name))
	return employee, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateEmployeeRequest) (*domain.Employee, error) {
	employee, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, domain.ErrEmployeeNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		employee.Name = name
	}
	if req.Email != nil {
		employee.Email = strings.TrimSpace(*req.Email)
	}
	if req.Title != nil {
		employee.Title = strings.TrimSpace(*req.Title)
	}
	if req.MonthlyCost != nil {
		if req.MonthlyCost.IsNegative() {
			return nil, domain.ErrInvalidMonthlyCost
		}
		employee.MonthlyCost = *req.MonthlyCost
	}
	if req.JoinedOn != nil {
		employee.JoinedOn = req.JoinedOn
	}

	employee.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Employee, error) {
	employee, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return employee, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEmployeeRequest) (domain.ListEmployeeResponse, error) {
	limit := req.Limit()
	offset := req.Offset()

	employees, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Name:   req.Name,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return domain.ListEmployeeResponse{}, err
	}

	return domain.ListEmployeeResponse{
		PageInfo:  pagination.PageInfo{NextPageToken: pagination.NextToken(offset, limit, len(employees))},
		Employees: employees,
	}, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if err := s.repo.SoftDelete(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("employee deleted", zap.String("employee_id", id.String()))
	return nil
}
