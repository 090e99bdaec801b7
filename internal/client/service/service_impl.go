package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/client/domain"
	"github.com/harborlane/ledgerdesk/internal/clock"
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
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (*domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" {
		return nil, domain.ErrInvalidCurrency
	}

	abbreviation := strings.TrimSpace(req.Abbreviation)
	if abbreviation == "" {
		abbreviation = abbreviate(name)
	}

	now := s.clock.Now()
	client := &domain.Client{
		ID:             s.genID.Generate(),
		Name:           name,
		Abbreviation:   abbreviation,
		ContactPerson:  strings.TrimSpace(req.ContactPerson),
		Email:          strings.TrimSpace(req.Email),
		Address:        strings.TrimSpace(req.Address),
		CurrencyCode:   currency,
		OrganizationID: req.OrganizationID,
		BankDetailID:   req.BankDetailID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, client); err != nil {
		return nil, err
	}

	s.log.Info("client created", zap.String("client_id", client.ID.String()), zap.String("name", client.Name))
	return client, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateClientRequest) (*domain.Client, error) {
	client, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		client.Name = name
	}
	if req.Abbreviation != nil {
		client.Abbreviation = strings.TrimSpace(*req.Abbreviation)
	}
	if req.ContactPerson != nil {
		client.ContactPerson = strings.TrimSpace(*req.ContactPerson)
	}
	if req.Email != nil {
		client.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		client.Address = strings.TrimSpace(*req.Address)
	}
	if req.CurrencyCode != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.CurrencyCode))
		if currency == "" {
			return nil, domain.ErrInvalidCurrency
		}
		client.CurrencyCode = currency
	}
	if req.BankDetailID != nil {
		client.BankDetailID = req.BankDetailID
	}

	client.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Client, error) {
	client, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	limit := req.Limit()
	offset := req.Offset()

	clients, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Name:   req.Name,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	return domain.ListClientResponse{
		PageInfo: pagination.PageInfo{NextPageToken: pagination.NextToken(offset, limit, len(clients))},
		Clients:  clients,
	}, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if err := s.repo.SoftDelete(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

// abbreviate derives an uppercase initialism from the client name.
func abbreviate(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(word[:1]))
	}
	return b.String()
}
