package assignment

import (
	"github.com/harborlane/ledgerdesk/internal/assignment/repository"
	"github.com/harborlane/ledgerdesk/internal/assignment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("assignment.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
