package client

import (
	"github.com/harborlane/ledgerdesk/internal/client/repository"
	"github.com/harborlane/ledgerdesk/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
