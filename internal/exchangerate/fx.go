package exchangerate

import (
	"github.com/harborlane/ledgerdesk/internal/exchangerate/repository"
	"github.com/harborlane/ledgerdesk/internal/exchangerate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("exchangerate.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
