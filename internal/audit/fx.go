package audit

import (
	"github.com/harborlane/ledgerdesk/internal/audit/repository"
	"github.com/harborlane/ledgerdesk/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
