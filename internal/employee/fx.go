package employee

import (
	"github.com/harborlane/ledgerdesk/internal/employee/repository"
	"github.com/harborlane/ledgerdesk/internal/employee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
