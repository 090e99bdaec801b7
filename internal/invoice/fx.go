package invoice

import (
	"github.com/harborlane/ledgerdesk/internal/invoice/render"
	"github.com/harborlane/ledgerdesk/internal/invoice/repository"
	"github.com/harborlane/ledgerdesk/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
