package ledger

import (
	"github.com/harborlane/ledgerdesk/internal/ledger/repository"
	"github.com/harborlane/ledgerdesk/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
