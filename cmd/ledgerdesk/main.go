package main

import (
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/assignment"
	"github.com/harborlane/ledgerdesk/internal/audit"
	"github.com/harborlane/ledgerdesk/internal/client"
	"github.com/harborlane/ledgerdesk/internal/clock"
	"github.com/harborlane/ledgerdesk/internal/config"
	"github.com/harborlane/ledgerdesk/internal/employee"
	"github.com/harborlane/ledgerdesk/internal/events"
	"github.com/harborlane/ledgerdesk/internal/exchangerate"
	"github.com/harborlane/ledgerdesk/internal/invoice"
	"github.com/harborlane/ledgerdesk/internal/ledger"
	"github.com/harborlane/ledgerdesk/internal/migration"
	"github.com/harborlane/ledgerdesk/internal/observability/logger"
	"github.com/harborlane/ledgerdesk/internal/observability/metrics"
	"github.com/harborlane/ledgerdesk/internal/observability/tracing"
	"github.com/harborlane/ledgerdesk/internal/report"
	"github.com/harborlane/ledgerdesk/internal/seed"
	"github.com/harborlane/ledgerdesk/internal/server"
	"github.com/harborlane/ledgerdesk/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "ledgerdesk",
		Short:   "Back-office billing and ledger reconciliation service",
		Version: version,
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				config.Module,
				logger.Module,
				clock.Module,
				fx.Provide(newSnowflakeNode),
				db.Module,
				tracing.Module,
				metrics.Module,
				fx.Invoke(bootstrap),
				events.Module,
				audit.Module,
				client.Module,
				employee.Module,
				assignment.Module,
				exchangerate.Module,
				invoice.Module,
				ledger.Module,
				report.Module,
				server.Module,
				fx.Invoke(runDispatcher),
			)
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			conn, err := db.Open(cfg, log)
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(conn); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func newSnowflakeNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// bootstrap applies migrations and seeds default rows before the server and
// services come up.
func bootstrap(conn *gorm.DB, log *zap.Logger) error {
	if err := migration.RunMigrations(conn); err != nil {
		return err
	}
	if err := seed.EnsureDefaults(conn); err != nil {
		return err
	}
	log.Info("database ready")
	return nil
}

// runDispatcher drains the billing event outbox in the background for the
// lifetime of the process.
func runDispatcher(lc fx.Lifecycle, d *events.Dispatcher) {
	events.RunUnderLifecycle(lc, d)
}
