package events

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DispatcherConfig controls the outbox drain loop.
type DispatcherConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	return c
}

type DispatcherParams struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config DispatcherConfig `optional:"true"`
}

// Dispatcher drains unpublished outbox rows. Delivery here is a structured
// log line; swapping in a message broker only changes deliver().
type Dispatcher struct {
	db  *gorm.DB
	log *zap.Logger
	cfg DispatcherConfig
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	return &Dispatcher{
		db:  p.DB,
		log: p.Log.Named("events.dispatcher"),
		cfg: p.Config.withDefaults(),
	}
}

func (d *Dispatcher) RunForever(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := d.RunOnce(ctx); err != nil {
			d.log.Warn("outbox drain failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type outboxRow struct {
	ID        snowflake.ID      `gorm:"column:id"`
	EventType string            `gorm:"column:event_type"`
	Payload   datatypes.JSONMap `gorm:"column:payload"`
}

// RunOnce publishes one batch and returns how many events it handled.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	if d.db == nil {
		return 0, errors.New("dispatcher_unavailable")
	}

	processed := 0
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []outboxRow
		if err := tx.WithContext(ctx).Raw(
			`SELECT id, event_type, payload
			 FROM billing_events
			 WHERE published = ?
			 ORDER BY created_at ASC, id ASC
			 LIMIT ?`,
			false,
			d.cfg.BatchSize,
		).Scan(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, row := range rows {
			d.deliver(row)
			if err := tx.WithContext(ctx).Exec(
				`UPDATE billing_events
				 SET published = ?, published_at = ?
				 WHERE id = ?`,
				true,
				now,
				row.ID,
			).Error; err != nil {
				return err
			}
			processed++
		}
		return nil
	})
	return processed, err
}

func (d *Dispatcher) deliver(row outboxRow) {
	d.log.Info("billing event",
		zap.String("event_id", row.ID.String()),
		zap.String("event_type", row.EventType),
		zap.Any("payload", map[string]any(row.Payload)),
	)
}

// RunUnderLifecycle runs the drain loop for the lifetime of the fx app.
func RunUnderLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				d.RunForever(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

var Module = fx.Module("events",
	fx.Provide(NewOutbox),
	fx.Provide(NewDispatcher),
)
