package events

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/harborlane/ledgerdesk/internal/migration"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOutbox(t *testing.T) (*Outbox, *Dispatcher, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migration.RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	outbox := NewOutbox(db, node)
	dispatcher := NewDispatcher(DispatcherParams{DB: db, Log: zap.NewNop()})
	return outbox, dispatcher, db
}

func TestDispatcherDrainsUnpublishedEvents(t *testing.T) {
	outbox, dispatcher, db := setupOutbox(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := outbox.Publish(ctx, Event{
			Type:    EventPaymentRecorded,
			Payload: map[string]any{"payment_id": fmt.Sprintf("p-%d", i)},
		})
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	processed, err := dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if processed != 3 {
		t.Fatalf("expected 3 events processed, got %d", processed)
	}

	var remaining int64
	if err := db.Raw(`SELECT COUNT(1) FROM billing_events WHERE published = ?`, false).Scan(&remaining).Error; err != nil {
		t.Fatalf("count unpublished: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected no unpublished events, got %d", remaining)
	}

	// A second drain finds nothing.
	processed, err = dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second run once: %v", err)
	}
	if processed != 0 {
		t.Fatalf("expected 0 events on second drain, got %d", processed)
	}
}

func TestPublishDeduplicatesOnKey(t *testing.T) {
	outbox, _, db := setupOutbox(t)
	ctx := context.Background()

	event := Event{
		Type:      EventInvoiceGenerated,
		Payload:   map[string]any{"invoice_id": "inv-1"},
		DedupeKey: "invoice:inv-1",
	}
	if err := outbox.Publish(ctx, event); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := outbox.Publish(ctx, event); err != nil {
		t.Fatalf("duplicate publish: %v", err)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM billing_events WHERE dedupe_key = ?`, "invoice:inv-1").Scan(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single deduplicated event, got %d", count)
	}
}

func TestPublishRequiresEventType(t *testing.T) {
	outbox, _, _ := setupOutbox(t)
	if err := outbox.Publish(context.Background(), Event{Type: "  "}); err == nil {
		t.Fatalf("expected error for missing event type")
	}
}
