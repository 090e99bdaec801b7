package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Service writes audit trail entries. Implementations must never fail a
// caller's request path because auditing is best-effort; callers decide
// whether to ignore the returned error.
type Service interface {
	Record(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error
}

// ListFilter narrows audit queries.
type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}
