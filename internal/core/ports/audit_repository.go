package ports

import (
	"context"

	"github.com/blackhole/records-system/internal/core/domain"
)

// AuditRepository handles audit trail persistence.
type AuditRepository interface {
	// Insert appends an event to the audit trail.
	Insert(ctx context.Context, event *domain.AuditEvent) error

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
