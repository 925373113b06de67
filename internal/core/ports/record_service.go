package ports

import (
	"context"
	"time"

	"github.com/blackhole/records-system/internal/core/domain"
)

// AddRecordInput is the DTO passed from the transport layer to RecordService.
type AddRecordInput struct {
	Name        string
	Age         int
	DateOfBirth time.Time
	Description string
	ConnectedTo string
}

// RecordService is the record catalog.
type RecordService interface {
	Add(ctx context.Context, actor domain.Identity, in AddRecordInput) (*domain.Record, error)
	Search(ctx context.Context, query string) ([]domain.Record, error)
	List(ctx context.Context) ([]domain.Record, error)
}

// AuditService exposes the audit trail to administrators.
type AuditService interface {
	Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
