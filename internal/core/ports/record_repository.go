package ports

import (
	"context"

	"github.com/blackhole/records-system/internal/core/domain"
)

// RecordRepository stores criminal records.
type RecordRepository interface {
	Create(ctx context.Context, r *domain.Record) (*domain.Record, error)
	// Search returns records whose name or description contains query,
	// ignoring case. query is bound as a parameter, never spliced into SQL.
	Search(ctx context.Context, query string) ([]domain.Record, error)
	List(ctx context.Context) ([]domain.Record, error)
}
