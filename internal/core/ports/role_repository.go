package ports

import (
	"context"

	"github.com/blackhole/records-system/internal/core/domain"
)

// RoleRepository is the storage behind the role catalog.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByID(ctx context.Context, id int64) (*domain.Role, error)
	FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Role, error)
}
