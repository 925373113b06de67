package ports

import (
	"context"

	"github.com/blackhole/records-system/internal/core/domain"
)

// RoleService is the role catalog.
type RoleService interface {
	Create(ctx context.Context, actor domain.Identity, name domain.RoleName) (*domain.Role, error)
	FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	Delete(ctx context.Context, actor domain.Identity, id int64) error
	List(ctx context.Context) ([]domain.Role, error)
}
