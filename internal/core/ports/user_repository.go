package ports

import (
	"context"

	"github.com/blackhole/records-system/internal/core/domain"
)

// UserRepository persists accounts and their role memberships. Every read
// returns the user with its full role set.
type UserRepository interface {
	// Create inserts the user and one membership per entry of user.Roles in a
	// single transaction. A taken username yields domain.ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// AddRole links the role to the user. Linking an existing member is a no-op.
	AddRole(ctx context.Context, userID, roleID int64) error
	List(ctx context.Context) ([]*domain.User, error)
}
