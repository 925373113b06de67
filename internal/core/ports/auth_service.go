package ports

import (
	"context"
	"time"

	"github.com/blackhole/records-system/internal/core/domain"
)

// RegisterInput carries the candidate account submitted at registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AccountService covers account provisioning, authorization lookup and role
// assignment.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Resolve(ctx context.Context, username string) (*domain.Credential, error)
	AssignRole(ctx context.Context, actor domain.Identity, userID int64, roleName domain.RoleName) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// Session describes an issued access token.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, *domain.Credential, error)
	// Authenticate validates a bearer token and resolves the caller with its
	// current role set.
	Authenticate(ctx context.Context, token string) (domain.Identity, *Session, error)
	Logout(ctx context.Context, actor domain.Identity, session *Session) error
}
