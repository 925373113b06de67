package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

type accountService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	hasher ports.PasswordHasher
	audit  AuditSink
	log    zerolog.Logger
}

// NewAccountService returns an AccountService implementation.
func NewAccountService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	sink AuditSink,
	log zerolog.Logger,
) ports.AccountService {
	if sink == nil {
		sink = NopAuditSink
	}
	return &accountService{users: users, roles: roles, hasher: hasher, audit: sink, log: log}
}

// Register creates an account holding exactly the default role.
func (s *accountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.Validation("Username is required.")
	}
	if in.Password == "" {
		return nil, domain.Validation("Password is required.")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.Validation("Password must be at most %d bytes.", maxPasswordBytes)
	}

	// Resolve the default role first so a misconfigured catalog persists nothing.
	role, err := s.roles.FindByName(ctx, domain.DefaultRole)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Str("role", string(domain.DefaultRole)).Msg("default role missing from catalog")
			return nil, domain.Configuration("Default role %s not found.", domain.DefaultRole)
		}
		return nil, fmt.Errorf("register: find default role: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Roles:        []domain.Role{*role},
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	audit(s.audit, domain.AuditUserRegistered, created.Username, created.Username, string(role.Name))
	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Resolve returns the credential and live role set of username.
func (s *accountService) Resolve(ctx context.Context, username string) (*domain.Credential, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &domain.Credential{
		UserID:       user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Roles:        user.RoleSet(),
	}, nil
}

// AssignRole grants an existing role to an existing user. It never creates
// roles and never removes memberships.
func (s *accountService) AssignRole(ctx context.Context, actor domain.Identity, userID int64, roleName domain.RoleName) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("Only administrators can assign roles.")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	if user.HasRole(role.Name) {
		return user, nil
	}

	if err := s.users.AddRole(ctx, user.ID, role.ID); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	updated, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("assign role: reload user: %w", err)
	}

	audit(s.audit, domain.AuditRoleAssigned, actor.Username, updated.Username, string(role.Name))
	s.log.Info().
		Str("actor", actor.Username).
		Int64("user_id", updated.ID).
		Str("role", string(role.Name)).
		Msg("role assigned")
	return updated, nil
}

func (s *accountService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
