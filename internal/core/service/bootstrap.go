package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

// BootstrapOptions controls what Bootstrap provisions at startup.
type BootstrapOptions struct {
	SeedRoles     bool
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Bootstrap makes sure the role catalog holds the built-in roles and,
// when configured, that an administrator account exists. It fails with
// domain.ErrConfiguration when the default role is missing and seeding is
// disabled, since registration could never succeed.
func Bootstrap(
	ctx context.Context,
	roles ports.RoleRepository,
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	opts BootstrapOptions,
	log zerolog.Logger,
) error {
	for _, name := range []domain.RoleName{domain.RoleAdmin, domain.RoleReviewer} {
		_, err := roles.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("bootstrap: find role %s: %w", name, err)
		}
		if !opts.SeedRoles {
			if name == domain.DefaultRole {
				return domain.Configuration("Default role %s not found and role seeding is disabled.", name)
			}
			continue
		}
		if _, err := roles.Create(ctx, &domain.Role{Name: name}); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("bootstrap: seed role %s: %w", name, err)
		}
		log.Info().Str("role", string(name)).Msg("seeded role")
	}

	if opts.AdminUsername == "" {
		return nil
	}
	if _, err := users.FindByUsername(ctx, opts.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("bootstrap: find admin: %w", err)
	}
	if opts.AdminPassword == "" {
		return domain.Configuration("Bootstrap admin %s has no password configured.", opts.AdminUsername)
	}

	admin, err := roles.FindByName(ctx, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Configuration("Role %s not found; cannot provision bootstrap admin.", domain.RoleAdmin)
		}
		return fmt.Errorf("bootstrap: %w", err)
	}
	reviewer, err := roles.FindByName(ctx, domain.DefaultRole)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	hash, err := hasher.Hash(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap: hash password: %w", err)
	}
	created, err := users.Create(ctx, &domain.User{
		Username:     opts.AdminUsername,
		Email:        opts.AdminEmail,
		PasswordHash: hash,
		Roles:        []domain.Role{*reviewer, *admin},
	})
	if err != nil {
		return fmt.Errorf("bootstrap: create admin: %w", err)
	}
	log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("bootstrap admin created")
	return nil
}
