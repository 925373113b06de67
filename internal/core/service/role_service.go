package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

type roleService struct {
	repo  ports.RoleRepository
	audit AuditSink
	log   zerolog.Logger
}

// NewRoleService returns a RoleService implementation.
func NewRoleService(repo ports.RoleRepository, sink AuditSink, log zerolog.Logger) ports.RoleService {
	if sink == nil {
		sink = NopAuditSink
	}
	return &roleService{repo: repo, audit: sink, log: log}
}

func (s *roleService) Create(ctx context.Context, actor domain.Identity, name domain.RoleName) (*domain.Role, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("Only administrators can manage roles.")
	}
	name = domain.RoleName(strings.TrimSpace(string(name)))
	if name == "" {
		return nil, domain.Validation("Role name is required.")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, domain.AlreadyExists("Role already exists: %s", name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("create role: %w", err)
	}

	// A concurrent insert can still win the race; the repository maps the
	// unique violation to the same error.
	created, err := s.repo.Create(ctx, &domain.Role{Name: name})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.AlreadyExists("Role already exists: %s", name)
		}
		return nil, err
	}

	audit(s.audit, domain.AuditRoleCreated, actor.Username, string(created.Name), "")
	s.log.Info().Str("actor", actor.Username).Str("role", string(created.Name)).Msg("role created")
	return created, nil
}

func (s *roleService) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	return s.repo.FindByName(ctx, name)
}

func (s *roleService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("Only administrators can manage roles.")
	}

	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("Role not found with ID: %d", id)
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	audit(s.audit, domain.AuditRoleDeleted, actor.Username, string(role.Name), strconv.FormatInt(id, 10))
	s.log.Info().Str("actor", actor.Username).Int64("role_id", id).Msg("role deleted")
	return nil
}

func (s *roleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.repo.List(ctx)
}
