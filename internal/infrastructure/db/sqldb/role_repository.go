package sqldb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) ports.RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	m := roleModel{Name: string(role.Name)}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.AlreadyExists("Role already exists: %s", role.Name)
		}
		return nil, translate(err, nil)
	}
	out := m.toDomain()
	return &out, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id int64) (*domain.Role, error) {
	var m roleModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, func() error {
			return domain.NotFound("Role not found with ID: %d", id)
		})
	}
	out := m.toDomain()
	return &out, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	var m roleModel
	if err := r.db.WithContext(ctx).Where("name = ?", string(name)).First(&m).Error; err != nil {
		return nil, translate(err, func() error {
			return domain.NotFound("Role not found: %s", name)
		})
	}
	out := m.toDomain()
	return &out, nil
}

// Delete removes the role. A role still held by any user is rejected by the
// join table's foreign key and reported as domain.ErrConflict.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&roleModel{}, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return domain.Conflict("Role %d is still assigned to users.", id)
		}
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Role not found with ID: %d", id)
	}
	return nil
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	var models []roleModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, translate(err, nil)
	}
	out := make([]domain.Role, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}
