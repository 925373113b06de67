package sqldb

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

// UserRepository implements ports.UserRepository with gorm. Every read
// preloads the role set in the same call.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) withRoles(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Roles", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("roles.id")
	})
}

// Create inserts the user and its memberships in one transaction. Roles must
// already exist; they are linked, never upserted.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := userFromDomain(user)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Roles.*").Create(m).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.AlreadyExists("Username already taken: %s", user.Username)
		}
		return nil, translate(err, nil)
	}
	return r.FindByID(ctx, m.ID)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := r.withRoles(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, func() error {
			return domain.NotFound("User not found with ID: %d", id)
		})
	}
	return m.toDomain(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m userModel
	if err := r.withRoles(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		return nil, translate(err, func() error {
			return domain.NotFound("User not found: %s", username)
		})
	}
	return m.toDomain(), nil
}

// AddRole inserts the membership row, doing nothing when it already exists.
func (r *UserRepository) AddRole(ctx context.Context, userID, roleID int64) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userRoleModel{UserID: userID, RoleID: roleID}).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.NotFound("User %d or role %d not found.", userID, roleID)
	}
	return translate(err, nil)
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var models []userModel
	if err := r.withRoles(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, translate(err, nil)
	}
	out := make([]*domain.User, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}
