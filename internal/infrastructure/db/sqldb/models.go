package sqldb

import (
	"time"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/blackhole/records-system/internal/core/domain"
)

type roleModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:64;not null;uniqueIndex"`
}

func (roleModel) TableName() string { return "roles" }

func (m roleModel) toDomain() domain.Role {
	return domain.Role{ID: m.ID, Name: domain.RoleName(m.Name)}
}

type userModel struct {
	ID        int64       `gorm:"primaryKey"`
	Username  string      `gorm:"size:128;not null;uniqueIndex"`
	Email     string      `gorm:"size:255;not null"`
	Password  string      `gorm:"size:255;not null"`
	Roles     []roleModel `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() *domain.User {
	u := &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.Password,
		Roles:        make([]domain.Role, 0, len(m.Roles)),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, r := range m.Roles {
		u.Roles = append(u.Roles, r.toDomain())
	}
	return u
}

func userFromDomain(u *domain.User) *userModel {
	m := &userModel{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Password: u.PasswordHash,
	}
	for _, r := range u.Roles {
		m.Roles = append(m.Roles, roleModel{ID: r.ID, Name: string(r.Name)})
	}
	return m
}

// userRoleModel addresses rows of the join table directly.
type userRoleModel struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false"`
	RoleID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (userRoleModel) TableName() string { return "user_roles" }

type recordModel struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:255;not null;index"`
	Age         int       `gorm:"not null"`
	DateOfBirth time.Time `gorm:"not null"`
	Description string    `gorm:"type:text;not null"`
	ConnectedTo string    `gorm:"size:255;not null"`
	CreatedAt   time.Time

	// Case-folded copies of the searchable columns. SQL LOWER only folds
	// ASCII on sqlite, so folding happens here for every driver.
	NameFolded        string `gorm:"size:255;not null;default:''"`
	DescriptionFolded string `gorm:"type:text;not null;default:''"`
}

func (recordModel) TableName() string { return "criminals" }

// BeforeSave keeps the folded columns in step with name and description.
func (m *recordModel) BeforeSave(*gorm.DB) error {
	m.NameFolded = fold(m.Name)
	m.DescriptionFolded = fold(m.Description)
	return nil
}

// fold applies full Unicode case folding. A Caser is not safe for
// concurrent use, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func (m *recordModel) toDomain() domain.Record {
	return domain.Record{
		ID:          m.ID,
		Name:        m.Name,
		Age:         m.Age,
		DateOfBirth: m.DateOfBirth.UTC(),
		Description: m.Description,
		ConnectedTo: m.ConnectedTo,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}
