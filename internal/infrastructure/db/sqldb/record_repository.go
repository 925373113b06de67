package sqldb

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

// searchPredicate matches the case-folded name or description. Both
// placeholders receive the same escaped, folded pattern.
const searchPredicate = `name_folded LIKE ? ESCAPE '\' OR description_folded LIKE ? ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) ports.RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	m := recordModel{
		Name:        rec.Name,
		Age:         rec.Age,
		DateOfBirth: rec.DateOfBirth.UTC(),
		Description: rec.Description,
		ConnectedTo: rec.ConnectedTo,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, translate(err, nil)
	}
	out := m.toDomain()
	return &out, nil
}

// Search binds query as a LIKE pattern with wildcards escaped, so the
// result is always a plain substring match. Query and columns are folded
// the same way in Go, which keeps non-ASCII letters case-insensitive on
// every driver.
func (r *RecordRepository) Search(ctx context.Context, query string) ([]domain.Record, error) {
	pattern := "%" + likeEscaper.Replace(fold(query)) + "%"
	var models []recordModel
	err := r.db.WithContext(ctx).
		Where(searchPredicate, pattern, pattern).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return toRecords(models), nil
}

func (r *RecordRepository) List(ctx context.Context) ([]domain.Record, error) {
	var models []recordModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, translate(err, nil)
	}
	return toRecords(models), nil
}

func toRecords(models []recordModel) []domain.Record {
	out := make([]domain.Record, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out
}
