package sqldb

import (
	"errors"

	"gorm.io/gorm"

	"github.com/blackhole/records-system/internal/core/domain"
)

// translate maps storage errors onto domain kinds. notFound builds the
// domain error for a missing row.
func translate(err error, notFound func() error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFound != nil {
			return notFound()
		}
		return domain.NotFound("Not found.")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.AlreadyExists("Already exists.")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.Conflict("Still referenced by other rows.")
	default:
		return err
	}
}
