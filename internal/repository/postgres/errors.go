package postgres

import (
	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
)

// mapError turns gorm sentinel errors into domain errors for resource and
// wraps anything else with op.
func mapError(err error, resource, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NewNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.NewConflictError(resource + " already exists")
	default:
		return errors.Wrap(err, op)
	}
}

// expectOne reports NotFound when an update or delete matched no row.
func expectOne(result *gorm.DB, resource, op string) error {
	if result.Error != nil {
		return mapError(result.Error, resource, op)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(resource)
	}
	return nil
}
