package repository

import (
	"errors"
	"fmt"

	"repairdesk/internal/apperror"

	"gorm.io/gorm"
)

// translate maps gorm errors onto the application taxonomy. entity/id name the
// row for not-found errors; dupField names the unique field for duplicate keys.
func translate(err error, entity string, id any, dupField string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if dupField == "" {
			return apperror.Concurrency(entity+" was modified concurrently", err)
		}
		return apperror.Validation(dupField, "duplicate_"+dupField, fmt.Sprintf("%s with this %s already exists", entity, dupField))
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &apperror.Error{
			Kind:    apperror.KindReferentialIntegrity,
			Code:    entity + "_reference_violated",
			Message: entity + " references a missing row or is still referenced",
			Err:     err,
		}
	}
	return err
}
