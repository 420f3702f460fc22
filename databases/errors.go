package databases

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/court-docket-api/models"
)

// storageError maps driver errors onto the model error kinds. Lookups that
// match nothing become ErrNotFound, everything else is a storage fault.
func storageError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, errors.Join(models.ErrStorage, err))
}
