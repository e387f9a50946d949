package service

import (
	"fmt"

	"github.com/utafrali/wishwell/pkg/database"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

// storeError translates transient store failures into a retryable 503 and
// wraps everything else. Domain errors from the repository pass through the
// wrap unchanged for errors.Is checks.
func storeError(op string, err error) error {
	if database.IsTransient(err) {
		return apperrors.Unavailable(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
