package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// PostgreSQL error codes surfaced by the driver
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeLockNotAvailable    = "55P03"
)

// mapError translates driver errors into the domain taxonomy so callers can
// match with errors.Is instead of inspecting pq internals.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeLockNotAvailable:
		return fmt.Errorf("%s: %w", pqErr.Message, domain.ErrLockContention)
	case codeUniqueViolation, codeForeignKeyViolation, codeCheckViolation:
		return fmt.Errorf("%s: %w", pqErr.Message, domain.ErrConstraintViolation)
	}
	return err
}
