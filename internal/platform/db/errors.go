package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel storage errors. Callers branch on these with errors.Is; the
// underlying driver error stays attached for logging.
var (
	// ErrDuplicate signals a unique-constraint conflict. The storage-level
	// constraint arbitrates duplicate indicators and user identifiers.
	ErrDuplicate = errors.New("duplicate entity")

	// ErrUnavailable signals that the backend could not be reached or the
	// call timed out. Retryable from the caller's point of view.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrQueryFailed signals that a statement was rejected or failed
	// mid-execution.
	ErrQueryFailed = errors.New("query failed")
)

const uniqueViolationCode = "23505"

// MapError classifies a pgx error into one of the sentinel storage errors,
// wrapping the original. A nil error maps to nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrQueryFailed, err)
}
