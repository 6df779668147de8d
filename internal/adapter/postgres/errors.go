package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/henrier/rico-backend/internal/domain"
)

// MapError converts pgx/pgconn errors to domain errors, wrapped with the
// failing operation. Context cancellation and deadline errors pass through
// unmapped so callers can distinguish aborts from data problems. Storage
// failures are surfaced, never retried here.
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case "23503": // foreign_key_violation: dangling reference on write,
			// or a delete blocked by dependents. Both are conflicts with
			// the current state of related aggregates.
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w", op, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
