package postgres

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/okareva/tably/internal/repository"
)

// IsRetryable reports whether the transaction can be retried as-is
// (serialization failure or deadlock).
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}

	return false
}

func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		// unique_violation, exclusion_violation
		case "23505", "23P01":
			return repository.ErrConflict
		}
	}

	if isConnErr(err) {
		return repository.ErrUnavailable
	}

	return err
}

// isConnErr classifies failures to reach the store, which must never be
// reported to callers as "no availability".
func isConnErr(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
