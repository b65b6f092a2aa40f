package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/okareva/tably/internal/repository"
	"github.com/stretchr/testify/assert"
)

type fakeNetErr struct{}

func (fakeNetErr) Error() string   { return "connection refused" }
func (fakeNetErr) Timeout() bool   { return false }
func (fakeNetErr) Temporary() bool { return true }

var _ net.Error = fakeNetErr{}

func TestTranslateDBErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows becomes not found", pgx.ErrNoRows, repository.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("query: %w", pgx.ErrNoRows), repository.ErrNotFound},
		{"unique violation becomes conflict", &pgconn.PgError{Code: "23505"}, repository.ErrConflict},
		{"exclusion violation becomes conflict", &pgconn.PgError{Code: "23P01"}, repository.ErrConflict},
		{"net error becomes unavailable", fakeNetErr{}, repository.ErrUnavailable},
		{"deadline becomes unavailable", context.DeadlineExceeded, repository.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateDBErr(tt.in))
		})
	}

	t.Run("unknown errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		assert.Equal(t, boom, translateDBErr(boom))
	})

	t.Run("foreign key violation is not a conflict", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23503"}
		assert.NotErrorIs(t, translateDBErr(err), repository.ErrConflict)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, IsRetryable(fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40001"})))

	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
}

func TestWrapDBErr(t *testing.T) {
	err := wrapDBErr("postgres.Repo.Op", pgx.ErrNoRows)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "postgres.Repo.Op")

	assert.NoError(t, wrapDBErr("postgres.Repo.Op", nil))
}

func TestIsConnErr(t *testing.T) {
	assert.True(t, isConnErr(fakeNetErr{}))
	assert.True(t, isConnErr(context.DeadlineExceeded))
	assert.False(t, isConnErr(errors.New("boom")))

	var opErr error = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
	assert.True(t, isConnErr(opErr))
}
