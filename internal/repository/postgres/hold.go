package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okareva/tably/internal/domain"
	"github.com/okareva/tably/internal/repository"
)

// HoldRepo owns the holds table. A hold blocks a table while
// released_at IS NULL AND expires_at > now(); expired rows stop blocking
// on their own, so every read below filters on that predicate instead of
// depending on a sweeper.
type HoldRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *HoldRepo) With(db DB) *HoldRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *HoldRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts the hold if and only if no blocking booking and no
// active hold overlaps its interval, as one statement, so two guests
// racing for the same table cannot both be told it is free. The bookings
// exclusion constraint backstops conversion later.
//
// Returns repository.ErrConflict when the slot is taken.
func (r *HoldRepo) Create(ctx context.Context, h domain.Hold, poolCap int) error {
	const op = "postgres.HoldRepo.Create"

	if r.db != nil {
		return wrapDBErr(op, r.createCore(ctx, r.db, h, poolCap))
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return wrapDBErr(op, err)
	}

	defer tx.Rollback(ctx)

	if err := r.createCore(ctx, tx, h, poolCap); err != nil {
		return wrapDBErr(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *HoldRepo) createCore(ctx context.Context, db DB, h domain.Hold, poolCap int) error {
	if h.TableID == nil {
		return r.createPoolCore(ctx, db, h, poolCap)
	}

	tag, err := db.Exec(ctx,
		`INSERT INTO holds(token, venue_id, table_id, service_id, date,
                       start_min, duration_min, party_size, expires_at)
     	 SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
      	 WHERE NOT EXISTS (
            SELECT 1 FROM bookings b
             WHERE b.table_id = $3
               AND b.date = $5
               AND b.status NOT IN ('cancelled', 'no_show')
               AND b.start_min < $6 + $7
               AND $6 < b.start_min + b.duration_min
     	 ) AND NOT EXISTS (
            SELECT 1 FROM holds x
             WHERE x.table_id = $3
               AND x.date = $5
               AND x.released_at IS NULL
               AND x.expires_at > now()
               AND x.start_min < $6 + $7
               AND $6 < x.start_min + x.duration_min
     	 )`,
		h.Token, h.VenueID, h.TableID, h.ServiceID, h.Date,
		h.StartMin, h.DurationMin, h.PartySize, h.ExpiresAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}

	return nil
}

// createPoolCore claims a seat in the unallocated pool: the slot-capacity
// cap bounds how many unassigned bookings plus active holds may share one
// start time.
func (r *HoldRepo) createPoolCore(ctx context.Context, db DB, h domain.Hold, poolCap int) error {
	tag, err := db.Exec(ctx,
		`INSERT INTO holds(token, venue_id, table_id, service_id, date,
                       start_min, duration_min, party_size, expires_at)
     	 SELECT $1, $2, NULL, $3, $4, $5, $6, $7, $8
      	 WHERE $9 <= 0 OR (
            (SELECT count(*) FROM bookings b
              WHERE b.venue_id = $2 AND b.table_id IS NULL
                AND b.date = $4 AND b.start_min = $5
                AND b.status NOT IN ('cancelled', 'no_show'))
          + (SELECT count(*) FROM holds x
              WHERE x.venue_id = $2 AND x.table_id IS NULL
                AND x.date = $4 AND x.start_min = $5
                AND x.released_at IS NULL AND x.expires_at > now())
         ) < $9`,
		h.Token, h.VenueID, h.ServiceID, h.Date,
		h.StartMin, h.DurationMin, h.PartySize, h.ExpiresAt, poolCap,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}

	return nil
}

func (r *HoldRepo) Get(ctx context.Context, token uuid.UUID) (*domain.Hold, error) {
	const op = "postgres.HoldRepo.Get"

	db := r.handle()

	var h domain.Hold
	err := db.QueryRow(ctx,
		`SELECT token, venue_id, table_id, service_id, date, start_min,
            duration_min, party_size, created_at, expires_at, released_at
       	 FROM holds WHERE token = $1`,
		token,
	).Scan(
		&h.Token, &h.VenueID, &h.TableID, &h.ServiceID, &h.Date, &h.StartMin,
		&h.DurationMin, &h.PartySize, &h.CreatedAt, &h.ExpiresAt, &h.ReleasedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &h, nil
}

// Extend pushes the expiry forward by increment, only while the hold is
// still active. The GREATEST guard keeps extension monotonic: a
// heartbeat arriving early never pulls the expiry back below what the
// hold already had. A token that expired, was released or converted
// yields repository.ErrHoldExpired / ErrHoldNotFound, never a silent
// success.
func (r *HoldRepo) Extend(ctx context.Context, token uuid.UUID, increment time.Duration) (time.Time, error) {
	const op = "postgres.HoldRepo.Extend"

	db := r.handle()

	var expiresAt time.Time
	err := db.QueryRow(ctx,
		`UPDATE holds
        	SET expires_at = GREATEST(expires_at, now() + $2 * interval '1 second')
      	 WHERE token = $1
        	AND released_at IS NULL
        	AND expires_at > now()
     	 RETURNING expires_at`,
		token, int64(increment/time.Second),
	).Scan(&expiresAt)
	if err == nil {
		return expiresAt, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, wrapDBErr(op, err)
	}

	return time.Time{}, wrapDBErr(op, r.deadTokenErr(ctx, db, token))
}

// Release stamps released_at; it is idempotent, so a second release or a
// release of an expired hold reports found=false without an error.
func (r *HoldRepo) Release(ctx context.Context, token uuid.UUID) (bool, error) {
	const op = "postgres.HoldRepo.Release"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE holds SET released_at = now()
      	 WHERE token = $1 AND released_at IS NULL`,
		token,
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() > 0, nil
}

// Convert turns a still-active hold into a booking and releases the hold
// in the same transaction, so the table is never unblocked in between.
func (r *HoldRepo) Convert(ctx context.Context, token uuid.UUID, b domain.Booking) (*domain.Booking, error) {
	const op = "postgres.HoldRepo.Convert"

	if r.db != nil {
		out, err := r.convertCore(ctx, r.db, token, b)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		return out, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer tx.Rollback(ctx)

	out, err := r.convertCore(ctx, tx, token, b)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *HoldRepo) convertCore(ctx context.Context, db DB, token uuid.UUID, b domain.Booking) (*domain.Booking, error) {
	var h domain.Hold
	err := db.QueryRow(ctx,
		`SELECT venue_id, table_id, service_id, date, start_min, duration_min, party_size
       	 FROM holds
      	 WHERE token = $1
        	AND released_at IS NULL
        	AND expires_at > now()
     	 FOR UPDATE`,
		token,
	).Scan(&h.VenueID, &h.TableID, &h.ServiceID, &h.Date, &h.StartMin, &h.DurationMin, &h.PartySize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.deadTokenErr(ctx, db, token)
		}
		return nil, err
	}

	b.ID = uuid.New()
	b.VenueID = h.VenueID
	b.TableID = h.TableID
	b.ServiceID = h.ServiceID
	b.Date = h.Date
	b.StartMin = h.StartMin
	b.DurationMin = h.DurationMin
	b.PartySize = h.PartySize

	out, err := scanBooking(db.QueryRow(ctx,
		`INSERT INTO bookings(id, venue_id, service_id, table_id, guest_name,
                          guest_email, guest_phone, party_size, date,
                          start_min, duration_min, status)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
     	 RETURNING `+bookingColumns,
		b.ID, b.VenueID, b.ServiceID, b.TableID, b.GuestName,
		b.GuestEmail, b.GuestPhone, b.PartySize, b.Date,
		b.StartMin, b.DurationMin, b.Status,
	))
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(ctx,
		`UPDATE holds SET released_at = now() WHERE token = $1`,
		token,
	); err != nil {
		return nil, err
	}

	return out, nil
}

// deadTokenErr distinguishes a token that never existed from one whose
// hold is no longer active.
func (r *HoldRepo) deadTokenErr(ctx context.Context, db DB, token uuid.UUID) error {
	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM holds WHERE token = $1)`,
		token,
	).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return repository.ErrHoldExpired
	}

	return repository.ErrHoldNotFound
}

// ListActiveByDate returns holds still blocking capacity on one date.
func (r *HoldRepo) ListActiveByDate(ctx context.Context, venueID int64, date time.Time) ([]domain.Hold, error) {
	const op = "postgres.HoldRepo.ListActiveByDate"

	return r.listActive(ctx, op,
		`SELECT token, venue_id, table_id, service_id, date, start_min,
            duration_min, party_size, created_at, expires_at, released_at
       	 FROM holds
      	 WHERE venue_id = $1 AND date = $2
        	AND released_at IS NULL AND expires_at > now()
      	 ORDER BY start_min, token`,
		venueID, date,
	)
}

// ListActiveBetween returns active holds in [from, to] for the lookahead.
func (r *HoldRepo) ListActiveBetween(ctx context.Context, venueID int64, from, to time.Time) ([]domain.Hold, error) {
	const op = "postgres.HoldRepo.ListActiveBetween"

	return r.listActive(ctx, op,
		`SELECT token, venue_id, table_id, service_id, date, start_min,
            duration_min, party_size, created_at, expires_at, released_at
       	 FROM holds
      	 WHERE venue_id = $1 AND date BETWEEN $2 AND $3
        	AND released_at IS NULL AND expires_at > now()
      	 ORDER BY date, start_min, token`,
		venueID, from, to,
	)
}

func (r *HoldRepo) listActive(ctx context.Context, op, sql string, args ...any) ([]domain.Hold, error) {
	db := r.handle()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Hold
	for rows.Next() {
		var h domain.Hold
		if err := rows.Scan(
			&h.Token, &h.VenueID, &h.TableID, &h.ServiceID, &h.Date, &h.StartMin,
			&h.DurationMin, &h.PartySize, &h.CreatedAt, &h.ExpiresAt, &h.ReleasedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// ExpireHolds stamps released_at on rows whose TTL lapsed. Housekeeping
// only; the active predicate already keeps dead rows from blocking.
func (r *HoldRepo) ExpireHolds(ctx context.Context) (int64, error) {
	const op = "postgres.HoldRepo.ExpireHolds"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE holds SET released_at = now()
      	 WHERE released_at IS NULL AND expires_at <= now()`,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}
