package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okareva/tably/internal/domain"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const bookingColumns = `id, venue_id, service_id, table_id, guest_name, guest_email,
	guest_phone, party_size, date, start_min, duration_min, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.VenueID, &b.ServiceID, &b.TableID,
		&b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.PartySize, &b.Date, &b.StartMin, &b.DurationMin,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// ListByDate returns all bookings of a venue on one date, regardless of
// status; callers filter on Status.Blocks for availability math.
func (r *BookingRepo) ListByDate(ctx context.Context, venueID int64, date time.Time) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListByDate"

	return r.list(ctx, op,
		`SELECT `+bookingColumns+`
       	 FROM bookings
      	 WHERE venue_id = $1 AND date = $2
      	 ORDER BY start_min, id`,
		venueID, date,
	)
}

// ListBetween returns bookings in [from, to] for the date lookahead.
func (r *BookingRepo) ListBetween(ctx context.Context, venueID int64, from, to time.Time) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListBetween"

	return r.list(ctx, op,
		`SELECT `+bookingColumns+`
       	 FROM bookings
      	 WHERE venue_id = $1 AND date BETWEEN $2 AND $3
      	 ORDER BY date, start_min, id`,
		venueID, from, to,
	)
}

func (r *BookingRepo) list(ctx context.Context, op, sql string, args ...any) ([]domain.Booking, error) {
	db := r.handle()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// UpdateStatus moves a booking to the given status and returns the
// updated row.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.UpdateStatus"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`UPDATE bookings
        	SET status = $2, updated_at = now()
      	 WHERE id = $1
     	 RETURNING `+bookingColumns,
		id, status,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}
