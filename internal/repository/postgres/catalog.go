package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okareva/tably/internal/domain"
)

// CatalogRepo reads the venue configuration store: venues, tables,
// services and booking windows. The core treats all of it as read-only;
// mutations go through AdminRepo.
type CatalogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CatalogRepo) With(db DB) *CatalogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CatalogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *CatalogRepo) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	const op = "postgres.CatalogRepo.GetVenue"

	db := r.handle()

	var v domain.Venue
	err := db.QueryRow(ctx,
		`SELECT id, slug, name, open_min, close_min, status
       	 FROM venues WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Slug, &v.Name, &v.OpenMin, &v.CloseMin, &v.Status)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &v, nil
}

func (r *CatalogRepo) GetVenueBySlug(ctx context.Context, slug string) (*domain.Venue, error) {
	const op = "postgres.CatalogRepo.GetVenueBySlug"

	db := r.handle()

	var v domain.Venue
	err := db.QueryRow(ctx,
		`SELECT id, slug, name, open_min, close_min, status
       	 FROM venues WHERE slug = $1`,
		slug,
	).Scan(&v.ID, &v.Slug, &v.Name, &v.OpenMin, &v.CloseMin, &v.Status)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &v, nil
}

func (r *CatalogRepo) ListTables(ctx context.Context, venueID int64) ([]domain.Table, error) {
	const op = "postgres.CatalogRepo.ListTables"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, venue_id, name, seats, active, online_bookable, priority, join_group
       	 FROM tables
      	 WHERE venue_id = $1
      	 ORDER BY priority, id`,
		venueID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Table
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(
			&t.ID, &t.VenueID, &t.Name, &t.Seats,
			&t.Active, &t.OnlineBookable, &t.Priority, &t.JoinGroup,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// GetService loads a service with its duration rules attached.
func (r *CatalogRepo) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	const op = "postgres.CatalogRepo.GetService"

	db := r.handle()

	var s domain.Service
	err := db.QueryRow(ctx,
		`SELECT id, venue_id, name, min_guests, max_guests,
            lead_time_min, cancel_window_min, requires_payment
       	 FROM services WHERE id = $1`,
		id,
	).Scan(
		&s.ID, &s.VenueID, &s.Name, &s.MinGuests, &s.MaxGuests,
		&s.LeadTimeMin, &s.CancelWindowMin, &s.RequiresPayment,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	rules, err := r.listDurationRules(ctx, db, id)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	s.DurationRules = rules

	return &s, nil
}

func (r *CatalogRepo) ListServices(ctx context.Context, venueID int64) ([]domain.Service, error) {
	const op = "postgres.CatalogRepo.ListServices"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, venue_id, name, min_guests, max_guests,
            lead_time_min, cancel_window_min, requires_payment
       	 FROM services
      	 WHERE venue_id = $1
      	 ORDER BY id`,
		venueID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(
			&s.ID, &s.VenueID, &s.Name, &s.MinGuests, &s.MaxGuests,
			&s.LeadTimeMin, &s.CancelWindowMin, &s.RequiresPayment,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	for i := range out {
		rules, err := r.listDurationRules(ctx, db, out[i].ID)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out[i].DurationRules = rules
	}

	return out, nil
}

// ListWindows returns the booking windows of all services of a venue, or
// of a single service when serviceID is non-nil.
func (r *CatalogRepo) ListWindows(ctx context.Context, venueID int64, serviceID *int64) ([]domain.BookingWindow, error) {
	const op = "postgres.CatalogRepo.ListWindows"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT w.id, w.service_id, w.weekdays, w.start_min, w.end_min,
            w.from_date, w.to_date, w.slot_capacity
       	 FROM booking_windows w
       	 JOIN services s ON s.id = w.service_id
      	 WHERE s.venue_id = $1
        	AND ($2::bigint IS NULL OR w.service_id = $2)
      	 ORDER BY w.id`,
		venueID, serviceID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.BookingWindow
	for rows.Next() {
		var w domain.BookingWindow
		var weekdays int16
		if err := rows.Scan(
			&w.ID, &w.ServiceID, &weekdays, &w.StartMin, &w.EndMin,
			&w.FromDate, &w.ToDate, &w.SlotCapacity,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		w.Weekdays = domain.WeekdaySet(weekdays)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	for i := range out {
		blackouts, err := r.listBlackouts(ctx, db, out[i].ID)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out[i].Blackouts = blackouts
	}

	return out, nil
}

func (r *CatalogRepo) listDurationRules(ctx context.Context, db DB, serviceID int64) ([]domain.DurationRule, error) {
	rows, err := db.Query(ctx,
		`SELECT min_party, max_party, duration_min
       	 FROM service_duration_rules
      	 WHERE service_id = $1
      	 ORDER BY min_party`,
		serviceID,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.DurationRule
	for rows.Next() {
		var dr domain.DurationRule
		if err := rows.Scan(&dr.MinParty, &dr.MaxParty, &dr.DurationMin); err != nil {
			return nil, err
		}
		out = append(out, dr)
	}

	return out, rows.Err()
}

func (r *CatalogRepo) listBlackouts(ctx context.Context, db DB, windowID int64) ([]domain.DateRange, error) {
	rows, err := db.Query(ctx,
		`SELECT from_date, to_date
       	 FROM window_blackouts
      	 WHERE window_id = $1
      	 ORDER BY from_date`,
		windowID,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.DateRange
	for rows.Next() {
		var from, to time.Time
		if err := rows.Scan(&from, &to); err != nil {
			return nil, err
		}
		out = append(out, domain.DateRange{From: from, To: to})
	}

	return out, rows.Err()
}
