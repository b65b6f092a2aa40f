package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okareva/tably/internal/domain"
)

// AdminRepo is the write side of the venue configuration store.
type AdminRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AdminRepo) With(db DB) *AdminRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AdminRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *AdminRepo) CreateVenue(
	ctx context.Context,
	slug, name string,
	openMin, closeMin int,
) (int64, error) {
	const op = "postgres.AdminRepo.CreateVenue"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO venues(slug, name, open_min, close_min, status)
       	 VALUES ($1, $2, $3, $4, 'pending')
     	 RETURNING id`,
		slug, name, openMin, closeMin,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *AdminRepo) UpdateVenueHours(ctx context.Context, venueID int64, openMin, closeMin int) error {
	const op = "postgres.AdminRepo.UpdateVenueHours"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE venues SET open_min = $2, close_min = $3 WHERE id = $1`,
		venueID, openMin, closeMin,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, pgx.ErrNoRows)
	}

	return nil
}

func (r *AdminRepo) BatchCreateTables(ctx context.Context, venueID int64, tables []domain.Table) error {
	const op = "postgres.AdminRepo.BatchCreateTables"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, t := range tables {
		batch.Queue(
			`INSERT INTO tables(venue_id, name, seats, active, online_bookable, priority, join_group)
         	 VALUES ($1, $2, $3, $4, $5, $6, $7)
       		 ON CONFLICT (venue_id, name) DO NOTHING`,
			venueID, t.Name, t.Seats, t.Active, t.OnlineBookable, t.Priority, t.JoinGroup,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// CreateService inserts a service together with its duration rules.
func (r *AdminRepo) CreateService(ctx context.Context, svc domain.Service) (int64, error) {
	const op = "postgres.AdminRepo.CreateService"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO services(venue_id, name, min_guests, max_guests,
                          lead_time_min, cancel_window_min, requires_payment)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7)
     	 RETURNING id`,
		svc.VenueID, svc.Name, svc.MinGuests, svc.MaxGuests,
		svc.LeadTimeMin, svc.CancelWindowMin, svc.RequiresPayment,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	if len(svc.DurationRules) > 0 {
		batch := &pgx.Batch{}
		for _, dr := range svc.DurationRules {
			batch.Queue(
				`INSERT INTO service_duration_rules(service_id, min_party, max_party, duration_min)
         	 	 VALUES ($1, $2, $3, $4)`,
				id, dr.MinParty, dr.MaxParty, dr.DurationMin,
			)
		}
		if err := db.SendBatch(ctx, batch).Close(); err != nil {
			return 0, wrapDBErr(op, err)
		}
	}

	return id, nil
}

func (r *AdminRepo) CreateWindow(ctx context.Context, w domain.BookingWindow) (int64, error) {
	const op = "postgres.AdminRepo.CreateWindow"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO booking_windows(service_id, weekdays, start_min, end_min,
                                 from_date, to_date, slot_capacity)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7)
     	 RETURNING id`,
		w.ServiceID, int16(w.Weekdays), w.StartMin, w.EndMin,
		w.FromDate, w.ToDate, w.SlotCapacity,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	if len(w.Blackouts) > 0 {
		batch := &pgx.Batch{}
		for _, b := range w.Blackouts {
			batch.Queue(
				`INSERT INTO window_blackouts(window_id, from_date, to_date)
         	 	 VALUES ($1, $2, $3)`,
				id, b.From, b.To,
			)
		}
		if err := db.SendBatch(ctx, batch).Close(); err != nil {
			return 0, wrapDBErr(op, err)
		}
	}

	return id, nil
}
