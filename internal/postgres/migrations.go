package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The bookings exclusion constraint is the storage-level backstop for
// double-booking: even if every application check is bypassed, two
// blocking bookings can never overlap on the same table and date.
// Holds carry no such constraint because expiry is passive: a lapsed
// hold keeps released_at NULL until swept, and a constraint on that
// column would wrongly block re-claiming the freed slot. Hold overlap
// is enforced by the atomic insert statement instead.
const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS venues (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	slug TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	open_min INT NOT NULL DEFAULT 0,
	close_min INT NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tables (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	venue_id BIGINT NOT NULL REFERENCES venues(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	seats INT NOT NULL CHECK (seats > 0),
	active BOOLEAN NOT NULL DEFAULT TRUE,
	online_bookable BOOLEAN NOT NULL DEFAULT TRUE,
	priority INT NOT NULL DEFAULT 0,
	join_group BIGINT,
	UNIQUE (venue_id, name)
);

CREATE TABLE IF NOT EXISTS services (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	venue_id BIGINT NOT NULL REFERENCES venues(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	min_guests INT NOT NULL DEFAULT 1,
	max_guests INT NOT NULL DEFAULT 12,
	lead_time_min INT NOT NULL DEFAULT 0,
	cancel_window_min INT NOT NULL DEFAULT 0,
	requires_payment BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (venue_id, name)
);

CREATE TABLE IF NOT EXISTS service_duration_rules (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	service_id BIGINT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
	min_party INT NOT NULL,
	max_party INT NOT NULL,
	duration_min INT NOT NULL,
	CHECK (min_party > 0 AND max_party >= min_party AND duration_min > 0)
);

CREATE TABLE IF NOT EXISTS booking_windows (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	service_id BIGINT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
	weekdays SMALLINT NOT NULL,
	start_min INT NOT NULL,
	end_min INT NOT NULL,
	from_date DATE,
	to_date DATE,
	slot_capacity INT NOT NULL DEFAULT 0,
	CHECK (start_min >= 0 AND end_min <= 1440 AND start_min < end_min)
);

CREATE TABLE IF NOT EXISTS window_blackouts (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	window_id BIGINT NOT NULL REFERENCES booking_windows(id) ON DELETE CASCADE,
	from_date DATE NOT NULL,
	to_date DATE NOT NULL,
	CHECK (from_date <= to_date)
);

CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	venue_id BIGINT NOT NULL REFERENCES venues(id),
	service_id BIGINT REFERENCES services(id),
	table_id BIGINT REFERENCES tables(id),
	guest_name TEXT NOT NULL,
	guest_email TEXT NOT NULL DEFAULT '',
	guest_phone TEXT NOT NULL DEFAULT '',
	party_size INT NOT NULL CHECK (party_size > 0),
	date DATE NOT NULL,
	start_min INT NOT NULL,
	duration_min INT NOT NULL CHECK (duration_min > 0),
	status TEXT NOT NULL DEFAULT 'confirmed',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
		table_id WITH =,
		date WITH =,
		int4range(start_min, start_min + duration_min) WITH &&
	) WHERE (table_id IS NOT NULL AND status NOT IN ('cancelled', 'no_show'))
);

CREATE INDEX IF NOT EXISTS idx_bookings_venue_date ON bookings (venue_id, date);

CREATE TABLE IF NOT EXISTS holds (
	token UUID PRIMARY KEY,
	venue_id BIGINT NOT NULL REFERENCES venues(id),
	service_id BIGINT REFERENCES services(id),
	table_id BIGINT REFERENCES tables(id),
	party_size INT NOT NULL CHECK (party_size > 0),
	date DATE NOT NULL,
	start_min INT NOT NULL,
	duration_min INT NOT NULL CHECK (duration_min > 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL,
	released_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_holds_venue_date ON holds (venue_id, date) WHERE released_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_holds_table_slot ON holds (table_id, date, start_min) WHERE released_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_holds_expiry ON holds (expires_at) WHERE released_at IS NULL;
`

// Migrate applies the schema. Every statement is idempotent, so it runs
// unconditionally at boot.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
