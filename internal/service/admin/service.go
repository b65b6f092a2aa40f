package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okareva/tably/internal/domain"
	redisx "github.com/okareva/tably/internal/redis"
	"github.com/okareva/tably/internal/repository"
	postgresrepo "github.com/okareva/tably/internal/repository/postgres"
	redisrepo "github.com/okareva/tably/internal/repository/redis"
	"github.com/okareva/tably/internal/uow"
)

// Service is the write side of the venue configuration store: venues,
// tables, bookable services and their windows. Every mutation bumps the
// venue's availability-cache generation.
type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisx.AvailabilityPubSub
	uow    *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisx.AvailabilityPubSub) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
	}
}

// CreateVenue registers a venue in pending status.
//
// Returns:
//   - error: admin.ErrVenueConflict when the slug is already taken.
func (s *Service) CreateVenue(ctx context.Context, slug, name string, openMin, closeMin int) (int64, error) {
	const op = "service.admin.CreateVenue"

	if slug == "" || name == "" {
		return 0, fmt.Errorf("%s: slug and name required: %w", op, ErrValidation)
	}

	if err := validHours(openMin, closeMin); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Admin().With(tx).CreateVenue(ctx, slug, name, openMin, closeMin)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrVenueConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})

	return id, err
}

// UpdateVenueHours changes the operating window; cached availability for
// the venue is invalidated after commit.
func (s *Service) UpdateVenueHours(ctx context.Context, venueID int64, openMin, closeMin int) error {
	const op = "service.admin.UpdateVenueHours"

	if err := validHours(openMin, closeMin); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Admin().With(tx).UpdateVenueHours(ctx, venueID, openMin, closeMin); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrVenueNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateVenue(ctx, venueID)
			_ = s.pubsub.PublishAvailabilityChanged(ctx, venueID, midnightUTC(time.Now()))
		})

		return nil
	})

	return err
}

// BatchCreateTables inserts the floor-plan inventory for a venue within a
// transactional Unit of Work.
func (s *Service) BatchCreateTables(ctx context.Context, venueID int64, tables []domain.Table) error {
	const op = "service.admin.BatchCreateTables"

	for _, t := range tables {
		if t.Name == "" || t.Seats < 1 {
			return fmt.Errorf("%s: table needs a name and at least one seat: %w", op, ErrValidation)
		}
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Admin().With(tx).BatchCreateTables(ctx, venueID, tables); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrTablesConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateVenue(ctx, venueID)
			_ = s.pubsub.PublishAvailabilityChanged(ctx, venueID, midnightUTC(time.Now()))
		})

		return nil
	})

	return err
}

// CreateService creates a bookable offering together with its duration
// rules.
func (s *Service) CreateService(ctx context.Context, svc domain.Service) (int64, error) {
	const op = "service.admin.CreateService"

	if svc.Name == "" || svc.MinGuests < 1 || svc.MaxGuests < svc.MinGuests {
		return 0, fmt.Errorf("%s: bad guest bounds: %w", op, ErrValidation)
	}

	for _, r := range svc.DurationRules {
		if r.MinParty < 1 || r.MaxParty < r.MinParty || r.DurationMin < 1 {
			return 0, fmt.Errorf("%s: bad duration rule: %w", op, ErrValidation)
		}
	}

	var id int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Admin().With(tx).CreateService(ctx, svc)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrServiceConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateVenue(ctx, svc.VenueID)
			_ = s.pubsub.PublishAvailabilityChanged(ctx, svc.VenueID, midnightUTC(time.Now()))
		})

		return nil
	})

	return id, err
}

// CreateWindow attaches a booking window (with optional blackout ranges)
// to a service.
func (s *Service) CreateWindow(ctx context.Context, venueID int64, w domain.BookingWindow) (int64, error) {
	const op = "service.admin.CreateWindow"

	if w.Weekdays == 0 {
		return 0, fmt.Errorf("%s: window needs at least one weekday: %w", op, ErrValidation)
	}

	if err := validHours(w.StartMin, w.EndMin); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Admin().With(tx).CreateWindow(ctx, w)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrWindowConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateVenue(ctx, venueID)
			_ = s.pubsub.PublishAvailabilityChanged(ctx, venueID, midnightUTC(time.Now()))
		})

		return nil
	})

	return id, err
}

// CreateWindowForService resolves the owning venue from the service row
// and attaches the window to it.
func (s *Service) CreateWindowForService(ctx context.Context, serviceID int64, w domain.BookingWindow) (int64, error) {
	const op = "service.admin.CreateWindowForService"

	svc, err := s.store.Catalog().GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%s: %w", op, ErrServiceNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	w.ServiceID = serviceID
	return s.CreateWindow(ctx, svc.VenueID, w)
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validHours(openMin, closeMin int) error {
	if openMin < 0 || closeMin > 24*60 || closeMin <= openMin {
		return fmt.Errorf("hours must satisfy 0 <= open < close <= 1440: %w", ErrValidation)
	}
	return nil
}
