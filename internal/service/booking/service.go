package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okareva/tably/internal/domain"
	redisx "github.com/okareva/tably/internal/redis"
	"github.com/okareva/tably/internal/repository"
	postgresrepo "github.com/okareva/tably/internal/repository/postgres"
	redisrepo "github.com/okareva/tably/internal/repository/redis"
	"github.com/okareva/tably/internal/uow"
)

// Service covers the confirmed-booking side: dashboard reads, status
// transitions and guest cancellation. Creation goes through the hold
// manager's Convert, never directly through here.
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

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (s *Service) ListByDate(ctx context.Context, venueID int64, date time.Time) ([]domain.Booking, error) {
	const op = "service.booking.ListByDate"

	out, err := s.store.Bookings().ListByDate(ctx, venueID, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Cancel moves a booking to cancelled, enforcing the owning service's
// cancellation window, and frees the table for re-offering.
//
// Returns:
//   - error: booking.ErrBookingNotFound, booking.ErrAlreadyFinal,
//     booking.ErrCancelWindow.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Cancel"

	var out *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		b, err := s.store.Bookings().With(tx).Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrBookingNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		switch b.Status {
		case domain.BookingCancelled, domain.BookingFinished, domain.BookingNoShow:
			return fmt.Errorf("%s: %w", op, ErrAlreadyFinal)
		}

		if b.ServiceID != nil {
			svc, err := s.store.Catalog().With(tx).GetService(ctx, *b.ServiceID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, err)
			}
			if svc != nil && svc.CancelWindowMin > 0 {
				starts := b.Date.Add(time.Duration(b.StartMin) * time.Minute)
				if time.Now().After(starts.Add(-time.Duration(svc.CancelWindowMin) * time.Minute)) {
					return fmt.Errorf("%s: %w", op, ErrCancelWindow)
				}
			}
		}

		out, err = s.store.Bookings().With(tx).UpdateStatus(ctx, id, domain.BookingCancelled)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateVenue(ctx, out.VenueID)
			_ = s.pubsub.PublishAvailabilityChanged(ctx, out.VenueID, out.Date)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// SetStatus applies a dashboard status transition (seated, finished,
// late, no_show and friends) without cancellation-window checks.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	const op = "service.booking.SetStatus"

	var out *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		b, err := s.store.Bookings().With(tx).UpdateStatus(ctx, id, status)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrBookingNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		out = b

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateVenue(ctx, b.VenueID)
			_ = s.pubsub.PublishAvailabilityChanged(ctx, b.VenueID, b.Date)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
