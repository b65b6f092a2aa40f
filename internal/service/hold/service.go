package hold

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
	"github.com/okareva/tably/internal/slot"
	"github.com/okareva/tably/internal/uow"
)

type Config struct {
	// TTL is the initial hold lifetime; Extend is how far past now each
	// heartbeat pushes the expiry. Extend defaults to TTL so a heartbeat
	// resets the clock to a full lifetime; it never shortens what the
	// hold already has.
	TTL                time.Duration
	Extend             time.Duration
	DefaultDurationMin int
}

// Service is the hold manager: a time-boxed, single-owner claim on a
// table during checkout. Mutual exclusion on (table, interval) is
// enforced inside the store's transaction, never by a read-then-write
// from here.
type Service struct {
	store   *postgresrepo.Store
	cache   *redisrepo.Cache
	pubsub  *redisx.AvailabilityPubSub
	limiter *redisrepo.SlidingWindowLimiter
	uow     *uow.UoW
	cfg     Config
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.AvailabilityPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 90 * time.Second
	}

	if cfg.Extend <= 0 {
		cfg.Extend = cfg.TTL
	}

	if cfg.DefaultDurationMin <= 0 {
		cfg.DefaultDurationMin = 120
	}

	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		uow:     uow.NewUoW(store),
		cfg:     cfg,
	}
}

type CreateParams struct {
	VenueID   int64
	TableID   *int64 // nil: pick the best-ranked free table, or the pool
	ServiceID *int64
	Date      time.Time
	StartMin  int
	PartySize int
}

// Create claims a table (or an unallocated-pool seat) for the slot. The
// overlap check and insert run as one atomic statement against the
// store, so of two concurrent creates for the same table and interval
// exactly one succeeds and the other sees ErrSlotTaken.
//
// Returns:
//   - error: hold.ErrSlotTaken when the slot is already claimed.
//   - error: hold.ErrValidation, hold.ErrVenueNotFound,
//     hold.ErrServiceNotFound, hold.ErrRateLimited.
func (s *Service) Create(ctx context.Context, p CreateParams, rlKey string) (*domain.Hold, error) {
	const op = "service.hold.Create"

	if p.PartySize < 1 {
		return nil, fmt.Errorf("%s: party size must be positive: %w", op, ErrValidation)
	}

	if p.StartMin < 0 || p.StartMin >= 24*60 || p.StartMin%slot.StepMin != 0 {
		return nil, fmt.Errorf("%s: start not on the slot grid: %w", op, ErrValidation)
	}

	if today := midnightUTC(time.Now()); p.Date.Before(today) {
		return nil, fmt.Errorf("%s: date in the past: %w", op, ErrValidation)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: retry in %s: %w", op, retry, ErrRateLimited)
		}
	}

	target, poolCap, duration, err := s.resolveTarget(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	h := domain.Hold{
		Token:       uuid.New(),
		VenueID:     p.VenueID,
		TableID:     target,
		ServiceID:   p.ServiceID,
		Date:        p.Date,
		StartMin:    p.StartMin,
		DurationMin: duration,
		PartySize:   p.PartySize,
		ExpiresAt:   time.Now().Add(s.cfg.TTL),
	}

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if err := s.store.Holds().With(tx).Create(ctx, h, poolCap); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrSlotTaken)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateVenue(ctx, h.VenueID)
			_ = s.pubsub.PublishAvailabilityChanged(ctx, h.VenueID, h.Date)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &h, nil
}

// resolveTarget validates the slot against the venue's configuration and
// decides which table the hold lands on: the caller's table when given,
// otherwise the best-ranked free candidate, otherwise the unallocated
// pool when the window carries a slot-capacity cap.
func (s *Service) resolveTarget(ctx context.Context, p CreateParams) (*int64, int, int, error) {
	venue, err := s.store.Catalog().GetVenue(ctx, p.VenueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, 0, ErrVenueNotFound
		}
		return nil, 0, 0, err
	}

	duration := s.cfg.DefaultDurationMin
	lead := 0
	if p.ServiceID != nil {
		svc, err := s.store.Catalog().GetService(ctx, *p.ServiceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, 0, 0, ErrServiceNotFound
			}
			return nil, 0, 0, err
		}
		if p.PartySize < svc.MinGuests || p.PartySize > svc.MaxGuests {
			return nil, 0, 0, fmt.Errorf("party size outside service bounds: %w", ErrValidation)
		}
		if d, ok := slot.DurationFor(*svc, p.PartySize); ok {
			duration = d
		}
		lead = svc.LeadTimeMin
	}

	if p.StartMin < slot.MinStartFor(p.Date, lead, time.Now()) {
		return nil, 0, 0, fmt.Errorf("start inside the lead time: %w", ErrValidation)
	}

	windows, err := s.store.Catalog().ListWindows(ctx, p.VenueID, p.ServiceID)
	if err != nil {
		return nil, 0, 0, err
	}

	window := matchWindow(windows, venue, p.Date, p.StartMin)
	if window == nil {
		return nil, 0, 0, fmt.Errorf("no booking window covers the slot: %w", ErrValidation)
	}

	tables, err := s.store.Catalog().ListTables(ctx, p.VenueID)
	if err != nil {
		return nil, 0, 0, err
	}

	candidates := slot.CandidateTables(tables, p.PartySize)

	if p.TableID != nil {
		for _, t := range candidates {
			if t.ID == *p.TableID {
				return p.TableID, 0, duration, nil
			}
		}
		return nil, 0, 0, fmt.Errorf("table cannot seat the party: %w", ErrValidation)
	}

	// Advisory pick; the atomic insert re-checks, so losing a race here
	// only costs the guest a Conflict-and-reoffer round trip.
	bookings, err := s.store.Bookings().ListByDate(ctx, p.VenueID, p.Date)
	if err != nil {
		return nil, 0, 0, err
	}
	holds, err := s.store.Holds().ListActiveByDate(ctx, p.VenueID, p.Date)
	if err != nil {
		return nil, 0, 0, err
	}

	free := slot.FreeTables(candidates, slot.NewInterval(p.StartMin, duration), bookings, holds, time.Now())
	if len(free) > 0 {
		best := slot.RankTables(free, p.PartySize)[0]
		return &best.ID, 0, duration, nil
	}

	if window.SlotCapacity > 0 {
		return nil, window.SlotCapacity, duration, nil
	}

	return nil, 0, 0, ErrSlotTaken
}

func matchWindow(windows []domain.BookingWindow, venue *domain.Venue, date time.Time, startMin int) *domain.BookingWindow {
	for i := range windows {
		w := windows[i]
		if !slot.WindowAppliesOn(w, date) {
			continue
		}
		start, end := w.StartMin, w.EndMin
		if venue.Configured() {
			start = max(start, venue.OpenMin)
			end = min(end, venue.CloseMin)
		}
		if startMin >= start && startMin < end {
			return &w
		}
	}
	return nil
}

// Extend is the heartbeat: it pushes the expiry forward while the hold is
// still active. A token that already expired, was released or converted
// reports that state so the UI restarts the flow instead of assuming the
// table is still reserved.
//
// Returns:
//   - error: hold.ErrHoldExpired, hold.ErrHoldNotFound.
func (s *Service) Extend(ctx context.Context, token uuid.UUID) (time.Time, error) {
	const op = "service.hold.Extend"

	expiresAt, err := s.store.Holds().Extend(ctx, token, s.cfg.Extend)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, translateTokenErr(err))
	}

	return expiresAt, nil
}

// Release terminates a hold explicitly. Idempotent: releasing a token
// that is already released, expired or unknown is not an error.
func (s *Service) Release(ctx context.Context, token uuid.UUID) error {
	const op = "service.hold.Release"

	h, err := s.store.Holds().Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	released, err := s.store.Holds().Release(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if released {
		_ = s.cache.InvalidateVenue(ctx, h.VenueID)
		_ = s.pubsub.PublishAvailabilityChanged(ctx, h.VenueID, h.Date)
	}

	return nil
}

type GuestDetails struct {
	Name  string
	Email string
	Phone string
	// PendingPayment keeps the booking in pending_payment so the client
	// can continue heartbeating a follow-up hold-free payment flow.
	PendingPayment bool
}

// Convert atomically turns a still-active hold into a booking and
// releases the hold in the same transaction, so capacity never has a gap
// where neither row blocks the table. An expired token is rejected with
// ErrHoldExpired and creates no booking.
//
// Returns:
//   - error: hold.ErrHoldExpired, hold.ErrHoldNotFound, hold.ErrSlotTaken,
//     hold.ErrValidation.
func (s *Service) Convert(ctx context.Context, token uuid.UUID, details GuestDetails) (*domain.Booking, error) {
	const op = "service.hold.Convert"

	if details.Name == "" {
		return nil, fmt.Errorf("%s: guest name required: %w", op, ErrValidation)
	}

	status := domain.BookingConfirmed
	if details.PendingPayment {
		status = domain.BookingPendingPayment
	}

	var booking *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		b, err := s.store.Holds().With(tx).Convert(ctx, token, domain.Booking{
			GuestName:  details.Name,
			GuestEmail: details.Email,
			GuestPhone: details.Phone,
			Status:     status,
		})
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrSlotTaken)
			}
			return fmt.Errorf("%s: %w", op, translateTokenErr(err))
		}

		booking = b

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateVenue(ctx, b.VenueID)
			_ = s.pubsub.PublishAvailabilityChanged(ctx, b.VenueID, b.Date)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// Expire stamps released_at on holds whose TTL lapsed. Pure housekeeping:
// every blocking read already filters on the active predicate, so
// correctness never waits for this sweep.
func (s *Service) Expire(ctx context.Context) (int64, error) {
	const op = "service.hold.Expire"

	released, err := s.store.Holds().ExpireHolds(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return released, nil
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func translateTokenErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrHoldExpired):
		return ErrHoldExpired
	case errors.Is(err, repository.ErrHoldNotFound):
		return ErrHoldNotFound
	default:
		return err
	}
}
