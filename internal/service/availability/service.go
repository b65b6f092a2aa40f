package availability

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
	"github.com/okareva/tably/internal/slot"
)

type Config struct {
	LookaheadDays      int
	DefaultDurationMin int
	LimitedMax         int
	DatesTTL           time.Duration
	SlotsTTL           time.Duration
}

// Service answers the two read queries of the core: which dates have any
// capacity, and which tables are free per 15-minute slot on one date.
// Results are best-effort snapshots; the hold/convert path re-checks at
// commit time, so a stale cache entry can never double-book a table.
type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = 90
	}

	if cfg.DefaultDurationMin <= 0 {
		cfg.DefaultDurationMin = 120
	}

	if cfg.LimitedMax <= 0 {
		cfg.LimitedMax = 3
	}

	if cfg.DatesTTL <= 0 {
		cfg.DatesTTL = 2 * time.Minute
	}

	if cfg.SlotsTTL <= 0 {
		cfg.SlotsTTL = 15 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// Dates returns the dates inside the lookahead horizon on which at least
// one table can seat the party in at least one slot. A venue without
// hours or windows yields an empty list, not an error.
//
// Returns:
//   - error: availability.ErrVenueNotFound, availability.ErrValidation,
//     availability.ErrStoreUnavailable.
func (s *Service) Dates(ctx context.Context, venueID int64, serviceID *int64, partySize int) ([]time.Time, error) {
	const op = "service.availability.Dates"

	if partySize < 1 {
		return nil, fmt.Errorf("%s: party size must be positive: %w", op, ErrValidation)
	}

	gen, err := s.cache.VenueGeneration(ctx, venueID)
	if err != nil {
		gen = 0
	}

	key := redisx.KeyAvailableDates(venueID, gen, derefID(serviceID), partySize)

	dates, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.DatesTTL,
		func(ctx context.Context) ([]time.Time, error) {
			return s.computeDates(ctx, venueID, serviceID, partySize)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}

	return dates, nil
}

// Slots returns the slot grid for one date: start time, ranked candidate
// tables and a full/limited/plenty status. Active holds block exactly
// like confirmed bookings.
//
// Returns:
//   - error: availability.ErrVenueNotFound, availability.ErrValidation,
//     availability.ErrStoreUnavailable.
func (s *Service) Slots(ctx context.Context, venueID int64, serviceID *int64, date time.Time, partySize int) ([]domain.Slot, error) {
	const op = "service.availability.Slots"

	if partySize < 1 {
		return nil, fmt.Errorf("%s: party size must be positive: %w", op, ErrValidation)
	}

	today := midnightUTC(time.Now())
	if date.Before(today) || date.After(today.AddDate(0, 0, s.cfg.LookaheadDays)) {
		return nil, fmt.Errorf("%s: date outside lookahead window: %w", op, ErrValidation)
	}

	gen, err := s.cache.VenueGeneration(ctx, venueID)
	if err != nil {
		gen = 0
	}

	key := redisx.KeyAvailableSlots(venueID, gen, date, derefID(serviceID), partySize)

	slots, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.SlotsTTL,
		func(ctx context.Context) ([]domain.Slot, error) {
			return s.computeSlots(ctx, venueID, serviceID, date, partySize)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}

	return slots, nil
}

// VenueSummary is the public card for a venue: identity, hours and the
// bookable services with their guest bounds.
type VenueSummary struct {
	ID       int64            `json:"id"`
	Slug     string           `json:"slug"`
	Name     string           `json:"name"`
	OpenMin  int              `json:"open_min"`
	CloseMin int              `json:"close_min"`
	Services []ServiceSummary `json:"services"`
}

type ServiceSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	MinGuests int    `json:"min_guests"`
	MaxGuests int    `json:"max_guests"`
}

// Summary returns the venue card. Cached without a TTL; configuration
// writes drop the key.
func (s *Service) Summary(ctx context.Context, venueID int64) (*VenueSummary, error) {
	const op = "service.availability.Summary"

	out, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyVenueSummary(venueID),
		time.Hour,
		func(ctx context.Context) (*VenueSummary, error) {
			return s.loadSummary(ctx, venueID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}

	return out, nil
}

// SummaryBySlug resolves the public slug and returns the same card as
// Summary.
func (s *Service) SummaryBySlug(ctx context.Context, slug string) (*VenueSummary, error) {
	const op = "service.availability.SummaryBySlug"

	venue, err := s.store.Catalog().GetVenueBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrVenueNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}

	return s.Summary(ctx, venue.ID)
}

func (s *Service) loadSummary(ctx context.Context, venueID int64) (*VenueSummary, error) {
	venue, err := s.store.Catalog().GetVenue(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	services, err := s.store.Catalog().ListServices(ctx, venueID)
	if err != nil {
		return nil, err
	}

	out := &VenueSummary{
		ID:       venue.ID,
		Slug:     venue.Slug,
		Name:     venue.Name,
		OpenMin:  venue.OpenMin,
		CloseMin: venue.CloseMin,
		Services: make([]ServiceSummary, 0, len(services)),
	}
	for _, svc := range services {
		out.Services = append(out.Services, ServiceSummary{
			ID:        svc.ID,
			Name:      svc.Name,
			MinGuests: svc.MinGuests,
			MaxGuests: svc.MaxGuests,
		})
	}

	return out, nil
}

// dayInputs is the per-venue state the slot math runs on.
type dayInputs struct {
	venue    *domain.Venue
	windows  []domain.BookingWindow
	tables   []domain.Table
	duration int
	lead     int
}

func (s *Service) loadInputs(ctx context.Context, venueID int64, serviceID *int64, partySize int) (*dayInputs, error) {
	venue, err := s.store.Catalog().GetVenue(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	duration := s.cfg.DefaultDurationMin
	lead := 0
	if serviceID != nil {
		svc, err := s.store.Catalog().GetService(ctx, *serviceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrServiceNotFound
			}
			return nil, err
		}
		if partySize < svc.MinGuests || partySize > svc.MaxGuests {
			return nil, fmt.Errorf("party size outside service bounds: %w", ErrValidation)
		}
		if d, ok := slot.DurationFor(*svc, partySize); ok {
			duration = d
		}
		lead = svc.LeadTimeMin
	}

	windows, err := s.store.Catalog().ListWindows(ctx, venueID, serviceID)
	if err != nil {
		return nil, err
	}

	tables, err := s.store.Catalog().ListTables(ctx, venueID)
	if err != nil {
		return nil, err
	}

	return &dayInputs{
		venue:    venue,
		windows:  clipToHours(windows, venue),
		tables:   tables,
		duration: duration,
		lead:     lead,
	}, nil
}

func (s *Service) computeSlots(ctx context.Context, venueID int64, serviceID *int64, date time.Time, partySize int) ([]domain.Slot, error) {
	in, err := s.loadInputs(ctx, venueID, serviceID, partySize)
	if err != nil {
		return nil, err
	}

	if !in.venue.Configured() || len(in.windows) == 0 {
		return []domain.Slot{}, nil
	}

	bookings, err := s.store.Bookings().ListByDate(ctx, venueID, date)
	if err != nil {
		return nil, err
	}

	holds, err := s.store.Holds().ListActiveByDate(ctx, venueID, date)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	slots := slot.BuildSlots(
		date, in.windows, in.tables, bookings, holds,
		partySize, in.duration, s.cfg.LimitedMax, now,
	)

	// On today's date, starts already past (plus the service lead time)
	// are not offered.
	minStart := slot.MinStartFor(date, in.lead, now)
	out := slots[:0]
	for _, sl := range slots {
		if sl.StartMin >= minStart {
			out = append(out, sl)
		}
	}

	return out, nil
}

func (s *Service) computeDates(ctx context.Context, venueID int64, serviceID *int64, partySize int) ([]time.Time, error) {
	in, err := s.loadInputs(ctx, venueID, serviceID, partySize)
	if err != nil {
		return nil, err
	}

	if !in.venue.Configured() || len(in.windows) == 0 {
		return []time.Time{}, nil
	}

	from := midnightUTC(time.Now())
	to := from.AddDate(0, 0, s.cfg.LookaheadDays)

	bookings, err := s.store.Bookings().ListBetween(ctx, venueID, from, to)
	if err != nil {
		return nil, err
	}

	holds, err := s.store.Holds().ListActiveBetween(ctx, venueID, from, to)
	if err != nil {
		return nil, err
	}

	bookingsByDate := make(map[time.Time][]domain.Booking)
	for _, b := range bookings {
		bookingsByDate[b.Date] = append(bookingsByDate[b.Date], b)
	}
	holdsByDate := make(map[time.Time][]domain.Hold)
	for _, h := range holds {
		holdsByDate[h.Date] = append(holdsByDate[h.Date], h)
	}

	now := time.Now()
	out := []time.Time{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if slot.HasFreeSlot(
			d, in.windows, in.tables, bookingsByDate[d], holdsByDate[d],
			partySize, in.duration, in.lead, now,
		) {
			out = append(out, d)
		}
	}

	return out, nil
}

// clipToHours intersects each window with the venue's operating hours;
// windows falling entirely outside them are dropped.
func clipToHours(windows []domain.BookingWindow, venue *domain.Venue) []domain.BookingWindow {
	if !venue.Configured() {
		return nil
	}

	var out []domain.BookingWindow
	for _, w := range windows {
		if w.StartMin < venue.OpenMin {
			w.StartMin = venue.OpenMin
		}
		if w.EndMin > venue.CloseMin {
			w.EndMin = venue.CloseMin
		}
		if w.StartMin < w.EndMin {
			out = append(out, w)
		}
	}
	return out
}

func translateErr(err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return ErrStoreUnavailable
	}
	return err
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
