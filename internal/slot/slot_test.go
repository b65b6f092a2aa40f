package slot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okareva/tably/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// next Monday from a fixed anchor so weekday checks are deterministic
var monday = date(2026, time.August, 31)

func weekdayWindow() domain.BookingWindow {
	return domain.BookingWindow{
		ID:        1,
		ServiceID: 1,
		Weekdays: domain.NewWeekdaySet(
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		),
		StartMin: 18 * 60,
		EndMin:   22 * 60,
	}
}

func fourTop(id int64) domain.Table {
	return domain.Table{ID: id, VenueID: 1, Seats: 4, Active: true, OnlineBookable: true}
}

func TestIntervalOverlaps(t *testing.T) {
	base := NewInterval(19*60, 90) // 19:00-20:30

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", NewInterval(19*60, 90), true},
		{"starts inside", NewInterval(20*60, 90), true},
		{"ends inside", NewInterval(18*60, 90), true}, // 18:00+90 = 19:30 > 19:00
		{"touching before", NewInterval(17*60+30, 90), false},
		{"touching after", NewInterval(20*60+30, 90), false},
		{"contained", NewInterval(19*60+15, 30), true},
		{"disjoint", NewInterval(12*60, 60), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base))
		})
	}
}

func TestGrid(t *testing.T) {
	starts := Grid(18*60, 22*60, StepMin)
	require.Len(t, starts, 16)
	assert.Equal(t, 18*60, starts[0])
	assert.Equal(t, 21*60+45, starts[15])

	assert.Nil(t, Grid(22*60, 18*60, StepMin))
	assert.Nil(t, Grid(18*60, 22*60, 0))
}

func TestWindowAppliesOn(t *testing.T) {
	w := weekdayWindow()

	assert.True(t, WindowAppliesOn(w, monday))
	assert.False(t, WindowAppliesOn(w, monday.AddDate(0, 0, 5))) // Saturday

	w.FromDate = ptr(monday.AddDate(0, 0, 7))
	assert.False(t, WindowAppliesOn(w, monday))
	w.FromDate = nil

	w.ToDate = ptr(monday.AddDate(0, 0, -7))
	assert.False(t, WindowAppliesOn(w, monday))
	w.ToDate = nil

	w.Blackouts = []domain.DateRange{{From: monday, To: monday.AddDate(0, 0, 2)}}
	assert.False(t, WindowAppliesOn(w, monday))
	assert.True(t, WindowAppliesOn(w, monday.AddDate(0, 0, 7)))
}

func TestDurationFor(t *testing.T) {
	svc := domain.Service{
		DurationRules: []domain.DurationRule{
			{MinParty: 1, MaxParty: 4, DurationMin: 90},
			{MinParty: 5, MaxParty: 8, DurationMin: 120},
		},
	}

	d, ok := DurationFor(svc, 4)
	require.True(t, ok)
	assert.Equal(t, 90, d)

	d, ok = DurationFor(svc, 6)
	require.True(t, ok)
	assert.Equal(t, 120, d)

	_, ok = DurationFor(svc, 9)
	assert.False(t, ok)
}

func TestRankTables(t *testing.T) {
	tables := []domain.Table{
		{ID: 1, Seats: 6, Priority: 1},
		{ID: 2, Seats: 4, Priority: 2},
		{ID: 3, Seats: 4, Priority: 1, JoinGroup: ptr(int64(7))},
		{ID: 4, Seats: 4, Priority: 1},
	}

	ranked := RankTables(tables, 4)

	// exact match beats oversized, rank beats id, join-group loses
	got := make([]int64, 0, len(ranked))
	for _, tb := range ranked {
		got = append(got, tb.ID)
	}
	assert.Equal(t, []int64{4, 3, 2, 1}, got)

	// input untouched
	assert.Equal(t, int64(1), tables[0].ID)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, domain.SlotFull, Classify(0, 3))
	assert.Equal(t, domain.SlotLimited, Classify(1, 3))
	assert.Equal(t, domain.SlotLimited, Classify(3, 3))
	assert.Equal(t, domain.SlotPlenty, Classify(4, 3))
}

// One table seating 4, Mon-Fri 18:00-22:00 window: an empty day offers
// all 16 grid starts; a confirmed 19:00+90m booking must also knock out
// 18:00 (18:00+90 = 19:30 overlaps 19:00) through 20:15.
func TestBuildSlots_BookingKnocksOutOverlappingStarts(t *testing.T) {
	now := monday.Add(-12 * time.Hour)
	tables := []domain.Table{fourTop(1)}
	windows := []domain.BookingWindow{weekdayWindow()}

	empty := BuildSlots(monday, windows, tables, nil, nil, 4, 90, 3, now)
	require.Len(t, empty, 16)
	for _, s := range empty {
		assert.Equal(t, domain.SlotLimited, s.Status, "one table is limited, not plenty")
		assert.Equal(t, []int64{1}, s.TableIDs)
	}

	booked := []domain.Booking{{
		ID:          uuid.New(),
		VenueID:     1,
		TableID:     ptr(int64(1)),
		PartySize:   4,
		Date:        monday,
		StartMin:    19 * 60,
		DurationMin: 90,
		Status:      domain.BookingConfirmed,
	}}

	slots := BuildSlots(monday, windows, tables, booked, nil, 4, 90, 3, now)
	require.Len(t, slots, 16)

	blocked := map[int]bool{}
	// 17:45 is outside the grid; within it, 18:00 through 20:15 collide.
	for start := 18 * 60; start <= 20*60+15; start += StepMin {
		blocked[start] = true
	}
	for _, s := range slots {
		if blocked[s.StartMin] {
			assert.Equal(t, domain.SlotFull, s.Status, "start %d should be full", s.StartMin)
			assert.Empty(t, s.TableIDs)
		} else {
			assert.Equal(t, domain.SlotLimited, s.Status, "start %d should stay offered", s.StartMin)
		}
	}
}

func TestBuildSlots_ActiveHoldBlocksCancelledBookingDoesNot(t *testing.T) {
	now := monday.Add(18 * time.Hour)
	tables := []domain.Table{fourTop(1)}
	windows := []domain.BookingWindow{weekdayWindow()}

	holds := []domain.Hold{{
		Token:       uuid.New(),
		VenueID:     1,
		TableID:     ptr(int64(1)),
		Date:        monday,
		StartMin:    20 * 60,
		DurationMin: 90,
		PartySize:   2,
		ExpiresAt:   now.Add(90 * time.Second),
	}}
	cancelled := []domain.Booking{{
		TableID:     ptr(int64(1)),
		Date:        monday,
		StartMin:    18 * 60,
		DurationMin: 90,
		Status:      domain.BookingCancelled,
	}}

	slots := BuildSlots(monday, windows, tables, cancelled, holds, 2, 90, 3, now)
	byStart := map[int]domain.Slot{}
	for _, s := range slots {
		byStart[s.StartMin] = s
	}

	assert.Equal(t, domain.SlotLimited, byStart[18*60].Status, "cancelled booking must not block")
	assert.Equal(t, domain.SlotFull, byStart[20*60].Status, "held table must not be re-offered")
	assert.Equal(t, domain.SlotFull, byStart[19*60+30].Status, "19:30+90 overlaps the hold")

	// once the hold expires the capacity returns, no sweeper involved
	later := now.Add(2 * time.Minute)
	slots = BuildSlots(monday, windows, tables, cancelled, holds, 2, 90, 3, later)
	for _, s := range slots {
		assert.Equal(t, domain.SlotLimited, s.Status)
	}
}

func TestBuildSlots_PartyTooLargeForEveryTable(t *testing.T) {
	slots := BuildSlots(
		monday,
		[]domain.BookingWindow{weekdayWindow()},
		[]domain.Table{fourTop(1)},
		nil, nil,
		10, 90, 3,
		monday,
	)
	require.Len(t, slots, 16)
	for _, s := range slots {
		assert.Equal(t, domain.SlotFull, s.Status)
		assert.Empty(t, s.TableIDs)
	}
}

func TestBuildSlots_NoWindowsYieldsEmpty(t *testing.T) {
	slots := BuildSlots(monday, nil, []domain.Table{fourTop(1)}, nil, nil, 2, 90, 3, monday)
	assert.Empty(t, slots)
}

func TestBuildSlots_InactiveAndOfflineTablesExcluded(t *testing.T) {
	inactive := fourTop(1)
	inactive.Active = false
	offline := fourTop(2)
	offline.OnlineBookable = false

	slots := BuildSlots(
		monday,
		[]domain.BookingWindow{weekdayWindow()},
		[]domain.Table{inactive, offline},
		nil, nil,
		2, 90, 3,
		monday,
	)
	for _, s := range slots {
		assert.Equal(t, domain.SlotFull, s.Status)
	}
}

func TestHasFreeSlot(t *testing.T) {
	now := monday.Add(-12 * time.Hour)
	tables := []domain.Table{fourTop(1)}
	windows := []domain.BookingWindow{weekdayWindow()}

	assert.True(t, HasFreeSlot(monday, windows, tables, nil, nil, 4, 90, 0, now))
	assert.False(t, HasFreeSlot(monday.AddDate(0, 0, 5), windows, tables, nil, nil, 4, 90, 0, now))
	assert.False(t, HasFreeSlot(monday, windows, tables, nil, nil, 10, 90, 0, now))

	// fully booked day
	var bookings []domain.Booking
	for start := 18 * 60; start < 22*60; start += StepMin {
		bookings = append(bookings, domain.Booking{
			TableID:     ptr(int64(1)),
			Date:        monday,
			StartMin:    start,
			DurationMin: StepMin,
			Status:      domain.BookingConfirmed,
		})
	}
	assert.False(t, HasFreeSlot(monday, windows, tables, bookings, nil, 4, 90, 0, now))
}

func TestHasFreeSlotRespectsMinStart(t *testing.T) {
	tables := []domain.Table{fourTop(1)}
	windows := []domain.BookingWindow{weekdayWindow()}

	// Mid-afternoon the whole 18:00-22:00 evening is still ahead.
	afternoon := time.Date(2026, time.August, 31, 15, 0, 0, 0, time.UTC)
	assert.True(t, HasFreeSlot(monday, windows, tables, nil, nil, 4, 90, 0, afternoon))

	// At 23:00 every grid start in the window has passed, so the whole
	// day must drop out rather than surface as a date with no bookable
	// slots.
	lateEvening := time.Date(2026, time.August, 31, 23, 0, 0, 0, time.UTC)
	assert.False(t, HasFreeSlot(monday, windows, tables, nil, nil, 4, 90, 0, lateEvening))

	// Lead time shifts the floor the same way: at 21:00 with a 90 minute
	// lead nothing in the window remains reachable.
	assert.False(t, HasFreeSlot(monday, windows, tables, nil, nil, 4, 90, 90,
		time.Date(2026, time.August, 31, 21, 0, 0, 0, time.UTC)))
	assert.True(t, HasFreeSlot(monday, windows, tables, nil, nil, 4, 90, 90,
		time.Date(2026, time.August, 31, 18, 0, 0, 0, time.UTC)))
}

func TestMinStartFor(t *testing.T) {
	// 12:05 UTC on the target day
	now := time.Date(2026, time.August, 31, 12, 5, 0, 0, time.UTC)

	t.Run("future dates have no floor", func(t *testing.T) {
		assert.Equal(t, 0, MinStartFor(monday.AddDate(0, 0, 1), 0, now))
		assert.Equal(t, 0, MinStartFor(monday.AddDate(0, 0, 1), 120, now))
	})

	t.Run("past dates exhaust the grid", func(t *testing.T) {
		assert.Equal(t, 24*60, MinStartFor(monday.AddDate(0, 0, -1), 0, now))
	})

	t.Run("today rounds now plus lead up to the grid", func(t *testing.T) {
		// 12:05 -> 12:15
		assert.Equal(t, 12*60+15, MinStartFor(monday, 0, now))
		// 12:05 + 60m lead = 13:05 -> 13:15
		assert.Equal(t, 13*60+15, MinStartFor(monday, 60, now))
		// already on the grid stays put: 12:00 + 60m = 13:00
		onGrid := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, 13*60, MinStartFor(monday, 60, onGrid))
	})
}
