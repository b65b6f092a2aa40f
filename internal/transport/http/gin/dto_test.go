package httpgin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okareva/tably/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"18:15", 1095, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"-1:00", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := clockToMinutes(tt.in)
		if !tt.ok {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestMinutesToClock(t *testing.T) {
	assert.Equal(t, "00:00", minutesToClock(0))
	assert.Equal(t, "09:30", minutesToClock(570))
	assert.Equal(t, "18:15", minutesToClock(1095))
	assert.Equal(t, "23:59", minutesToClock(1439))
}

func TestClockRoundTrip(t *testing.T) {
	for min := 0; min < 24*60; min += 15 {
		got, err := clockToMinutes(minutesToClock(min))
		require.NoError(t, err)
		assert.Equal(t, min, got)
	}
}

func TestParseWeekdays(t *testing.T) {
	set, err := parseWeekdays([]string{"monday", "Friday", " saturday "})
	require.NoError(t, err)

	assert.True(t, set.Has(time.Monday))
	assert.True(t, set.Has(time.Friday))
	assert.True(t, set.Has(time.Saturday))
	assert.False(t, set.Has(time.Sunday))
	assert.False(t, set.Has(time.Tuesday))

	_, err = parseWeekdays([]string{"monday", "blursday"})
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), d)

	_, err = parseDate("31/08/2026")
	assert.Error(t, err)
}

func TestToBookingResponse(t *testing.T) {
	tableID := int64(7)
	b := &domain.Booking{
		ID:          uuid.New(),
		VenueID:     3,
		TableID:     &tableID,
		GuestName:   "Ada",
		PartySize:   4,
		Date:        time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC),
		StartMin:    19 * 60,
		DurationMin: 90,
		Status:      domain.BookingConfirmed,
	}

	resp := toBookingResponse(b)

	assert.Equal(t, b.ID.String(), resp.ID)
	assert.Equal(t, "2026-09-04", resp.Date)
	assert.Equal(t, "19:00", resp.Time)
	assert.Equal(t, "20:30", resp.EndTime)
	assert.Equal(t, "confirmed", resp.Status)
	require.NotNil(t, resp.TableID)
	assert.EqualValues(t, 7, *resp.TableID)
}
