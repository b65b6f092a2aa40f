package redisx

import (
	"fmt"
	"time"
)

const ns = "tably:v1"

// KeyVenueGen is a per-venue generation counter. Availability cache keys
// embed the current generation, so bumping the counter invalidates every
// cached date/slot result for the venue in one INCR regardless of which
// party sizes or services were cached.
func KeyVenueGen(venueID int64) string {
	return fmt.Sprintf("%s:venue:%d:gen", ns, venueID)
}

func KeyAvailableDates(venueID, gen int64, serviceID int64, partySize int) string {
	return fmt.Sprintf("%s:venue:%d:g%d:dates:%d:%d", ns, venueID, gen, serviceID, partySize)
}

func KeyAvailableSlots(venueID, gen int64, date time.Time, serviceID int64, partySize int) string {
	return fmt.Sprintf(
		"%s:venue:%d:g%d:slots:%s:%d:%d",
		ns, venueID, gen, date.Format("2006-01-02"), serviceID, partySize,
	)
}

func KeyVenueSummary(venueID int64) string {
	return fmt.Sprintf("%s:venue:%d:summary", ns, venueID)
}

// KeyRateLimitPrefix is the base key under which the sliding-window
// limiter stores its per-client ordered sets.
func KeyRateLimitPrefix(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelAvailabilityChanged() string {
	return ns + ":availability:changed"
}
