// Package slot holds the time-grid and interval arithmetic shared by the
// availability and hold services. Everything here is pure so the overlap
// semantics can be tested without a store; the database exclusion
// constraint remains the authoritative guard at commit time.
package slot

import (
	"sort"
	"time"

	"github.com/okareva/tably/internal/domain"
)

// StepMin is the fixed grid step between bookable start times.
const StepMin = 15

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

func NewInterval(startMin, durationMin int) Interval {
	return Interval{Start: startMin, End: startMin + durationMin}
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Grid returns bookable start times in [startMin, endMin) at the given
// step. An 18:00-22:00 window yields 18:00 through 21:45.
func Grid(startMin, endMin, step int) []int {
	if step <= 0 || endMin <= startMin {
		return nil
	}
	out := make([]int, 0, (endMin-startMin)/step)
	for t := startMin; t < endMin; t += step {
		out = append(out, t)
	}
	return out
}

// WindowAppliesOn reports whether a booking window is orderable on date:
// the weekday matches, date is inside the window's optional bounds, and
// no blackout range covers it.
func WindowAppliesOn(w domain.BookingWindow, date time.Time) bool {
	if !w.Weekdays.Has(date.Weekday()) {
		return false
	}
	if w.FromDate != nil && date.Before(*w.FromDate) {
		return false
	}
	if w.ToDate != nil && date.After(*w.ToDate) {
		return false
	}
	for _, b := range w.Blackouts {
		if b.Contains(date) {
			return false
		}
	}
	return true
}

// DurationFor resolves the booking duration for a party size from the
// service's duration rules. The second return is false when no rule
// matches and the caller should fall back to its default.
func DurationFor(svc domain.Service, partySize int) (int, bool) {
	for _, r := range svc.DurationRules {
		if partySize >= r.MinParty && partySize <= r.MaxParty {
			return r.DurationMin, true
		}
	}
	return 0, false
}

// MinStartFor returns the earliest bookable start minute on date: zero
// for future dates, and now plus the service's lead time rounded up to
// the grid when date is today. A past date yields an exhausted grid.
func MinStartFor(date time.Time, leadMin int, now time.Time) int {
	nowUTC := now.UTC()
	y, m, d := nowUTC.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	switch {
	case date.After(today):
		return 0
	case date.Before(today):
		return 24 * 60
	}

	earliest := nowUTC.Hour()*60 + nowUTC.Minute() + leadMin
	if rem := earliest % StepMin; rem != 0 {
		earliest += StepMin - rem
	}
	return earliest
}

// CandidateTables filters the inventory down to tables that could seat
// the party at all: active, online-bookable, with enough seats.
func CandidateTables(tables []domain.Table, partySize int) []domain.Table {
	var out []domain.Table
	for _, t := range tables {
		if t.Active && t.OnlineBookable && t.Seats >= partySize {
			out = append(out, t)
		}
	}
	return out
}

// FreeTables removes candidates whose interval on the given date collides
// with a blocking booking or a hold still active at now. Bookings and
// holds without an assigned table never block a specific table.
func FreeTables(
	candidates []domain.Table,
	iv Interval,
	bookings []domain.Booking,
	holds []domain.Hold,
	now time.Time,
) []domain.Table {
	var out []domain.Table
	for _, t := range candidates {
		if tableFree(t.ID, iv, bookings, holds, now) {
			out = append(out, t)
		}
	}
	return out
}

func tableFree(tableID int64, iv Interval, bookings []domain.Booking, holds []domain.Hold, now time.Time) bool {
	for _, b := range bookings {
		if b.TableID == nil || *b.TableID != tableID || !b.Status.Blocks() {
			continue
		}
		if iv.Overlaps(NewInterval(b.StartMin, b.DurationMin)) {
			return false
		}
	}
	for _, h := range holds {
		if h.TableID == nil || *h.TableID != tableID || !h.ActiveAt(now) {
			continue
		}
		if iv.Overlaps(NewInterval(h.StartMin, h.DurationMin)) {
			return false
		}
	}
	return true
}

// RankTables orders candidates by allocation preference: exact seat-count
// match before oversized tables, then lower priority rank, then tables
// outside any join group (keeping combinable tables free for larger
// parties), then table ID for a stable result. The input is not mutated.
func RankTables(tables []domain.Table, partySize int) []domain.Table {
	ranked := make([]domain.Table, len(tables))
	copy(ranked, tables)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ae, be := a.Seats == partySize, b.Seats == partySize
		if ae != be {
			return ae
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		aj, bj := a.JoinGroup != nil, b.JoinGroup != nil
		if aj != bj {
			return !aj
		}
		return a.ID < b.ID
	})
	return ranked
}

// Classify maps a candidate count to a slot status. limitedMax is the
// largest count still reported as "limited"; it is venue policy, not part
// of the contract.
func Classify(candidates, limitedMax int) domain.SlotStatus {
	switch {
	case candidates == 0:
		return domain.SlotFull
	case candidates <= limitedMax:
		return domain.SlotLimited
	default:
		return domain.SlotPlenty
	}
}

// BuildSlots assembles the availability grid for one date. For every
// window applying on the date it walks the 15-minute grid and, per start
// time, collects the ranked free tables for a stay of durationMin.
// Duplicate start times across windows are merged keeping the richer
// candidate set.
func BuildSlots(
	date time.Time,
	windows []domain.BookingWindow,
	tables []domain.Table,
	bookings []domain.Booking,
	holds []domain.Hold,
	partySize, durationMin, limitedMax int,
	now time.Time,
) []domain.Slot {
	candidates := CandidateTables(tables, partySize)

	byStart := make(map[int][]int64)
	var starts []int
	for _, w := range windows {
		if !WindowAppliesOn(w, date) {
			continue
		}
		for _, start := range Grid(w.StartMin, w.EndMin, StepMin) {
			free := FreeTables(candidates, NewInterval(start, durationMin), bookings, holds, now)
			ids := make([]int64, 0, len(free))
			for _, t := range RankTables(free, partySize) {
				ids = append(ids, t.ID)
			}
			if prev, ok := byStart[start]; ok {
				if len(ids) > len(prev) {
					byStart[start] = ids
				}
				continue
			}
			byStart[start] = ids
			starts = append(starts, start)
		}
	}
	sort.Ints(starts)

	out := make([]domain.Slot, 0, len(starts))
	for _, start := range starts {
		ids := byStart[start]
		out = append(out, domain.Slot{
			StartMin: start,
			TableIDs: ids,
			Status:   Classify(len(ids), limitedMax),
		})
	}
	return out
}

// HasFreeSlot reports whether BuildSlots would produce at least one
// still-bookable slot with a candidate table; used by the date lookahead
// to include or drop a whole day without materializing the grid result.
// Starts below MinStartFor(date, leadMin, now) do not count, so a date
// whose remaining evening has already passed is excluded, not offered as
// a dead end.
func HasFreeSlot(
	date time.Time,
	windows []domain.BookingWindow,
	tables []domain.Table,
	bookings []domain.Booking,
	holds []domain.Hold,
	partySize, durationMin, leadMin int,
	now time.Time,
) bool {
	candidates := CandidateTables(tables, partySize)
	if len(candidates) == 0 {
		return false
	}
	minStart := MinStartFor(date, leadMin, now)
	for _, w := range windows {
		if !WindowAppliesOn(w, date) {
			continue
		}
		for _, start := range Grid(w.StartMin, w.EndMin, StepMin) {
			if start < minStart {
				continue
			}
			if len(FreeTables(candidates, NewInterval(start, durationMin), bookings, holds, now)) > 0 {
				return true
			}
		}
	}
	return false
}
