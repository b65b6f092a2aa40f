package domain

import (
	"time"

	"github.com/google/uuid"
)

// Times of day are minutes since midnight in the venue's local day;
// dates are UTC-midnight time.Time values carrying no clock component.

type VenueStatus string

const (
	VenuePending  VenueStatus = "pending"
	VenueApproved VenueStatus = "approved"
	VenueDisabled VenueStatus = "disabled"
)

type Venue struct {
	ID       int64
	Slug     string
	Name     string
	OpenMin  int
	CloseMin int
	Status   VenueStatus
}

// Configured reports whether the venue has usable operating hours.
func (v Venue) Configured() bool {
	return v.CloseMin > v.OpenMin
}

type Table struct {
	ID             int64
	VenueID        int64
	Name           string
	Seats          int
	Active         bool
	OnlineBookable bool
	Priority       int
	JoinGroup      *int64
}

// DurationRule maps a party-size range (inclusive) to a booking duration.
type DurationRule struct {
	MinParty    int
	MaxParty    int
	DurationMin int
}

// Service is a bookable offering such as "Dinner" or "Christmas Menu".
type Service struct {
	ID              int64
	VenueID         int64
	Name            string
	MinGuests       int
	MaxGuests       int
	LeadTimeMin     int
	CancelWindowMin int
	RequiresPayment bool
	DurationRules   []DurationRule
}

type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether date falls inside the range (inclusive).
func (r DateRange) Contains(date time.Time) bool {
	return !date.Before(r.From) && !date.After(r.To)
}

// BookingWindow defines when a Service is orderable. Slots are generated
// at a fixed 15-minute step between StartMin and EndMin on matching days.
type BookingWindow struct {
	ID           int64
	ServiceID    int64
	Weekdays     WeekdaySet
	StartMin     int
	EndMin       int
	FromDate     *time.Time
	ToDate       *time.Time
	Blackouts    []DateRange
	SlotCapacity int
}

// WeekdaySet is a bitmask over time.Weekday (Sunday == bit 0).
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

type BookingStatus string

const (
	BookingConfirmed      BookingStatus = "confirmed"
	BookingSeated         BookingStatus = "seated"
	BookingFinished       BookingStatus = "finished"
	BookingCancelled      BookingStatus = "cancelled"
	BookingLate           BookingStatus = "late"
	BookingPendingPayment BookingStatus = "pending_payment"
	BookingIncomplete     BookingStatus = "incomplete"
	BookingNoShow         BookingStatus = "no_show"
)

// Blocks reports whether a booking in this status occupies its table's
// time interval. Cancelled and no-show bookings free the table.
func (s BookingStatus) Blocks() bool {
	return s != BookingCancelled && s != BookingNoShow
}

type Booking struct {
	ID          uuid.UUID
	VenueID     int64
	ServiceID   *int64
	TableID     *int64 // nil: unallocated, pending manual seating
	GuestName   string
	GuestEmail  string
	GuestPhone  string
	PartySize   int
	Date        time.Time
	StartMin    int
	DurationMin int
	Status      BookingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b Booking) EndMin() int {
	return b.StartMin + b.DurationMin
}

// Hold is a provisional, time-boxed claim on a table while a guest
// completes checkout. It is active while released_at is unset and the
// expiry has not passed; an expired row simply stops blocking, no
// sweeper is required for correctness.
type Hold struct {
	Token       uuid.UUID
	VenueID     int64
	TableID     *int64
	ServiceID   *int64
	Date        time.Time
	StartMin    int
	DurationMin int
	PartySize   int
	CreatedAt   time.Time
	ExpiresAt   time.Time
	ReleasedAt  *time.Time
}

func (h Hold) EndMin() int {
	return h.StartMin + h.DurationMin
}

func (h Hold) ActiveAt(now time.Time) bool {
	return h.ReleasedAt == nil && h.ExpiresAt.After(now)
}

type SlotStatus string

const (
	SlotFull    SlotStatus = "full"
	SlotLimited SlotStatus = "limited"
	SlotPlenty  SlotStatus = "plenty"
)

// Slot is one entry of the availability grid: a start time, the tables
// that could seat the party at that time (best candidate first), and a
// coarse status for the UI.
type Slot struct {
	StartMin int
	TableIDs []int64
	Status   SlotStatus
}
