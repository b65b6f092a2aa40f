package httpgin

import (
	"fmt"
	"strings"
	"time"

	"github.com/okareva/tably/internal/domain"
	"github.com/okareva/tably/internal/service/availability"
)

type CreateHoldRequest struct {
	TableID   *int64 `json:"table_id"`
	ServiceID *int64 `json:"service_id"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	PartySize int    `json:"party_size" binding:"required,gt=0"`
}

type CreateHoldResponse struct {
	Token     string    `json:"token"`
	TableID   *int64    `json:"table_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type HeartbeatResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

type CreateBookingRequest struct {
	HoldToken      string `json:"hold_token" binding:"required,uuid"`
	GuestName      string `json:"guest_name" binding:"required"`
	GuestEmail     string `json:"guest_email" binding:"omitempty,email"`
	GuestPhone     string `json:"guest_phone"`
	PendingPayment bool   `json:"pending_payment"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BookingResponse struct {
	ID         string `json:"id"`
	VenueID    int64  `json:"venue_id"`
	ServiceID  *int64 `json:"service_id,omitempty"`
	TableID    *int64 `json:"table_id,omitempty"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email,omitempty"`
	GuestPhone string `json:"guest_phone,omitempty"`
	PartySize  int    `json:"party_size"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID.String(),
		VenueID:    b.VenueID,
		ServiceID:  b.ServiceID,
		TableID:    b.TableID,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestPhone: b.GuestPhone,
		PartySize:  b.PartySize,
		Date:       b.Date.Format(dateLayout),
		Time:       minutesToClock(b.StartMin),
		EndTime:    minutesToClock(b.EndMin()),
		Status:     string(b.Status),
	}
}

type VenueServiceResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	MinGuests int    `json:"min_guests"`
	MaxGuests int    `json:"max_guests"`
}

type VenueResponse struct {
	ID       int64                  `json:"id"`
	Slug     string                 `json:"slug"`
	Name     string                 `json:"name"`
	Open     string                 `json:"open"`
	Close    string                 `json:"close"`
	Services []VenueServiceResponse `json:"services"`
}

func toVenueResponse(sum *availability.VenueSummary) VenueResponse {
	resp := VenueResponse{
		ID:       sum.ID,
		Slug:     sum.Slug,
		Name:     sum.Name,
		Open:     minutesToClock(sum.OpenMin),
		Close:    minutesToClock(sum.CloseMin),
		Services: make([]VenueServiceResponse, 0, len(sum.Services)),
	}
	for _, s := range sum.Services {
		resp.Services = append(resp.Services, VenueServiceResponse{
			ID:        s.ID,
			Name:      s.Name,
			MinGuests: s.MinGuests,
			MaxGuests: s.MaxGuests,
		})
	}
	return resp
}

type SlotResponse struct {
	Time     string  `json:"time"`
	TableIDs []int64 `json:"table_ids"`
	Status   string  `json:"status"`
}

type SlotsResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

type DatesResponse struct {
	Dates []string `json:"dates"`
}

type CreateVenueRequest struct {
	Slug  string `json:"slug" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Open  string `json:"open" binding:"required"`
	Close string `json:"close" binding:"required"`
}

type UpdateVenueHoursRequest struct {
	Open  string `json:"open" binding:"required"`
	Close string `json:"close" binding:"required"`
}

type CreateVenueResponse struct {
	VenueID int64 `json:"venue_id"`
}

type TableInput struct {
	Name           string `json:"name" binding:"required"`
	Seats          int    `json:"seats" binding:"required,gt=0"`
	Active         bool   `json:"active"`
	OnlineBookable bool   `json:"online_bookable"`
	Priority       int    `json:"priority"`
	JoinGroup      *int64 `json:"join_group"`
}

type BatchCreateTablesRequest struct {
	Tables []TableInput `json:"tables" binding:"required,min=1,dive"`
}

type DurationRuleInput struct {
	MinParty    int `json:"min_party" binding:"required,gt=0"`
	MaxParty    int `json:"max_party" binding:"required,gt=0"`
	DurationMin int `json:"duration_min" binding:"required,gt=0"`
}

type CreateServiceRequest struct {
	Name            string              `json:"name" binding:"required"`
	MinGuests       int                 `json:"min_guests" binding:"required,gt=0"`
	MaxGuests       int                 `json:"max_guests" binding:"required,gt=0"`
	LeadTimeMin     int                 `json:"lead_time_min"`
	CancelWindowMin int                 `json:"cancel_window_min"`
	RequiresPayment bool                `json:"requires_payment"`
	DurationRules   []DurationRuleInput `json:"duration_rules"`
}

type CreateServiceResponse struct {
	ServiceID int64 `json:"service_id"`
}

type BlackoutInput struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type CreateWindowRequest struct {
	Weekdays     []string        `json:"weekdays" binding:"required,min=1"`
	Start        string          `json:"start" binding:"required"`
	End          string          `json:"end" binding:"required"`
	FromDate     *string         `json:"from_date"`
	ToDate       *string         `json:"to_date"`
	Blackouts    []BlackoutInput `json:"blackouts"`
	SlotCapacity int             `json:"slot_capacity"`
}

type CreateWindowResponse struct {
	WindowID int64 `json:"window_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// clockToMinutes parses "HH:MM" into minutes since midnight.
func clockToMinutes(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

func minutesToClock(min int) string {
	return fmt.Sprintf("%02d:%02d", (min/60)%24, min%60)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) (domain.WeekdaySet, error) {
	var set domain.WeekdaySet
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("invalid weekday %q", n)
		}
		set |= domain.NewWeekdaySet(d)
	}
	return set, nil
}
