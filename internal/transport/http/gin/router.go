package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/okareva/tably/internal/domain"
	redisrepo "github.com/okareva/tably/internal/repository/redis"
	"github.com/okareva/tably/internal/service"
	"github.com/okareva/tably/internal/service/admin"
	"github.com/okareva/tably/internal/service/availability"
	"github.com/okareva/tably/internal/service/booking"
	"github.com/okareva/tably/internal/service/hold"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public booking API
	r.GET("/venues/:id", handleGetVenue(svcs))
	r.GET("/v/:slug", handleGetVenueBySlug(svcs))
	r.GET("/venues/:id/availability/dates", handleAvailableDates(svcs))
	r.GET("/venues/:id/availability/slots", handleAvailableSlots(svcs))

	r.POST("/venues/:id/holds", handleCreateHold(svcs, idem))
	r.POST("/holds/:token/heartbeat", handleHeartbeat(svcs))
	r.DELETE("/holds/:token", handleReleaseHold(svcs))

	r.POST("/bookings", handleCreateBooking(svcs))
	r.GET("/bookings/:id", handleGetBooking(svcs))
	r.POST("/bookings/:id/cancel", handleCancelBooking(svcs))
	r.PATCH("/bookings/:id/status", handleUpdateBookingStatus(svcs))
	r.GET("/venues/:id/bookings", handleListBookings(svcs))

	// Admin API
	// TODO: add admin auth middleware once the platform console lands
	adm := r.Group("/admin")
	{
		adm.POST("/venues", handleCreateVenue(svcs))
		adm.PATCH("/venues/:id/hours", handleUpdateVenueHours(svcs))
		adm.POST("/venues/:id/tables", handleBatchCreateTables(svcs))
		adm.POST("/venues/:id/services", handleCreateService(svcs))
		adm.POST("/services/:id/windows", handleCreateWindow(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Venue card: identity, hours, bookable services
// @Param    id  path  int  true  "Venue ID"
// @Success  200  {object}  VenueResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /venues/{id} [get]
func handleGetVenue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		sum, err := svcs.Availability.Summary(c.Request.Context(), venueID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, toVenueResponse(sum), "public, max-age=300", true)
	}
}

// @Summary  Venue card by public slug
// @Param    slug  path  string  true  "Venue slug"
// @Success  200  {object}  VenueResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /v/{slug} [get]
func handleGetVenueBySlug(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svcs.Availability.SummaryBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, toVenueResponse(sum), "public, max-age=300", true)
	}
}

// @Summary  Available dates for a venue
// @Param    id          path   int  true   "Venue ID"
// @Param    party_size  query  int  true   "Party size"
// @Param    service_id  query  int  false  "Service ID"
// @Success  200  {object}  DatesResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  503  {object}  ErrorResponse "store unreachable, retry"
// @Router   /venues/{id}/availability/dates [get]
func handleAvailableDates(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		partySize, serviceID, ok := parseAvailabilityQuery(c)
		if !ok {
			return
		}

		dates, err := svcs.Availability.Dates(c.Request.Context(), venueID, serviceID, partySize)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := DatesResponse{Dates: make([]string, 0, len(dates))}
		for _, d := range dates {
			resp.Dates = append(resp.Dates, d.Format(dateLayout))
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, resp, "public, max-age=60", true)
	}
}

// @Summary  Slot grid for a venue and date
// @Param    id          path   int     true   "Venue ID"
// @Param    date        query  string  true   "Date (YYYY-MM-DD)"
// @Param    party_size  query  int     true   "Party size"
// @Param    service_id  query  int     false  "Service ID"
// @Success  200  {object}  SlotsResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  503  {object}  ErrorResponse "store unreachable, retry"
// @Router   /venues/{id}/availability/slots [get]
func handleAvailableSlots(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		partySize, serviceID, ok := parseAvailabilityQuery(c)
		if !ok {
			return
		}
		date, err := parseDate(c.Query("date"))
		if err != nil {
			badRequest(c, "invalid date (YYYY-MM-DD)")
			return
		}

		slots, err := svcs.Availability.Slots(c.Request.Context(), venueID, serviceID, date, partySize)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := SlotsResponse{
			Date:  date.Format(dateLayout),
			Slots: make([]SlotResponse, 0, len(slots)),
		}
		for _, s := range slots {
			resp.Slots = append(resp.Slots, SlotResponse{
				Time:     minutesToClock(s.StartMin),
				TableIDs: s.TableIDs,
				Status:   string(s.Status),
			})
		}
		// slots move fast, keep the edge cache short
		writeJSONWithCache(c, http.StatusOK, resp, "public, max-age=15", true)
	}
}

// @Summary  Create hold (idempotent)
// @Param    id  path  int  true  "Venue ID"
// @Param    req body  CreateHoldRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} CreateHoldResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "slot taken / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /venues/{id}/holds [post]
func handleCreateHold(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateHoldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			badRequest(c, "invalid date (YYYY-MM-DD)")
			return
		}
		startMin, err := clockToMinutes(req.Time)
		if err != nil {
			badRequest(c, "invalid time (HH:MM)")
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemHold(venueID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				if inProgress, _ := idem.IsLocked(c.Request.Context(), idemStorageKey); inProgress {
					c.Header("Retry-After", "1")
					c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
					return
				}
				// lock vanished without a saved result: the first attempt
				// failed, let this one proceed fresh
			}
		}

		rlKey := "ip:" + c.ClientIP()

		h, err := svcs.Hold.Create(c.Request.Context(), hold.CreateParams{
			VenueID:   venueID,
			TableID:   req.TableID,
			ServiceID: req.ServiceID,
			Date:      date,
			StartMin:  startMin,
			PartySize: req.PartySize,
		}, rlKey)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := CreateHoldResponse{
			Token:     h.Token.String(),
			TableID:   h.TableID,
			ExpiresAt: h.ExpiresAt,
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Heartbeat a hold
// @Param    token  path  string  true  "Hold token (uuid)"
// @Success  200 {object} HeartbeatResponse
// @Failure  404 {object} ErrorResponse "unknown token"
// @Failure  409 {object} ErrorResponse "hold expired, restart the flow"
// @Router   /holds/{token}/heartbeat [post]
func handleHeartbeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := parseTokenParam(c)
		if !ok {
			return
		}
		expiresAt, err := svcs.Hold.Extend(c.Request.Context(), token)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, HeartbeatResponse{ExpiresAt: expiresAt})
	}
}

// @Summary  Release a hold (idempotent)
// @Param    token  path  string  true  "Hold token (uuid)"
// @Success  204
// @Router   /holds/{token} [delete]
func handleReleaseHold(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := parseTokenParam(c)
		if !ok {
			return
		}
		if err := svcs.Hold.Release(c.Request.Context(), token); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Create booking from a hold
// @Param    req body  CreateBookingRequest true "payload"
// @Success  201 {object} BookingResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "hold expired / slot taken"
// @Router   /bookings [post]
func handleCreateBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		token, err := uuid.Parse(req.HoldToken)
		if err != nil {
			badRequest(c, "invalid hold_token")
			return
		}

		b, err := svcs.Hold.Convert(c.Request.Context(), token, hold.GuestDetails{
			Name:           req.GuestName,
			Email:          req.GuestEmail,
			Phone:          req.GuestPhone,
			PendingPayment: req.PendingPayment,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, toBookingResponse(b))
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Cancel booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Failure  409 {object} ErrorResponse "cancellation window closed"
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Cancel(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Update booking status (dashboard)
// @Param    id   path  string                      true  "Booking ID (uuid)"
// @Param    req  body  UpdateBookingStatusRequest  true  "payload"
// @Success  200 {object} BookingResponse
// @Router   /bookings/{id}/status [patch]
func handleUpdateBookingStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateBookingStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		status := domain.BookingStatus(req.Status)
		switch status {
		case domain.BookingConfirmed, domain.BookingSeated, domain.BookingFinished,
			domain.BookingCancelled, domain.BookingLate, domain.BookingPendingPayment,
			domain.BookingIncomplete, domain.BookingNoShow:
		default:
			badRequest(c, "invalid status")
			return
		}
		b, err := svcs.Booking.SetStatus(c.Request.Context(), id, status)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  List venue bookings for a date
// @Param    id    path   int     true  "Venue ID"
// @Param    date  query  string  true  "Date (YYYY-MM-DD)"
// @Success  200 {array} BookingResponse
// @Router   /venues/{id}/bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		date, err := parseDate(c.Query("date"))
		if err != nil {
			badRequest(c, "invalid date (YYYY-MM-DD)")
			return
		}
		bookings, err := svcs.Booking.ListByDate(c.Request.Context(), venueID, date)
		if err != nil {
			respondErr(c, err)
			return
		}
		out := make([]BookingResponse, 0, len(bookings))
		for i := range bookings {
			out = append(out, toBookingResponse(&bookings[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Create venue
// @Param    req body  CreateVenueRequest true "payload"
// @Success  201 {object} CreateVenueResponse
// @Router   /admin/venues [post]
func handleCreateVenue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		openMin, err := clockToMinutes(req.Open)
		if err != nil {
			badRequest(c, "invalid open (HH:MM)")
			return
		}
		closeMin, err := clockToMinutes(req.Close)
		if err != nil {
			badRequest(c, "invalid close (HH:MM)")
			return
		}
		id, err := svcs.Admin.CreateVenue(c.Request.Context(), req.Slug, req.Name, openMin, closeMin)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateVenueResponse{VenueID: id})
	}
}

// @Summary  Update venue operating hours
// @Param    id   path  int                      true  "Venue ID"
// @Param    req  body  UpdateVenueHoursRequest  true  "payload"
// @Success  204
// @Router   /admin/venues/{id}/hours [patch]
func handleUpdateVenueHours(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdateVenueHoursRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		openMin, err := clockToMinutes(req.Open)
		if err != nil {
			badRequest(c, "invalid open (HH:MM)")
			return
		}
		closeMin, err := clockToMinutes(req.Close)
		if err != nil {
			badRequest(c, "invalid close (HH:MM)")
			return
		}
		if err := svcs.Admin.UpdateVenueHours(c.Request.Context(), venueID, openMin, closeMin); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Batch create tables
// @Param    id  path  int  true  "Venue ID"
// @Param    req body  BatchCreateTablesRequest true "payload"
// @Success  201 {object} map[string]int
// @Router   /admin/venues/{id}/tables [post]
func handleBatchCreateTables(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req BatchCreateTablesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		tables := make([]domain.Table, 0, len(req.Tables))
		for _, t := range req.Tables {
			tables = append(tables, domain.Table{
				VenueID:        venueID,
				Name:           t.Name,
				Seats:          t.Seats,
				Active:         t.Active,
				OnlineBookable: t.OnlineBookable,
				Priority:       t.Priority,
				JoinGroup:      t.JoinGroup,
			})
		}
		if err := svcs.Admin.BatchCreateTables(c.Request.Context(), venueID, tables); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"created": len(tables)})
	}
}

// @Summary  Create service with duration rules
// @Param    id  path  int  true  "Venue ID"
// @Param    req body  CreateServiceRequest true "payload"
// @Success  201 {object} CreateServiceResponse
// @Router   /admin/venues/{id}/services [post]
func handleCreateService(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		svc := domain.Service{
			VenueID:         venueID,
			Name:            req.Name,
			MinGuests:       req.MinGuests,
			MaxGuests:       req.MaxGuests,
			LeadTimeMin:     req.LeadTimeMin,
			CancelWindowMin: req.CancelWindowMin,
			RequiresPayment: req.RequiresPayment,
		}
		for _, r := range req.DurationRules {
			svc.DurationRules = append(svc.DurationRules, domain.DurationRule{
				MinParty:    r.MinParty,
				MaxParty:    r.MaxParty,
				DurationMin: r.DurationMin,
			})
		}
		id, err := svcs.Admin.CreateService(c.Request.Context(), svc)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateServiceResponse{ServiceID: id})
	}
}

// @Summary  Create booking window
// @Param    id  path  int  true  "Service ID"
// @Param    req body  CreateWindowRequest true "payload"
// @Success  201 {object} CreateWindowResponse
// @Router   /admin/services/{id}/windows [post]
func handleCreateWindow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		serviceID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateWindowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		weekdays, err := parseWeekdays(req.Weekdays)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		startMin, err := clockToMinutes(req.Start)
		if err != nil {
			badRequest(c, "invalid start (HH:MM)")
			return
		}
		endMin, err := clockToMinutes(req.End)
		if err != nil {
			badRequest(c, "invalid end (HH:MM)")
			return
		}

		w := domain.BookingWindow{
			ServiceID:    serviceID,
			Weekdays:     weekdays,
			StartMin:     startMin,
			EndMin:       endMin,
			SlotCapacity: req.SlotCapacity,
		}
		if req.FromDate != nil {
			d, err := parseDate(*req.FromDate)
			if err != nil {
				badRequest(c, "invalid from_date (YYYY-MM-DD)")
				return
			}
			w.FromDate = &d
		}
		if req.ToDate != nil {
			d, err := parseDate(*req.ToDate)
			if err != nil {
				badRequest(c, "invalid to_date (YYYY-MM-DD)")
				return
			}
			w.ToDate = &d
		}
		for _, b := range req.Blackouts {
			from, err := parseDate(b.From)
			if err != nil {
				badRequest(c, "invalid blackout from (YYYY-MM-DD)")
				return
			}
			to, err := parseDate(b.To)
			if err != nil {
				badRequest(c, "invalid blackout to (YYYY-MM-DD)")
				return
			}
			w.Blackouts = append(w.Blackouts, domain.DateRange{From: from, To: to})
		}

		windowID, err := svcs.Admin.CreateWindowForService(c.Request.Context(), serviceID, w)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateWindowResponse{WindowID: windowID})
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseTokenParam(c *gin.Context) (uuid.UUID, bool) {
	return parseUUIDParam(c, "token")
}

func parseAvailabilityQuery(c *gin.Context) (partySize int, serviceID *int64, ok bool) {
	partySize, err := strconv.Atoi(c.Query("party_size"))
	if err != nil || partySize < 1 {
		badRequest(c, "invalid party_size")
		return 0, nil, false
	}
	if s := c.Query("service_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			badRequest(c, "invalid service_id")
			return 0, nil, false
		}
		serviceID = &id
	}
	return partySize, serviceID, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// availability service
	case errors.Is(err, availability.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "venue not found"})
	case errors.Is(err, availability.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
	case errors.Is(err, availability.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, availability.ErrStoreUnavailable):
		c.Header("Retry-After", "2")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "availability temporarily unavailable"})
	// hold service
	case errors.Is(err, hold.ErrSlotTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "slot taken"})
	case errors.Is(err, hold.ErrHoldExpired):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "hold expired"})
	case errors.Is(err, hold.ErrHoldNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "hold not found"})
	case errors.Is(err, hold.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "venue not found"})
	case errors.Is(err, hold.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
	case errors.Is(err, hold.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, hold.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
	// booking service
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
	case errors.Is(err, booking.ErrCancelWindow):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "cancellation window closed"})
	case errors.Is(err, booking.ErrAlreadyFinal):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking already final"})
	// admin service
	case errors.Is(err, admin.ErrVenueConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "venue conflict"})
	case errors.Is(err, admin.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "venue not found"})
	case errors.Is(err, admin.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
	case errors.Is(err, admin.ErrTablesConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "tables conflict"})
	case errors.Is(err, admin.ErrServiceConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "service conflict"})
	case errors.Is(err, admin.ErrWindowConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "window conflict"})
	case errors.Is(err, admin.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
