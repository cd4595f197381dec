/*
handlers.go - HTTP API handlers for the cabin booking engine

PURPOSE:
  Exposes the booking engine via REST API. Handles HTTP request/response,
  JSON serialization and request validation, and delegates to the booking
  service.

ENDPOINTS:
  Availability:
    GET    /api/bookings/unavailable-dates?cabinId=&date=  Blocked ranges, two months
    GET    /api/cabins?from=&to=                           Cabins free for a stay
    GET    /api/cabins/{id}                                Cabin with next window
    GET    /api/cabins/{id}/next-available?date=           Next free window

  Bookings:
    POST   /api/bookings/quote         Price preview
    POST   /api/bookings               Create (auth)
    POST   /api/bookings/{id}/cancel   Cancel (auth, owner)
    GET    /api/me/bookings?sort=      Caller's reservations, grouped

  Dev:
    POST   /api/auth/token             Token for a known guest email
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario

ERROR HANDLING:
  Errors are returned as JSON ErrorResponse with a status chosen from the
  error category (see statusFor):
  - 400: Validation errors, invalid input
  - 401: No session
  - 403: Not the booking's owner
  - 404: Unknown cabin, booking or guest
  - 409: Dates taken, or status does not allow the change
  - 503: Transient store failure, retry later
  - 500: Everything else
  Error messages come from generic.UserMessage. Driver errors and stack
  details are logged, never sent.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/warp/cabin-engine/auth"
	"github.com/warp/cabin-engine/booking"
	"github.com/warp/cabin-engine/generic"
)

// unavailableMonths is how many months the calendar page shows at once.
const unavailableMonths = 2

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Seeder writes reference data and bookings directly, bypassing the booking
// rules. Used by the demo scenarios only.
type Seeder interface {
	Reset(ctx context.Context) error
	SaveCabin(ctx context.Context, c generic.Cabin) error
	SaveGuest(ctx context.Context, g generic.Guest) error
	InsertBooking(ctx context.Context, nb generic.NewBooking) (generic.Booking, error)
}

// Store is what the handlers read directly.
type Store interface {
	generic.CabinStore
	Seeder
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *booking.Service
	Store   Store
	Tokens  *auth.Provider
	Log     logrus.FieldLogger

	// DevMode enables POST /api/auth/token and POST /api/scenarios/load.
	DevMode bool

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler.
func NewHandler(svc *booking.Service, store Store, tokens *auth.Provider, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Service: svc,
		Store:   store,
		Tokens:  tokens,
		Log:     log,
	}
}

// =============================================================================
// AVAILABILITY HANDLERS
// =============================================================================

// UnavailableDates returns the blocked ranges of a cabin for the month of
// date and the month after it.
// GET /api/bookings/unavailable-dates?cabinId=1&date=2024-06-01
func (h *Handler) UnavailableDates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cabinID, err := generic.ParseCabinID(q.Get("cabinId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing cabinId or date", err)
		return
	}
	date, err := generic.ParseDay(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing cabinId or date", err)
		return
	}

	ranges, err := h.Service.Availability().UnavailableRangesFrom(r.Context(), cabinID, date, unavailableMonths)
	if err != nil {
		h.logFailure(r, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch bookings dates", nil)
		return
	}
	writeJSON(w, http.StatusOK, ranges)
}

// ListCabins returns every cabin with its next free window. With from and
// to, cabins that have an active booking on any of those nights are left out.
// GET /api/cabins?from=2024-06-10&to=2024-06-14
func (h *Handler) ListCabins(w http.ResponseWriter, r *http.Request) {
	stay, err := parseOptionalStay(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cabins, err := h.Service.AvailableCabins(r.Context(), stay)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cabins)
}

// GetCabin returns one cabin with its next free window.
// GET /api/cabins/{id}
func (h *Handler) GetCabin(w http.ResponseWriter, r *http.Request) {
	id, err := generic.ParseCabinID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cabin, err := h.Service.Cabin(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cabin)
}

// NextAvailable returns the first usable window of a cabin from date, or
// from today when date is omitted.
// GET /api/cabins/{id}/next-available?date=2024-06-01
func (h *Handler) NextAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := generic.ParseCabinID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ref := h.Service.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		if ref, err = generic.ParseDay(raw); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	if _, err := h.Store.GetCabin(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	window, err := h.Service.Availability().NextAvailable(ctx, id, ref)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, window)
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// Quote prices a prospective stay. Missing dates are not an error: the
// response says the price is not computable yet.
// POST /api/bookings/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decodeRequest(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	in := booking.QuoteRequest{
		CabinID:     generic.CabinID(req.CabinID),
		NumGuests:   req.Guests.Total(),
		IsBreakfast: req.IsBreakfast,
	}
	if req.StartDate != "" {
		d, err := parseField("startDate", req.StartDate)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		in.From = &d
	}
	if req.EndDate != "" {
		d, err := parseField("endDate", req.EndDate)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		in.To = &d
	}

	quote, ok, err := h.Service.Quote(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := QuoteResponse{Computable: ok}
	if ok {
		resp.Quote = &quote
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateBooking reserves a cabin for the caller.
// POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := decodeRequest(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	start, err := parseField("startDate", req.StartDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	end, err := parseField("endDate", req.EndDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	details, err := h.Service.CreateBooking(r.Context(), booking.CreateBookingInput{
		CabinID:     generic.CabinID(req.CabinID),
		Period:      generic.NewPeriod(start, end),
		NumGuests:   req.Guests.Total(),
		IsBreakfast: req.IsBreakfast,
		ClientTotal: req.TotalPrice,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, details)
}

// CancelBooking cancels one of the caller's pending or confirmed bookings.
// POST /api/bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := generic.ParseBookingID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Service.CancelBooking(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CancelResponse{ID: id, Status: generic.StatusCanceled})
}

// MyBookings returns the caller's bookings grouped upcoming/past/canceled.
// GET /api/me/bookings?sort=asc|desc|recent
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	order, err := booking.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	grouped, err := h.Service.GuestBookings(r.Context(), order)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

// =============================================================================
// AUTH / HEALTH
// =============================================================================

// IssueToken signs a token for a known guest. Outside DevMode it answers
// 404 like an unknown route.
// POST /api/auth/token
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if !h.DevMode || h.Tokens == nil {
		http.NotFound(w, r)
		return
	}
	var req TokenRequest
	if err := decodeRequest(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	guest, err := h.Store.GetGuestByEmail(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := h.Tokens.Issue(guest.ID, guest.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, GuestID: guest.ID})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: codeFor(status)}
	var ve *generic.ValidationError
	if errors.As(err, &ve) {
		resp.Details = ve.Field
	}
	writeJSON(w, status, resp)
}

// fail writes the error with the status of its category. Server-side
// failures are logged with the request id.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logFailure(r, err)
	}
	writeError(w, status, generic.UserMessage(err), err)
}

func (h *Handler) logFailure(r *http.Request, err error) {
	h.Log.WithError(err).WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": middleware.GetReqID(r.Context()),
		"retryable":  generic.IsRetryable(err),
	}).Error("request failed")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, generic.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, generic.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, generic.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, generic.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrBookingConflict), errors.Is(err, generic.ErrInvalidTransition):
		return http.StatusConflict
	case generic.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// =============================================================================
// REQUEST DECODING
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into dst and applies its validate tags.
// Every failure is a *generic.ValidationError.
func decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var ve *generic.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return &generic.ValidationError{Message: "Invalid request body"}
	}
	if err := validate.Struct(dst); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return fieldError(fields[0])
		}
		return &generic.ValidationError{Message: "Invalid request body"}
	}
	return nil
}

func fieldError(fe validator.FieldError) *generic.ValidationError {
	name := fe.Namespace()
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", name)
	case "email":
		msg = fmt.Sprintf("%s must be a valid email address", name)
	case "min", "gt":
		msg = fmt.Sprintf("%s is too small", name)
	default:
		msg = fmt.Sprintf("%s is invalid", name)
	}
	return &generic.ValidationError{Field: name, Message: msg}
}

func parseField(field, raw string) (generic.Day, error) {
	d, err := generic.ParseDay(raw)
	if err != nil {
		return generic.Day{}, &generic.ValidationError{Field: field, Message: fmt.Sprintf("%s must be an ISO-8601 date", field)}
	}
	return d, nil
}

// parseOptionalStay parses a from/to query pair. Both or neither must be set.
func parseOptionalStay(from, to string) (*generic.Period, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, &generic.ValidationError{Field: "dates", Message: "from and to must be given together"}
	}
	start, err := parseField("from", from)
	if err != nil {
		return nil, err
	}
	end, err := parseField("to", to)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, &generic.ValidationError{Field: "to", Message: "to must be after from"}
	}
	p := generic.NewPeriod(start, end)
	return &p, nil
}
