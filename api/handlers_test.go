/*
handlers_test.go - HTTP tests for the booking API

Tests for:
- Unavailable dates (two-month window, parameter errors)
- Cabin listing, filtering and next window
- Quote preview
- Create and cancel, including auth and error status mapping
- Reservation list and dev token issuance
- Store failures (500 and 503) and what leaks to the client
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cabin-engine/api"
	"github.com/warp/cabin-engine/auth"
	"github.com/warp/cabin-engine/booking"
	"github.com/warp/cabin-engine/generic"
	"github.com/warp/cabin-engine/generic/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	ana generic.GuestID = 10
	ben generic.GuestID = 11
)

var june1 = time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store   *store.Memory
	handler *api.Handler
	router  http.Handler
	tokens  *auth.Provider
	logs    *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveCabin(ctx, generic.Cabin{
		ID: 1, Name: "001", MaxGuests: 4,
		RegularPrice: generic.NewMoney(100), Discount: generic.NewMoney(10),
	}))
	require.NoError(t, m.SaveCabin(ctx, generic.Cabin{
		ID: 2, Name: "002", MaxGuests: 2,
		RegularPrice: generic.NewMoney(200), Discount: generic.ZeroMoney(),
	}))
	require.NoError(t, m.SaveGuest(ctx, generic.Guest{ID: ana, FullName: "Ana", Email: "ana@example.com"}))
	require.NoError(t, m.SaveGuest(ctx, generic.Guest{ID: ben, FullName: "Ben", Email: "ben@example.com"}))

	logger, hook := test.NewNullLogger()
	clock := func() time.Time { return june1 }
	svc := booking.NewService(m, generic.BookingSettings{
		MinNights: 1, MaxNights: 30, BreakfastPrice: generic.NewMoney(15),
	},
		booking.WithClock(clock),
		booking.WithAuditLog(m),
		booking.WithLogger(logger),
	)
	tokens := auth.NewProvider("test-secret-at-least-16", time.Hour).WithClock(clock)

	h := api.NewHandler(svc, m, tokens, logger)
	h.DevMode = true
	return &fixture{
		store:   m,
		handler: h,
		router:  api.NewRouter(h, api.RouterOptions{}),
		tokens:  tokens,
		logs:    hook,
	}
}

func (f *fixture) token(t *testing.T, guest generic.GuestID) string {
	t.Helper()
	tok, err := f.tokens.Issue(guest, "")
	require.NoError(t, err)
	return tok
}

func (f *fixture) seed(t *testing.T, cabin generic.CabinID, guest generic.GuestID, from, to string, status generic.BookingStatus) generic.Booking {
	t.Helper()
	b, err := f.store.InsertBooking(context.Background(), generic.NewBooking{
		CabinID:   cabin,
		GuestID:   guest,
		Period:    generic.NewPeriod(generic.MustParseDay(from), generic.MustParseDay(to)),
		Status:    status,
		NumGuests: 2,
		Payments:  generic.ZeroPayments(),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type rangeDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// =============================================================================
// AVAILABILITY
// =============================================================================

func TestUnavailableDates_TwoMonths(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 1, ana, "2024-06-10", "2024-06-14", generic.StatusConfirmed)
	f.seed(t, 1, ben, "2024-06-29", "2024-07-03", generic.StatusPending)
	f.seed(t, 1, ben, "2024-06-20", "2024-06-22", generic.StatusCanceled)
	f.seed(t, 1, ana, "2024-08-05", "2024-08-09", generic.StatusConfirmed)
	f.seed(t, 2, ana, "2024-06-10", "2024-06-14", generic.StatusConfirmed)

	rec := f.do(t, http.MethodGet, "/api/bookings/unavailable-dates?cabinId=1&date=2024-06-15", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]rangeDTO](t, rec)
	assert.Equal(t, []rangeDTO{
		{From: "2024-06-11", To: "2024-06-13"},
		{From: "2024-06-30", To: "2024-07-02"},
	}, got, "month-spanning stay reported once, canceled and August stays left out")
}

func TestUnavailableDates_EmptyIsArray(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/bookings/unavailable-dates?cabinId=1&date=2024-06-01", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUnavailableDates_BadParams(t *testing.T) {
	f := newFixture(t)
	for _, q := range []string{
		"",
		"?date=2024-06-01",
		"?cabinId=abc&date=2024-06-01",
		"?cabinId=-1&date=2024-06-01",
		"?cabinId=1",
		"?cabinId=1&date=June",
	} {
		t.Run(q, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/api/bookings/unavailable-dates"+q, nil, "")

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid or missing cabinId or date", decode[api.ErrorResponse](t, rec).Error)
		})
	}
}

func TestListCabins_WithNextWindow(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 1, ana, "2024-06-01", "2024-06-05", generic.StatusConfirmed)

	rec := f.do(t, http.MethodGet, "/api/cabins", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]booking.CabinAvailability](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-06-05", got[0].NextAvailable.From.String())
	assert.Nil(t, got[0].NextAvailable.To)
	assert.Equal(t, "2024-06-01", got[1].NextAvailable.From.String())
}

func TestListCabins_FilterByStay(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 1, ana, "2024-06-10", "2024-06-14", generic.StatusConfirmed)

	t.Run("overlapping nights exclude the cabin", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/cabins?from=2024-06-12&to=2024-06-16", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[[]booking.CabinAvailability](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, generic.CabinID(2), got[0].ID)
	})

	t.Run("turnover day keeps the cabin", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/cabins?from=2024-06-14&to=2024-06-16", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]booking.CabinAvailability](t, rec), 2)
	})

	t.Run("half a range is rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/cabins?from=2024-06-14", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetCabin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/cabins/2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "002", decode[booking.CabinAvailability](t, rec).Name)

	rec = f.do(t, http.MethodGet, "/api/cabins/99", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[api.ErrorResponse](t, rec).Code)

	rec = f.do(t, http.MethodGet, "/api/cabins/0", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNextAvailable(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 1, ana, "2024-06-10", "2024-06-14", generic.StatusConfirmed)
	f.seed(t, 1, ben, "2024-06-15", "2024-06-20", generic.StatusConfirmed)

	t.Run("gap before the first stay", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/cabins/1/next-available", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"from":"2024-06-01","to":"2024-06-10"}`, rec.Body.String())
	})

	t.Run("one-day gap is skipped", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/cabins/1/next-available?date=2024-06-11", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"from":"2024-06-20"}`, rec.Body.String())
	})

	t.Run("unknown cabin", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/cabins/42/next-available", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// =============================================================================
// QUOTE
// =============================================================================

func TestQuote(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/bookings/quote", map[string]any{
		"cabinId":     1,
		"startDate":   "2024-06-10",
		"endDate":     "2024-06-14",
		"guests":      map[string]int{"adults": 2, "children": 1},
		"isBreakfast": true,
	}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[api.QuoteResponse](t, rec)
	require.True(t, got.Computable)
	assert.Equal(t, 4, got.Quote.Nights)
	assert.Equal(t, "360.00", got.Quote.CabinAmount.String())
	assert.Equal(t, "180.00", got.Quote.BreakfastAmount.String())
	assert.Equal(t, "540.00", got.Quote.Total.String())
}

func TestQuote_MissingDatesNotComputable(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/bookings/quote", map[string]any{
		"cabinId":   1,
		"startDate": "2024-06-10",
	}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"computable":false}`, rec.Body.String())
}

// =============================================================================
// CREATE / CANCEL
// =============================================================================

func createBody(start, end string, adults int) map[string]any {
	return map[string]any{
		"cabinId":     1,
		"startDate":   start,
		"endDate":     end,
		"guests":      map[string]int{"adults": adults, "children": 0},
		"isBreakfast": false,
		"totalPrice":  "1.00",
	}
}

func TestCreateBooking_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/bookings", createBody("2024-06-10", "2024-06-14", 2), f.token(t, ana))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[generic.BookingDetails](t, rec)
	assert.Equal(t, generic.StatusPending, got.Status)
	assert.Equal(t, ana, got.GuestID)
	assert.Equal(t, "360.00", got.TotalPrice.String(), "server price, not the client's")
	assert.Equal(t, "Ana", got.Guest.FullName)

	// Dates are now blocked.
	rec = f.do(t, http.MethodGet, "/api/bookings/unavailable-dates?cabinId=1&date=2024-06-01", nil, "")
	assert.Equal(t, []rangeDTO{{From: "2024-06-11", To: "2024-06-13"}}, decode[[]rangeDTO](t, rec))
}

func TestCreateBooking_Errors(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 1, ben, "2024-06-10", "2024-06-14", generic.StatusConfirmed)

	tests := []struct {
		name   string
		body   any
		token  string
		status int
		code   string
	}{
		{"no session", createBody("2024-06-20", "2024-06-22", 2), "", http.StatusUnauthorized, "unauthenticated"},
		{"overlap", createBody("2024-06-12", "2024-06-16", 2), f.token(t, ana), http.StatusConflict, "conflict"},
		{"too many guests", createBody("2024-06-20", "2024-06-22", 5), f.token(t, ana), http.StatusBadRequest, "validation_error"},
		{"no adults", createBody("2024-06-20", "2024-06-22", 0), f.token(t, ana), http.StatusBadRequest, "validation_error"},
		{"end before start", createBody("2024-06-22", "2024-06-20", 2), f.token(t, ana), http.StatusBadRequest, "validation_error"},
		{"bad date", createBody("tomorrow", "2024-06-20", 2), f.token(t, ana), http.StatusBadRequest, "validation_error"},
		{"in the past", createBody("2024-05-20", "2024-05-22", 2), f.token(t, ana), http.StatusBadRequest, "validation_error"},
		{"missing dates", map[string]any{"cabinId": 1, "guests": map[string]int{"adults": 1}}, f.token(t, ana), http.StatusBadRequest, "validation_error"},
		{"unknown cabin", map[string]any{
			"cabinId": 9, "startDate": "2024-06-20", "endDate": "2024-06-22",
			"guests": map[string]int{"adults": 1},
		}, f.token(t, ana), http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/bookings", tt.body, tt.token)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decode[api.ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestCreateBooking_TurnoverDayAllowed(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 1, ben, "2024-06-10", "2024-06-14", generic.StatusConfirmed)

	rec := f.do(t, http.MethodPost, "/api/bookings", createBody("2024-06-14", "2024-06-16", 2), f.token(t, ana))

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateBooking_InvalidTokenIsAnonymous(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/bookings", createBody("2024-06-10", "2024-06-12", 2), "not-a-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	mine := f.seed(t, 1, ana, "2024-06-10", "2024-06-14", generic.StatusConfirmed)
	done := f.seed(t, 1, ana, "2024-05-01", "2024-05-03", generic.StatusCheckedOut)
	path := func(b generic.Booking) string { return "/api/bookings/" + b.ID.String() + "/cancel" }

	t.Run("not the owner", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, path(mine), nil, f.token(t, ben))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("terminal status", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, path(done), nil, f.token(t, ana))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown booking", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/bookings/999/cancel", nil, f.token(t, ana))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner cancels and the dates free up", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, path(mine), nil, f.token(t, ana))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":`+mine.ID.String()+`,"status":"canceled"}`, rec.Body.String())

		rec = f.do(t, http.MethodGet, "/api/bookings/unavailable-dates?cabinId=1&date=2024-06-01", nil, "")
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("second cancel is rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, path(mine), nil, f.token(t, ana))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

// =============================================================================
// RESERVATIONS / TOKENS / HEALTH
// =============================================================================

func TestMyBookings_Grouped(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 1, ana, "2024-06-20", "2024-06-22", generic.StatusPending)
	f.seed(t, 1, ana, "2024-06-10", "2024-06-14", generic.StatusConfirmed)
	f.seed(t, 2, ana, "2024-05-01", "2024-05-03", generic.StatusCheckedOut)
	f.seed(t, 2, ana, "2024-07-01", "2024-07-03", generic.StatusCanceled)
	f.seed(t, 2, ben, "2024-06-10", "2024-06-14", generic.StatusConfirmed)

	rec := f.do(t, http.MethodGet, "/api/me/bookings?sort=desc", nil, f.token(t, ana))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[booking.GroupedBookings](t, rec)
	require.Len(t, got.Upcoming, 2)
	assert.Equal(t, "2024-06-20", got.Upcoming[0].Period.Start.String())
	assert.Len(t, got.Past, 1)
	assert.Len(t, got.Canceled, 1)
}

func TestMyBookings_Errors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/me/bookings", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/me/bookings?sort=price", nil, f.token(t, ana)).Code)
}

func TestIssueToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": "ANA@example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.TokenResponse](t, rec)
	assert.Equal(t, ana, resp.GuestID)

	sess, err := f.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, ana, sess.UserID)

	assert.Equal(t, http.StatusNotFound,
		f.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": "nobody@example.com"}, "").Code)
	assert.Equal(t, http.StatusBadRequest,
		f.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": "not-an-email"}, "").Code)
}

func TestIssueToken_DisabledOutsideDevMode(t *testing.T) {
	f := newFixture(t)
	f.handler.DevMode = false

	rec := f.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": "ana@example.com"}, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRequestLogger_LogsClientErrorsAtWarn(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodGet, "/api/cabins/99", nil, "")

	entry := f.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, "warning", entry.Level.String())
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
}

// =============================================================================
// STORE FAILURES
// =============================================================================

// brokenStore serves reference data from memory but fails every booking read
// and every locked write with err.
type brokenStore struct {
	*store.Memory
	err error
}

func (s *brokenStore) ActiveBookings(context.Context, generic.CabinID, generic.Period) ([]generic.Booking, error) {
	return nil, s.err
}

func (s *brokenStore) WithCabinLock(context.Context, generic.CabinID, func(generic.BookingStore) error) error {
	return s.err
}

// withBrokenStore rebuilds the fixture's service and router on top of a
// store that fails with err.
func (f *fixture) withBrokenStore(t *testing.T, err error) *fixture {
	t.Helper()
	broken := &brokenStore{Memory: f.store, err: err}
	logger, hook := test.NewNullLogger()
	svc := booking.NewService(broken, generic.BookingSettings{
		MinNights: 1, MaxNights: 30, BreakfastPrice: generic.NewMoney(15),
	},
		booking.WithClock(func() time.Time { return june1 }),
		booking.WithLogger(logger),
	)
	h := api.NewHandler(svc, broken, f.tokens, logger)
	f.handler = h
	f.router = api.NewRouter(h, api.RouterOptions{})
	f.logs = hook
	return f
}

const driverDetail = "dial tcp 10.0.0.5:5432: connect: connection refused"

func TestUnavailableDates_StoreFailure(t *testing.T) {
	// GIVEN: The store cannot read bookings
	// WHEN: The calendar is requested
	// THEN: 500 with a fixed message; the driver error is only logged

	f := newFixture(t).withBrokenStore(t, &generic.PersistenceError{
		Op: "active bookings", Transient: false, Err: errors.New(driverDetail),
	})

	rec := f.do(t, http.MethodGet, "/api/bookings/unavailable-dates?cabinId=1&date=2024-06-01", nil, "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "Failed to fetch bookings dates", resp.Error)
	assert.Equal(t, "internal", resp.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.NotContains(t, rec.Body.String(), "active bookings")

	var logged bool
	for _, e := range f.logs.AllEntries() {
		if e.Message == "request failed" {
			logged = true
			assert.Equal(t, "error", e.Level.String())
			assert.Contains(t, e.Data["error"].(error).Error(), driverDetail)
			assert.Equal(t, false, e.Data["retryable"])
		}
	}
	assert.True(t, logged, "failure must be logged")
}

func TestCreateBooking_TransientStoreFailureIs503(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, ana)
	f.withBrokenStore(t, &generic.PersistenceError{
		Op: "insert booking", Transient: true, Err: errors.New(driverDetail),
	})

	rec := f.do(t, http.MethodPost, "/api/bookings", createBody("2024-06-10", "2024-06-14", 2), tok)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "unavailable", resp.Code)
	assert.Equal(t, generic.UserMessage(&generic.PersistenceError{}), resp.Error)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")

	last := f.logs.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "request", last.Message)
	assert.Equal(t, "error", last.Level.String())
	assert.Equal(t, http.StatusServiceUnavailable, last.Data["status"])
}

func TestCreateBooking_PermanentStoreFailureIs500(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, ana)
	f.withBrokenStore(t, &generic.PersistenceError{
		Op: "insert booking", Transient: false, Err: errors.New(driverDetail),
	})

	rec := f.do(t, http.MethodPost, "/api/bookings", createBody("2024-06-10", "2024-06-14", 2), tok)

	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	assert.Equal(t, "internal", decode[api.ErrorResponse](t, rec).Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}
