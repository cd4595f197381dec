/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos and manual testing. Every date is relative to the
	service clock's today, so a scenario looks the same whenever it is
	loaded.

AVAILABLE SCENARIOS:

	empty-resort:  Cabins and guests, no bookings
	turnover-week: Back-to-back stays sharing a checkout/check-in day
	busy-season:   Several cabins with active, past, canceled stays and
	               gaps too short to book

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Save cabins and guests
 3. Insert bookings directly with server-computed prices
 4. Drop cached availability of every cabin

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "turnover-week"}

NOTE:

	Scenarios reset the store. They are only served in dev mode.

SEE ALSO:
  - handlers.go: Handler and DevMode
  - booking/pricing.go: QuoteForCabin
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/cabin-engine/booking"
	"github.com/warp/cabin-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty-resort",
		Name:        "Empty Resort",
		Description: "Four cabins and three guests, every night free",
	},
	{
		ID:          "turnover-week",
		Name:        "Turnover Week",
		Description: "One guest checks out the morning the next one checks in",
	},
	{
		ID:          "busy-season",
		Name:        "Busy Season",
		Description: "Mixed statuses, a one-night stay and gaps too short to book",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a demo scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if !h.DevMode {
		http.NotFound(w, r)
		return
	}
	var req LoadScenarioRequest
	if err := decodeRequest(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "empty-resort":
		load = h.loadEmptyResort
	case "turnover-week":
		load = h.loadTurnoverWeek
	case "busy-season":
		load = h.loadBusySeason
	default:
		h.fail(w, r, &generic.ValidationError{Field: "scenario_id", Message: fmt.Sprintf("Unknown scenario: %s", req.ScenarioID)})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	for _, c := range demoCabins {
		h.Service.Availability().Invalidate(ctx, c.ID)
	}
	h.currentScenario = req.ScenarioID
	h.Log.WithField("scenario", req.ScenarioID).Info("scenario loaded")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "scenario": req.ScenarioID})
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

var demoCabins = []generic.Cabin{
	{
		ID: 1, Name: "001", Description: "Cozy cabin for two at the lake shore",
		MaxGuests: 2, RegularPrice: generic.NewMoney(250), Discount: generic.ZeroMoney(),
		Images:   []string{"cabin-001.jpg"},
		Location: generic.Location{City: "Hallstatt", Country: "Austria", Address: "Seestrasse 1"},
	},
	{
		ID: 2, Name: "002", Description: "Family cabin with a wood stove",
		MaxGuests: 4, RegularPrice: generic.NewMoney(350), Discount: generic.NewMoney(25),
		Images:   []string{"cabin-002.jpg"},
		Location: generic.Location{City: "Hallstatt", Country: "Austria", Address: "Seestrasse 3"},
	},
	{
		ID: 3, Name: "003", Description: "Forest cabin for small groups",
		MaxGuests: 6, RegularPrice: generic.NewMoney(300), Discount: generic.ZeroMoney(),
		Images:   []string{"cabin-003.jpg"},
		Location: generic.Location{City: "Gosau", Country: "Austria", Address: "Waldweg 12"},
	},
	{
		ID: 4, Name: "004", Description: "Luxury chalet with sauna",
		MaxGuests: 8, RegularPrice: generic.NewMoney(500), Discount: generic.NewMoney(50),
		Images:   []string{"cabin-004.jpg", "cabin-004-sauna.jpg"},
		Location: generic.Location{City: "Gosau", Country: "Austria", Address: "Waldweg 20"},
	},
}

var demoGuests = []generic.Guest{
	{ID: 1, FullName: "Jonas Schmidt", Email: "jonas@example.com", Nationality: "Germany"},
	{ID: 2, FullName: "Maria Rossi", Email: "maria@example.com", Nationality: "Italy"},
	{ID: 3, FullName: "Sam Lee", Email: "sam@example.com", Nationality: "Canada"},
}

func (h *Handler) seedReferenceData(ctx context.Context) error {
	for _, c := range demoCabins {
		if err := h.Store.SaveCabin(ctx, c); err != nil {
			return fmt.Errorf("cabin %d: %w", c.ID, err)
		}
	}
	for _, g := range demoGuests {
		if err := h.Store.SaveGuest(ctx, g); err != nil {
			return fmt.Errorf("guest %d: %w", g.ID, err)
		}
	}
	return nil
}

// stay describes one seeded booking. Offsets are days from today.
type stay struct {
	cabin       generic.CabinID
	guest       generic.GuestID
	from, to    int
	status      generic.BookingStatus
	guests      int
	isBreakfast bool
}

func (h *Handler) seedStays(ctx context.Context, stays []stay) error {
	today := h.Service.Today()
	settings := h.Service.Settings()
	for _, s := range stays {
		cabin, err := h.Store.GetCabin(ctx, s.cabin)
		if err != nil {
			return err
		}
		period := generic.NewPeriod(today.AddDays(s.from), today.AddDays(s.to))
		quote, ok := booking.QuoteForCabin(cabin, settings, period, s.guests, s.isBreakfast)
		if !ok {
			return fmt.Errorf("cabin %d: stay %s cannot be priced", s.cabin, period)
		}
		_, err = h.Store.InsertBooking(ctx, generic.NewBooking{
			CabinID:         s.cabin,
			GuestID:         s.guest,
			Period:          period,
			Status:          s.status,
			NumGuests:       s.guests,
			IsBreakfast:     s.isBreakfast,
			CabinPrice:      quote.NightlyPrice,
			Discount:        quote.Discount,
			BreakfastPrice:  quote.BreakfastPrice,
			CabinAmount:     quote.CabinAmount,
			BreakfastAmount: quote.BreakfastAmount,
			TotalPrice:      quote.Total,
			Payments:        generic.ZeroPayments(),
		})
		if err != nil {
			return fmt.Errorf("cabin %d: stay %s: %w", s.cabin, period, err)
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadEmptyResort(ctx context.Context) error {
	return h.seedReferenceData(ctx)
}

// loadTurnoverWeek books cabin 001 for two stays that share day +6: the
// first guest checks out that morning and the second checks in.
func (h *Handler) loadTurnoverWeek(ctx context.Context) error {
	if err := h.seedReferenceData(ctx); err != nil {
		return err
	}
	return h.seedStays(ctx, []stay{
		{cabin: 1, guest: 1, from: 3, to: 6, status: generic.StatusConfirmed, guests: 2, isBreakfast: true},
		{cabin: 1, guest: 2, from: 6, to: 9, status: generic.StatusPending, guests: 1},
	})
}

// loadBusySeason fills several cabins:
//   - cabin 001: checked in now, then a one-day gap (unusable), then booked
//   - cabin 002: a canceled stay that no longer blocks, and a one-night stay
//   - cabin 003: past checked-out stay only
//   - cabin 004: booked solid for the next two weeks
func (h *Handler) loadBusySeason(ctx context.Context) error {
	if err := h.seedReferenceData(ctx); err != nil {
		return err
	}
	return h.seedStays(ctx, []stay{
		{cabin: 1, guest: 1, from: -2, to: 3, status: generic.StatusCheckedIn, guests: 2},
		{cabin: 1, guest: 2, from: 4, to: 8, status: generic.StatusConfirmed, guests: 2, isBreakfast: true},

		{cabin: 2, guest: 3, from: 5, to: 10, status: generic.StatusCanceled, guests: 3},
		{cabin: 2, guest: 1, from: 12, to: 13, status: generic.StatusPending, guests: 4, isBreakfast: true},

		{cabin: 3, guest: 2, from: -20, to: -14, status: generic.StatusCheckedOut, guests: 5},

		{cabin: 4, guest: 3, from: 0, to: 7, status: generic.StatusConfirmed, guests: 6},
		{cabin: 4, guest: 1, from: 7, to: 14, status: generic.StatusPending, guests: 8, isBreakfast: true},

		{cabin: 3, guest: 1, from: -10, to: -7, status: generic.StatusCheckedOut, guests: 2},
		{cabin: 2, guest: 2, from: -30, to: -25, status: generic.StatusCanceled, guests: 2},
	})
}
