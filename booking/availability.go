package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/cabin-engine/generic"
)

// NextAvailableHorizon bounds how far ahead NextAvailable reads bookings.
const NextAvailableHorizon = 24 // months

// AvailabilityCache stores computed month ranges per cabin. Reads are
// advisory, so a stale or failing cache never blocks a booking.
type AvailabilityCache interface {
	GetRanges(ctx context.Context, cabinID generic.CabinID, month generic.Period) ([]generic.Period, bool, error)
	SetRanges(ctx context.Context, cabinID generic.CabinID, month generic.Period, ranges []generic.Period) error
	Invalidate(ctx context.Context, cabinID generic.CabinID) error
}

// =============================================================================
// AVAILABILITY - Store-backed calendar queries
// =============================================================================

// Availability answers "which days are taken" and "when is the cabin free
// next" from the store, with an optional read-through cache for months.
//
// Each cabin has a generation bumped by Invalidate. A read only fills the
// cache if the generation it saw before reading the store is still current,
// and the check and the fill happen under the same lock as Invalidate, so a
// read racing a write never caches ranges from before that write.
type Availability struct {
	store generic.BookingStore
	cache AvailabilityCache
	log   logrus.FieldLogger

	mu          sync.Mutex
	generations map[generic.CabinID]uint64
}

func NewAvailability(store generic.BookingStore, cache AvailabilityCache, log logrus.FieldLogger) *Availability {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Availability{
		store:       store,
		cache:       cache,
		log:         log,
		generations: make(map[generic.CabinID]uint64),
	}
}

func (a *Availability) generation(cabinID generic.CabinID) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generations[cabinID]
}

// UnavailableRanges returns the blocked ranges of cabinID for month.
func (a *Availability) UnavailableRanges(ctx context.Context, cabinID generic.CabinID, month generic.Period) ([]generic.Period, error) {
	if a.cache != nil {
		ranges, hit, err := a.cache.GetRanges(ctx, cabinID, month)
		if err != nil {
			a.log.WithError(err).WithField("cabin_id", cabinID).Warn("availability cache read failed")
		} else if hit {
			return ranges, nil
		}
	}

	gen := a.generation(cabinID)
	bookings, err := a.store.ActiveBookings(ctx, cabinID, month)
	if err != nil {
		return nil, err
	}
	ranges := generic.UnavailableRangesForMonth(periodsOf(bookings), month)

	if a.cache != nil {
		a.fill(ctx, cabinID, month, ranges, gen)
	}
	return ranges, nil
}

// fill stores ranges read at generation gen, unless the cabin was
// invalidated since.
func (a *Availability) fill(ctx context.Context, cabinID generic.CabinID, month generic.Period, ranges []generic.Period, gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generations[cabinID] != gen {
		a.log.WithField("cabin_id", cabinID).Debug("availability changed during read, not caching")
		return
	}
	if err := a.cache.SetRanges(ctx, cabinID, month, ranges); err != nil {
		a.log.WithError(err).WithField("cabin_id", cabinID).Warn("availability cache write failed")
	}
}

// UnavailableRangesFrom returns the blocked ranges for the month containing
// date and the months-1 months after it, ascending and without duplicates
// (a stay spanning two months is reported once).
func (a *Availability) UnavailableRangesFrom(ctx context.Context, cabinID generic.CabinID, date generic.Day, months int) ([]generic.Period, error) {
	if months < 1 {
		months = 1
	}
	seen := make(map[generic.Period]bool)
	result := make([]generic.Period, 0)
	for i := 0; i < months; i++ {
		month := generic.StartOfMonth(date.Year(), date.Month()+time.Month(i))
		ranges, err := a.UnavailableRanges(ctx, cabinID, month)
		if err != nil {
			return nil, err
		}
		for _, r := range ranges {
			if seen[r] {
				continue
			}
			seen[r] = true
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

// NextAvailable returns the first usable window of cabinID from ref.
func (a *Availability) NextAvailable(ctx context.Context, cabinID generic.CabinID, ref generic.Day) (generic.Window, error) {
	window := generic.NewPeriod(ref, ref.AddMonths(NextAvailableHorizon))
	bookings, err := a.store.ActiveBookings(ctx, cabinID, window)
	if err != nil {
		return generic.Window{}, err
	}
	return generic.NextAvailableWindow(periodsOf(bookings), ref), nil
}

// Invalidate drops cached ranges of the cabin after a create or cancel.
func (a *Availability) Invalidate(ctx context.Context, cabinID generic.CabinID) {
	if a.cache == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generations[cabinID]++
	if err := a.cache.Invalidate(ctx, cabinID); err != nil {
		a.log.WithError(err).WithField("cabin_id", cabinID).Error("availability cache invalidation failed")
	}
}

func periodsOf(bookings []generic.Booking) []generic.Period {
	periods := make([]generic.Period, len(bookings))
	for i, b := range bookings {
		periods[i] = b.Period
	}
	return periods
}
