package booking

import (
	"context"
	"errors"

	"github.com/warp/cabin-engine/generic"
)

// =============================================================================
// CONFLICT VALIDATOR - Gate before persisting a booking
// =============================================================================

// ConflictValidator checks a proposed stay against the cabin's active
// bookings. It is the fast pre-check; the store's overlap constraint is the
// authoritative one.
type ConflictValidator struct {
	store generic.BookingStore
}

func NewConflictValidator(store generic.BookingStore) *ConflictValidator {
	return &ConflictValidator{store: store}
}

// IsDateRangeAvailable reports whether period can be booked in cabinID.
func (v *ConflictValidator) IsDateRangeAvailable(ctx context.Context, cabinID generic.CabinID, period generic.Period) (bool, error) {
	err := v.AssertAvailable(ctx, cabinID, period)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, generic.ErrBookingConflict) {
		return false, nil
	}
	return false, err
}

// AssertAvailable returns *generic.ConflictError if period overlaps an
// active booking of cabinID.
//
// Bookings are fetched for every month the request spans, then each is
// compared with inclusive overlap against its blocked range [start+1, end-1].
// That is exactly "the nights intersect": a stay may begin on another stay's
// checkout day and end on the next stay's check-in day.
func (v *ConflictValidator) AssertAvailable(ctx context.Context, cabinID generic.CabinID, period generic.Period) error {
	return assertAvailable(ctx, v.store, cabinID, period)
}

func assertAvailable(ctx context.Context, store generic.BookingStore, cabinID generic.CabinID, period generic.Period) error {
	if !period.Start.Before(period.End) {
		return &generic.ValidationError{Field: "endDate", Message: "The end date must be after the start date."}
	}
	active, err := store.ActiveBookings(ctx, cabinID, period.SpanningMonths())
	if err != nil {
		return err
	}
	if existing := FindConflict(active, period); existing != nil {
		p := existing.Period
		return &generic.ConflictError{CabinID: cabinID, Requested: period, Existing: &p}
	}
	return nil
}

// FindConflict returns the first active booking whose nights intersect
// proposed, or nil.
func FindConflict(bookings []generic.Booking, proposed generic.Period) *generic.Booking {
	for i := range bookings {
		b := &bookings[i]
		if !b.Status.IsActive() {
			continue
		}
		if proposed.Overlaps(b.Period.Blocked(), true) {
			return b
		}
	}
	return nil
}
