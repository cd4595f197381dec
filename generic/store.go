/*
store.go - Persistence interfaces for bookings, cabins and guests

PURPOSE:
  Defines the interface between the booking logic and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory storage.

KEY INTERFACES:
  BookingStore: Active-booking queries, insert, guarded status update
  CabinStore:   Cabin and guest reference data
  TxStore:      Per-cabin critical section around check-then-insert
  AuditLog:     Append-only record of who did what when

NO-DELETE CONTRACT:
  Bookings are never deleted. Cancellation is a status change.

NO-DOUBLE-BOOKING CONTRACT:
  InsertBooking MUST reject a booking whose nights intersect an active
  booking of the same cabin with a *ConflictError, even when the caller
  skipped the availability check. This is the authoritative defense against
  two concurrent requests that both passed the check.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite with an overlap trigger
  - store/postgres/postgres.go: PostgreSQL with an exclusion constraint
  - generic/store/memory.go: In-memory for testing

EXAMPLE:
  err := store.WithCabinLock(ctx, cabinID, func(s BookingStore) error {
      active, err := s.ActiveBookings(ctx, cabinID, window)
      ...
      _, err = s.InsertBooking(ctx, nb)
      return err
  })

SEE ALSO:
  - booking/service.go: Orchestrator using these interfaces
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// BOOKING STORE
// =============================================================================

type BookingStore interface {
	// ActiveBookings returns the cabin's pending, confirmed and checked-in
	// bookings whose stay intersects window, ordered by start date.
	ActiveBookings(ctx context.Context, cabinID CabinID, window Period) ([]Booking, error)

	// InsertBooking persists a new booking. Returns *ConflictError when the
	// nights overlap an active booking of the same cabin.
	InsertBooking(ctx context.Context, nb NewBooking) (Booking, error)

	// UpdateBookingStatus moves a booking owned by owner from one of the
	// expected statuses to status. Returns *NotFoundError when the booking
	// doesn't exist, *AuthorizationError when owner doesn't own it and
	// *InvalidTransitionError when its current status is not expected.
	UpdateBookingStatus(ctx context.Context, id BookingID, status BookingStatus, owner GuestID, expected ...BookingStatus) error

	GetBooking(ctx context.Context, id BookingID) (Booking, error)
	GetBookingDetails(ctx context.Context, id BookingID) (BookingDetails, error)

	// BookingsByGuest returns every booking of a guest, in any status.
	BookingsByGuest(ctx context.Context, guestID GuestID) ([]BookingDetails, error)
}

// CabinStore serves cabin and guest reference data.
type CabinStore interface {
	GetCabin(ctx context.Context, id CabinID) (Cabin, error)
	ListCabins(ctx context.Context) ([]Cabin, error)
	GetGuest(ctx context.Context, id GuestID) (Guest, error)
	GetGuestByEmail(ctx context.Context, email string) (Guest, error)
}

// =============================================================================
// TRANSACTIONAL STORE - Serialize check-then-insert per cabin
// =============================================================================

// TxStore wraps BookingStore with a per-cabin critical section.
type TxStore interface {
	BookingStore

	// WithCabinLock executes fn while holding an exclusive lock on the
	// cabin's calendar. If fn returns error, writes made through the
	// provided store are rolled back.
	WithCabinLock(ctx context.Context, cabinID CabinID, fn func(BookingStore) error) error
}

// Store is everything a full backend provides.
type Store interface {
	TxStore
	CabinStore
	AuditLog
	Close() error
}

// =============================================================================
// AUDIT LOG - Separate from bookings, tracks who did what when
// =============================================================================

// AuditEntry records who did what when.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   GuestID        `json:"actor_id"`
	Action    AuditAction    `json:"action"`
	BookingID BookingID      `json:"booking_id"`
	CabinID   CabinID        `json:"cabin_id"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type AuditAction string

const (
	AuditBookingCreated  AuditAction = "booking_created"
	AuditBookingCanceled AuditAction = "booking_canceled"
	AuditPriceMismatch   AuditAction = "price_mismatch"
)

// AuditLog stores audit entries. Append-only.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
	Query(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

type AuditFilter struct {
	BookingID *BookingID
	CabinID   *CabinID
	ActorID   *GuestID
	Actions   []AuditAction
}

// Matches reports whether the entry passes every set filter field.
func (f AuditFilter) Matches(e AuditEntry) bool {
	if f.BookingID != nil && *f.BookingID != e.BookingID {
		return false
	}
	if f.CabinID != nil && *f.CabinID != e.CabinID {
		return false
	}
	if f.ActorID != nil && *f.ActorID != e.ActorID {
		return false
	}
	if len(f.Actions) > 0 {
		for _, a := range f.Actions {
			if a == e.Action {
				return true
			}
		}
		return false
	}
	return true
}
