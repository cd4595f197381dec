// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warp/cabin-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	bookings map[generic.BookingID]generic.Booking
	cabins   map[generic.CabinID]generic.Cabin
	guests   map[generic.GuestID]generic.Guest
	audit    []generic.AuditEntry
	nextID   generic.BookingID

	locksMu    sync.Mutex
	cabinLocks map[generic.CabinID]*sync.Mutex

	now func() time.Time
}

var _ generic.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		bookings:   make(map[generic.BookingID]generic.Booking),
		cabins:     make(map[generic.CabinID]generic.Cabin),
		guests:     make(map[generic.GuestID]generic.Guest),
		cabinLocks: make(map[generic.CabinID]*sync.Mutex),
		now:        time.Now,
	}
}

func (m *Memory) Close() error { return nil }

// Reset drops every booking, cabin, guest and audit entry.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = make(map[generic.BookingID]generic.Booking)
	m.cabins = make(map[generic.CabinID]generic.Cabin)
	m.guests = make(map[generic.GuestID]generic.Guest)
	m.audit = nil
	m.nextID = 0
	return nil
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

func (m *Memory) SaveCabin(_ context.Context, c generic.Cabin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cabins[c.ID] = c
	return nil
}

func (m *Memory) SaveGuest(_ context.Context, g generic.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guests[g.ID] = g
	return nil
}

func (m *Memory) GetCabin(_ context.Context, id generic.CabinID) (generic.Cabin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cabins[id]
	if !ok {
		return generic.Cabin{}, &generic.NotFoundError{Kind: "cabin", ID: id.String()}
	}
	return c, nil
}

func (m *Memory) ListCabins(_ context.Context) ([]generic.Cabin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]generic.Cabin, 0, len(m.cabins))
	for _, c := range m.cabins {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetGuest(_ context.Context, id generic.GuestID) (generic.Guest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.guests[id]
	if !ok {
		return generic.Guest{}, &generic.NotFoundError{Kind: "guest", ID: id.String()}
	}
	return g, nil
}

func (m *Memory) GetGuestByEmail(_ context.Context, email string) (generic.Guest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.guests {
		if strings.EqualFold(g.Email, email) {
			return g, nil
		}
	}
	return generic.Guest{}, &generic.NotFoundError{Kind: "guest", ID: email}
}

// =============================================================================
// BOOKINGS
// =============================================================================

func (m *Memory) ActiveBookings(_ context.Context, cabinID generic.CabinID, window generic.Period) ([]generic.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeLocked(cabinID, window), nil
}

func (m *Memory) activeLocked(cabinID generic.CabinID, window generic.Period) []generic.Booking {
	var result []generic.Booking
	for _, b := range m.bookings {
		if b.CabinID != cabinID || !b.Status.IsActive() {
			continue
		}
		if !b.Period.Intersects(window) {
			continue
		}
		result = append(result, b)
	}
	sortByStart(result)
	return result
}

// InsertBooking enforces the no-overlap invariant under the write lock, so
// two inserts racing for the same nights cannot both succeed.
func (m *Memory) InsertBooking(_ context.Context, nb generic.NewBooking) (generic.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(nb)
}

func (m *Memory) insertLocked(nb generic.NewBooking) (generic.Booking, error) {
	if !nb.Period.Start.Before(nb.Period.End) {
		return generic.Booking{}, &generic.ValidationError{Field: "endDate", Message: "end date must be after start date"}
	}
	if _, ok := m.cabins[nb.CabinID]; !ok {
		return generic.Booking{}, &generic.NotFoundError{Kind: "cabin", ID: nb.CabinID.String()}
	}
	if nb.Status.IsActive() {
		for _, existing := range m.activeLocked(nb.CabinID, nb.Period) {
			if nb.Period.Overlaps(existing.Period, false) {
				p := existing.Period
				return generic.Booking{}, &generic.ConflictError{CabinID: nb.CabinID, Requested: nb.Period, Existing: &p}
			}
		}
	}

	m.nextID++
	b := nb.ToBooking(m.nextID, m.now().UTC())
	m.bookings[b.ID] = b
	return b, nil
}

func (m *Memory) UpdateBookingStatus(_ context.Context, id generic.BookingID, status generic.BookingStatus, owner generic.GuestID, expected ...generic.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return &generic.NotFoundError{Kind: "booking", ID: id.String()}
	}
	if b.GuestID != owner {
		return &generic.AuthorizationError{GuestID: owner, BookingID: id}
	}
	if len(expected) > 0 && !containsStatus(expected, b.Status) {
		return &generic.InvalidTransitionError{BookingID: id, From: b.Status, To: status}
	}
	b.Status = status
	m.bookings[id] = b
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id generic.BookingID) (generic.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return generic.Booking{}, &generic.NotFoundError{Kind: "booking", ID: id.String()}
	}
	return b, nil
}

func (m *Memory) GetBookingDetails(_ context.Context, id generic.BookingID) (generic.BookingDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return generic.BookingDetails{}, &generic.NotFoundError{Kind: "booking", ID: id.String()}
	}
	return m.detailsLocked(b), nil
}

func (m *Memory) BookingsByGuest(_ context.Context, guestID generic.GuestID) ([]generic.BookingDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var owned []generic.Booking
	for _, b := range m.bookings {
		if b.GuestID == guestID {
			owned = append(owned, b)
		}
	}
	sortByStart(owned)
	result := make([]generic.BookingDetails, len(owned))
	for i, b := range owned {
		result[i] = m.detailsLocked(b)
	}
	return result, nil
}

func (m *Memory) detailsLocked(b generic.Booking) generic.BookingDetails {
	return generic.BookingDetails{Booking: b, Cabin: m.cabins[b.CabinID], Guest: m.guests[b.GuestID]}
}

// =============================================================================
// CABIN LOCK
// =============================================================================

// WithCabinLock serializes fn against other callers locking the same cabin.
// Bookings inserted through the provided store are removed if fn fails.
func (m *Memory) WithCabinLock(ctx context.Context, cabinID generic.CabinID, fn func(generic.BookingStore) error) error {
	lock := m.cabinLock(cabinID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return &generic.PersistenceError{Op: "lock cabin", Transient: true, Err: err}
	}

	tx := &memoryTx{Memory: m}
	if err := fn(tx); err != nil {
		m.mu.Lock()
		for _, id := range tx.inserted {
			delete(m.bookings, id)
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) cabinLock(id generic.CabinID) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.cabinLocks[id]
	if !ok {
		l = &sync.Mutex{}
		m.cabinLocks[id] = l
	}
	return l
}

// memoryTx records inserts so WithCabinLock can undo them.
type memoryTx struct {
	*Memory
	inserted []generic.BookingID
}

func (t *memoryTx) InsertBooking(ctx context.Context, nb generic.NewBooking) (generic.Booking, error) {
	b, err := t.Memory.InsertBooking(ctx, nb)
	if err == nil {
		t.inserted = append(t.inserted, b.ID)
	}
	return b, err
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (m *Memory) Append(_ context.Context, entry generic.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

func (m *Memory) Query(_ context.Context, filter generic.AuditFilter) ([]generic.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []generic.AuditEntry
	for _, e := range m.audit {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}
	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func sortByStart(bookings []generic.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Period.Start.Equal(bookings[j].Period.Start) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].Period.Start.Before(bookings[j].Period.Start)
	})
}

func containsStatus(list []generic.BookingStatus, s generic.BookingStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
