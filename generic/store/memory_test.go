package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cabin-engine/generic"
	"github.com/warp/cabin-engine/generic/store"
)

func newMemory(t *testing.T) *store.Memory {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveCabin(ctx, generic.Cabin{ID: 1, Name: "001", MaxGuests: 4, RegularPrice: generic.NewMoney(100)}))
	require.NoError(t, m.SaveGuest(ctx, generic.Guest{ID: 10, FullName: "Ana", Email: "ana@example.com"}))
	require.NoError(t, m.SaveGuest(ctx, generic.Guest{ID: 11, FullName: "Ben", Email: "ben@example.com"}))
	return m
}

func newBooking(guest generic.GuestID, from, to string, status generic.BookingStatus) generic.NewBooking {
	return generic.NewBooking{
		CabinID:   1,
		GuestID:   guest,
		Period:    generic.NewPeriod(generic.MustParseDay(from), generic.MustParseDay(to)),
		Status:    status,
		NumGuests: 2,
		Payments:  generic.ZeroPayments(),
	}
}

func TestMemory_InsertRejectsOverlap(t *testing.T) {
	// GIVEN: A confirmed booking June 10-15
	// WHEN: Inserting June 14-16, then June 15-18
	// THEN: The first conflicts, the turnover booking succeeds

	m := newMemory(t)
	ctx := context.Background()

	_, err := m.InsertBooking(ctx, newBooking(10, "2024-06-10", "2024-06-15", generic.StatusConfirmed))
	require.NoError(t, err)

	_, err = m.InsertBooking(ctx, newBooking(11, "2024-06-14", "2024-06-16", generic.StatusPending))
	var conflict *generic.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.Existing)
	assert.Equal(t, "2024-06-10", conflict.Existing.Start.String())

	_, err = m.InsertBooking(ctx, newBooking(11, "2024-06-15", "2024-06-18", generic.StatusPending))
	assert.NoError(t, err)
}

func TestMemory_InactiveBookingsDoNotBlock(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	_, err := m.InsertBooking(ctx, newBooking(10, "2024-06-10", "2024-06-15", generic.StatusCanceled))
	require.NoError(t, err)
	_, err = m.InsertBooking(ctx, newBooking(10, "2024-06-10", "2024-06-15", generic.StatusCheckedOut))
	require.NoError(t, err)
	_, err = m.InsertBooking(ctx, newBooking(11, "2024-06-10", "2024-06-15", generic.StatusPending))
	require.NoError(t, err)

	active, err := m.ActiveBookings(ctx, 1, generic.StartOfMonth(2024, 6))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, generic.GuestID(11), active[0].GuestID)
}

func TestMemory_ActiveBookingsOrderedAndWindowed(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	for _, r := range [][2]string{{"2024-07-02", "2024-07-05"}, {"2024-06-20", "2024-06-25"}, {"2024-05-01", "2024-05-03"}} {
		_, err := m.InsertBooking(ctx, newBooking(10, r[0], r[1], generic.StatusConfirmed))
		require.NoError(t, err)
	}

	active, err := m.ActiveBookings(ctx, 1, generic.NewPeriod(generic.MustParseDay("2024-06-01"), generic.MustParseDay("2024-07-31")))
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "2024-06-20", active[0].Period.Start.String())
	assert.Equal(t, "2024-07-02", active[1].Period.Start.String())
}

func TestMemory_UpdateStatusGuards(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	b, err := m.InsertBooking(ctx, newBooking(10, "2024-06-10", "2024-06-15", generic.StatusPending))
	require.NoError(t, err)

	err = m.UpdateBookingStatus(ctx, b.ID, generic.StatusCanceled, 11, generic.StatusPending, generic.StatusConfirmed)
	assert.ErrorIs(t, err, generic.ErrAuthorization)

	err = m.UpdateBookingStatus(ctx, 999, generic.StatusCanceled, 10)
	assert.ErrorIs(t, err, generic.ErrNotFound)

	require.NoError(t, m.UpdateBookingStatus(ctx, b.ID, generic.StatusCanceled, 10, generic.StatusPending, generic.StatusConfirmed))

	err = m.UpdateBookingStatus(ctx, b.ID, generic.StatusCanceled, 10, generic.StatusPending, generic.StatusConfirmed)
	assert.ErrorIs(t, err, generic.ErrInvalidTransition)

	got, err := m.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, generic.StatusCanceled, got.Status)
}

func TestMemory_WithCabinLockRollsBackOnError(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	err := m.WithCabinLock(ctx, 1, func(s generic.BookingStore) error {
		if _, err := s.InsertBooking(ctx, newBooking(10, "2024-06-10", "2024-06-15", generic.StatusPending)); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	active, err := m.ActiveBookings(ctx, 1, generic.StartOfMonth(2024, 6))
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestMemory_ConcurrentInsertsOnlyOneWins(t *testing.T) {
	// GIVEN: 20 goroutines booking the same nights
	// THEN: Exactly one insert succeeds

	m := newMemory(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.InsertBooking(ctx, newBooking(10, "2024-06-10", "2024-06-15", generic.StatusPending))
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemory_BookingsByGuestJoinsDetails(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	_, err := m.InsertBooking(ctx, newBooking(10, "2024-06-10", "2024-06-15", generic.StatusPending))
	require.NoError(t, err)
	_, err = m.InsertBooking(ctx, newBooking(11, "2024-06-20", "2024-06-22", generic.StatusPending))
	require.NoError(t, err)

	mine, err := m.BookingsByGuest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "001", mine[0].Cabin.Name)
	assert.Equal(t, "Ana", mine[0].Guest.FullName)
}
