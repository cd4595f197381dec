package generic_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cabin-engine/generic"
)

// =============================================================================
// MONEY
// =============================================================================

func TestMoney_ExactArithmetic(t *testing.T) {
	// 0.1 + 0.2 drifts with floats
	sum := generic.MustParseMoney("0.10").Add(generic.MustParseMoney("0.20"))
	assert.True(t, sum.Equal(generic.MustParseMoney("0.30")))

	nightly := generic.MustParseMoney("99.99").MulInt(3)
	assert.Equal(t, "299.97", nightly.String())
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(generic.NewMoney(360))
	require.NoError(t, err)
	assert.JSONEq(t, `"360.00"`, string(b))

	var fromNumber, fromString generic.Money
	require.NoError(t, json.Unmarshal([]byte(`15`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"15.00"`), &fromString))
	assert.True(t, fromNumber.Equal(fromString))

	var bad generic.Money
	assert.Error(t, json.Unmarshal([]byte(`"fifteen"`), &bad))
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

func TestParseCabinID(t *testing.T) {
	id, err := generic.ParseCabinID("12")
	require.NoError(t, err)
	assert.Equal(t, generic.CabinID(12), id)

	for _, in := range []string{"", "0", "-3", "1.5", "abc"} {
		_, err := generic.ParseCabinID(in)
		assert.ErrorIs(t, err, generic.ErrValidation, "input %q", in)
	}
}

// =============================================================================
// BOOKING STATUS
// =============================================================================

func TestBookingStatus_ClosedEnum(t *testing.T) {
	for _, s := range generic.AllStatuses {
		parsed, err := generic.ParseBookingStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := generic.ParseBookingStatus("unconfirmed")
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestBookingStatus_Active(t *testing.T) {
	assert.True(t, generic.StatusPending.IsActive())
	assert.True(t, generic.StatusConfirmed.IsActive())
	assert.True(t, generic.StatusCheckedIn.IsActive())
	assert.False(t, generic.StatusCheckedOut.IsActive())
	assert.False(t, generic.StatusCanceled.IsActive())
}

func TestBookingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to generic.BookingStatus
		want     bool
	}{
		{generic.StatusPending, generic.StatusCanceled, true},
		{generic.StatusConfirmed, generic.StatusCanceled, true},
		{generic.StatusCheckedIn, generic.StatusCanceled, false},
		{generic.StatusCheckedOut, generic.StatusCanceled, false},
		{generic.StatusCanceled, generic.StatusCanceled, false},
		{generic.StatusCanceled, generic.StatusPending, false},
		{generic.StatusPending, generic.StatusConfirmed, true},
		{generic.StatusCheckedIn, generic.StatusCheckedOut, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// =============================================================================
// ERRORS
// =============================================================================

func TestErrors_Taxonomy(t *testing.T) {
	conflict := fmt.Errorf("create: %w", &generic.ConflictError{CabinID: 1, Requested: stay("2024-06-14", "2024-06-16")})
	transient := &generic.PersistenceError{Op: "insert booking", Transient: true, Err: errors.New("connection reset")}
	permanent := &generic.PersistenceError{Op: "insert booking", Err: errors.New("disk full")}
	notFound := &generic.NotFoundError{Kind: "booking", ID: "9"}

	assert.ErrorIs(t, conflict, generic.ErrBookingConflict)
	assert.True(t, generic.IsClientError(conflict))
	assert.False(t, generic.IsRetryable(conflict))

	assert.ErrorIs(t, transient, generic.ErrPersistence)
	assert.True(t, generic.IsRetryable(transient))
	assert.False(t, generic.IsRetryable(permanent))
	assert.False(t, generic.IsClientError(permanent))

	assert.True(t, generic.IsNotFound(notFound))
}

func TestErrors_UserMessageHidesInternalDetail(t *testing.T) {
	err := &generic.PersistenceError{Op: "insert booking", Err: errors.New("pq: relation bookings does not exist")}

	msg := generic.UserMessage(err)
	assert.NotContains(t, msg, "pq")
	assert.Contains(t, msg, "contact support")

	wrapped := fmt.Errorf("cancel: %w", &generic.AuthorizationError{GuestID: 1, BookingID: 2})
	assert.Equal(t, "You are not allowed to change this booking.", generic.UserMessage(wrapped))

	assert.Contains(t, generic.UserMessage(errors.New("boom")), "try again later")
}
