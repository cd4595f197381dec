package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cabin-engine/booking"
	"github.com/warp/cabin-engine/generic"
)

func money(s string) generic.Money { return generic.MustParseMoney(s) }

func TestQuote_RoundTrip(t *testing.T) {
	// GIVEN: nightly 100, discount 10, 3 nights, breakfast 15, 2 guests, breakfast on
	// THEN: cabin 270, breakfast 90, total 360

	q, ok := booking.Quote(booking.QuoteInput{
		NightlyPrice:   money("100"),
		Discount:       money("10"),
		Nights:         3,
		Guests:         2,
		IsBreakfast:    true,
		BreakfastPrice: money("15"),
	})

	require.True(t, ok)
	assert.Equal(t, "270.00", q.CabinAmount.String())
	assert.Equal(t, "90.00", q.BreakfastAmount.String())
	assert.Equal(t, "360.00", q.Total.String())

	// AND: recomputing from the persisted inputs reproduces 360 exactly
	persisted := generic.Booking{
		Period:         generic.NewPeriod(generic.MustParseDay("2024-06-10"), generic.MustParseDay("2024-06-13")),
		NumGuests:      2,
		IsBreakfast:    true,
		CabinPrice:     q.NightlyPrice,
		Discount:       q.Discount,
		BreakfastPrice: q.BreakfastPrice,
		TotalPrice:     q.Total,
	}
	again, ok := booking.Reprice(persisted)
	require.True(t, ok)
	assert.True(t, again.Total.Equal(persisted.TotalPrice))
}

func TestQuote_NoBreakfast(t *testing.T) {
	q, ok := booking.Quote(booking.QuoteInput{
		NightlyPrice:   money("100"),
		Nights:         3,
		Guests:         2,
		BreakfastPrice: money("15"),
	})

	require.True(t, ok)
	assert.True(t, q.BreakfastAmount.IsZero())
	assert.Equal(t, "300.00", q.Total.String())
}

func TestQuote_NotYetComputable(t *testing.T) {
	tests := []struct {
		name string
		in   booking.QuoteInput
	}{
		{"no nights", booking.QuoteInput{NightlyPrice: money("100"), Guests: 1}},
		{"negative nights", booking.QuoteInput{NightlyPrice: money("100"), Nights: -2, Guests: 1}},
		{"no price", booking.QuoteInput{Nights: 3, Guests: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := booking.Quote(tt.in)
			assert.False(t, ok)
		})
	}
}

func TestCabinComponent_FullDiscountIsComputedZero(t *testing.T) {
	// A free stay is a computed zero, not "not computable"
	amount, ok := booking.CabinComponent(money("80"), money("80"), 2)
	require.True(t, ok)
	assert.True(t, amount.IsZero())
}

func TestQuote_DecimalRatesStayExact(t *testing.T) {
	q, ok := booking.Quote(booking.QuoteInput{
		NightlyPrice:   money("99.99"),
		Discount:       money("0.33"),
		Nights:         7,
		Guests:         3,
		IsBreakfast:    true,
		BreakfastPrice: money("12.10"),
	})

	require.True(t, ok)
	assert.Equal(t, "697.62", q.CabinAmount.String())
	assert.Equal(t, "254.10", q.BreakfastAmount.String())
	assert.Equal(t, "951.72", q.Total.String())
}

func TestNightsBetween(t *testing.T) {
	assert.Equal(t, 3, booking.NightsBetween(generic.MustParseDay("2024-06-10"), generic.MustParseDay("2024-06-13")))
}
