/*
pricing.go - Price engine shared by preview and checkout

PURPOSE:
  One pure function set computes every price in the system. The quote
  endpoint (live preview while the guest edits the form) and CreateBooking
  (the persisted charge) both call Quote, so the two can never drift.

FORMULAS:
  cabin     = (nightly price - discount) * nights
  breakfast = breakfast unit price * nights * guests   (0 when not selected)
  total     = cabin + breakfast

NOT YET COMPUTABLE:
  When the nightly price or the night count is missing (zero or negative)
  the cabin component is not computed and Quote reports ok == false. This is
  different from a computed zero: a caller must not display a total it
  could not compute.

SEE ALSO:
  - service.go: CreateBooking recomputes with trusted inputs
  - api/handlers.go: POST /api/bookings/quote
*/
package booking

import "github.com/warp/cabin-engine/generic"

// QuoteInput holds the price inputs of a stay.
type QuoteInput struct {
	NightlyPrice   generic.Money
	Discount       generic.Money
	Nights         int
	Guests         int
	IsBreakfast    bool
	BreakfastPrice generic.Money
}

// PriceQuote is a computed price breakdown.
type PriceQuote struct {
	Nights          int           `json:"nights"`
	NightlyPrice    generic.Money `json:"nightly_price"`
	Discount        generic.Money `json:"discount"`
	BreakfastPrice  generic.Money `json:"breakfast_price"`
	CabinAmount     generic.Money `json:"cabin_amount"`
	BreakfastAmount generic.Money `json:"breakfast_amount"`
	Total           generic.Money `json:"total"`
}

// NightsBetween returns the number of nights of a stay from check-in to
// checkout.
func NightsBetween(from, to generic.Day) int {
	return generic.DaysBetween(from, to)
}

// CabinComponent returns (nightly - discount) * nights. ok is false when the
// nightly price or nights are missing.
func CabinComponent(nightly, discount generic.Money, nights int) (generic.Money, bool) {
	if !nightly.IsPositive() || nights <= 0 {
		return generic.Money{}, false
	}
	return nightly.Sub(discount).MulInt(nights), true
}

// BreakfastComponent returns unit * nights * guests when breakfast is
// selected and zero otherwise.
func BreakfastComponent(isBreakfast bool, unit generic.Money, nights, guests int) generic.Money {
	if !isBreakfast || nights <= 0 || guests <= 0 {
		return generic.ZeroMoney()
	}
	return unit.MulInt(nights).MulInt(guests)
}

func Total(cabin, breakfast generic.Money) generic.Money {
	return cabin.Add(breakfast)
}

// Quote computes the full breakdown. ok is false when the price cannot be
// computed yet.
func Quote(in QuoteInput) (PriceQuote, bool) {
	cabin, ok := CabinComponent(in.NightlyPrice, in.Discount, in.Nights)
	if !ok {
		return PriceQuote{Nights: in.Nights}, false
	}
	breakfast := BreakfastComponent(in.IsBreakfast, in.BreakfastPrice, in.Nights, in.Guests)
	return PriceQuote{
		Nights:          in.Nights,
		NightlyPrice:    in.NightlyPrice,
		Discount:        in.Discount,
		BreakfastPrice:  in.BreakfastPrice,
		CabinAmount:     cabin,
		BreakfastAmount: breakfast,
		Total:           Total(cabin, breakfast),
	}, true
}

// QuoteForCabin prices a stay in cabin with the global breakfast rate.
func QuoteForCabin(cabin generic.Cabin, settings generic.BookingSettings, period generic.Period, guests int, isBreakfast bool) (PriceQuote, bool) {
	return Quote(QuoteInput{
		NightlyPrice:   cabin.RegularPrice,
		Discount:       cabin.Discount,
		Nights:         NightsBetween(period.Start, period.End),
		Guests:         guests,
		IsBreakfast:    isBreakfast,
		BreakfastPrice: settings.BreakfastPrice,
	})
}

// Reprice recomputes a persisted booking's price from its stored rates.
// For every booking written by CreateBooking the result equals TotalPrice.
func Reprice(b generic.Booking) (PriceQuote, bool) {
	return Quote(QuoteInput{
		NightlyPrice:   b.CabinPrice,
		Discount:       b.Discount,
		Nights:         b.Nights(),
		Guests:         b.NumGuests,
		IsBreakfast:    b.IsBreakfast,
		BreakfastPrice: b.BreakfastPrice,
	})
}
