/*
Package generic provides the core calendar engine for cabin bookings.

PURPOSE:
  This package contains the storage-agnostic types and algorithms that every
  other package builds on: calendar days, stay periods, availability math,
  money, the booking entity and its lifecycle, and the store interfaces.
  It has no knowledge of HTTP, SQL dialects, caches, or brokers.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: Exact decimal currency amount (2 places)
  - Booking: A reservation of a cabin for a range of nights
  - BookingStatus: Closed lifecycle enum
  - Cabin/Location/Guest: Reference data joined into booking details
  - BookingSettings: Global, read-only booking rules

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so recomputed totals match exactly
  2. Type Safety: Distinct ID types prevent mixing cabin/booking/guest IDs
  3. Auditability: Bookings are never deleted, only moved to canceled

USAGE:
  nb := generic.NewBooking{
      CabinID:   7,
      GuestID:   42,
      Period:    generic.NewPeriod(checkIn, checkOut),
      NumGuests: 2,
  }
  booking, err := store.InsertBooking(ctx, nb)

SEE ALSO:
  - period.go: Period and overlap rules
  - availability.go: Unavailable ranges and next window
  - store.go: Persistence interfaces
*/
package generic

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact currency amount
// =============================================================================

// MoneyPlaces is the number of decimal places kept for currency.
const MoneyPlaces = 2

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

// ParseMoney parses a decimal string such as "100" or "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Message: fmt.Sprintf("invalid amount %q", s)}
	}
	return Money{Value: d.Round(MoneyPlaces)}, nil
}

func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money        { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money        { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) MulInt(n int) Money       { return Money{Value: m.Value.Mul(decimal.NewFromInt(int64(n)))} }
func (m Money) Round() Money             { return Money{Value: m.Value.Round(MoneyPlaces)} }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsNegative() bool         { return m.Value.IsNegative() }
func (m Money) IsPositive() bool         { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool       { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) String() string           { return m.Value.StringFixed(MoneyPlaces) }

// MarshalJSON encodes money as a fixed two-place string ("360.00").
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a string or a bare JSON number.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = ZeroMoney()
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CabinID int64
type BookingID int64
type GuestID int64

// ParseCabinID accepts only positive integers.
func ParseCabinID(s string) (CabinID, error) {
	id, err := parsePositiveID("cabinId", s)
	return CabinID(id), err
}

func ParseBookingID(s string) (BookingID, error) {
	id, err := parsePositiveID("bookingId", s)
	return BookingID(id), err
}

func ParseGuestID(s string) (GuestID, error) {
	id, err := parsePositiveID("guestId", s)
	return GuestID(id), err
}

func parsePositiveID(field, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: field, Message: field + " is required"}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Field: field, Message: field + " must be a positive integer"}
	}
	return id, nil
}

func (id CabinID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id BookingID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id GuestID) String() string   { return strconv.FormatInt(int64(id), 10) }

// =============================================================================
// BOOKING STATUS - Closed lifecycle enum
// =============================================================================

// BookingStatus is the lifecycle state of a booking.
//
//	pending --> confirmed --> checked-in --> checked-out
//	   |            |
//	   +---cancel---+--> canceled
//
// canceled and checked-out are terminal.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCheckedIn  BookingStatus = "checked-in"
	StatusCheckedOut BookingStatus = "checked-out"
	StatusCanceled   BookingStatus = "canceled"
)

// AllStatuses lists every valid status.
var AllStatuses = []BookingStatus{
	StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCanceled,
}

// ActiveStatuses are the statuses that hold a cabin's nights.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCheckedIn}

var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusCheckedIn, StatusCanceled},
	StatusCheckedIn: {StatusCheckedOut},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown booking status %q", s)}
}

// IsActive reports whether a booking in this status counts toward availability.
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCheckedIn
}

func (s BookingStatus) IsTerminal() bool {
	return s == StatusCanceled || s == StatusCheckedOut
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// =============================================================================
// BOOKING - The central entity
// =============================================================================

// Payments tracks money collected and refunded. All fields start at zero;
// payment processing happens elsewhere.
type Payments struct {
	CabinPaid       Money `json:"cabin_paid"`
	BreakfastPaid   Money `json:"breakfast_paid"`
	TotalPaid       Money `json:"total_paid"`
	CabinRefund     Money `json:"cabin_refund"`
	BreakfastRefund Money `json:"breakfast_refund"`
	TotalRefund     Money `json:"total_refund"`
}

func ZeroPayments() Payments {
	z := ZeroMoney()
	return Payments{
		CabinPaid: z, BreakfastPaid: z, TotalPaid: z,
		CabinRefund: z, BreakfastRefund: z, TotalRefund: z,
	}
}

// Booking is a reservation of a cabin for the nights [Start, End).
//
// CabinPrice, Discount and BreakfastPrice are the rates at booking time.
// CabinAmount + BreakfastAmount == TotalPrice always holds and can be
// recomputed from the rates, NumGuests, IsBreakfast and Nights().
type Booking struct {
	ID        BookingID     `json:"id"`
	CabinID   CabinID       `json:"cabin_id"`
	GuestID   GuestID       `json:"guest_id"`
	Period    Period        `json:"period"`
	Status    BookingStatus `json:"status"`
	NumGuests int           `json:"num_guests"`

	IsBreakfast     bool  `json:"is_breakfast"`
	CabinPrice      Money `json:"cabin_price"`
	Discount        Money `json:"discount"`
	BreakfastPrice  Money `json:"breakfast_price"`
	CabinAmount     Money `json:"cabin_amount"`
	BreakfastAmount Money `json:"breakfast_amount"`
	TotalPrice      Money `json:"total_price"`

	Payments     Payments  `json:"payments"`
	Observations string    `json:"observations"`
	CreatedAt    time.Time `json:"created_at"`
}

func (b Booking) Nights() int { return b.Period.Nights() }

// NewBooking is the input to BookingStore.InsertBooking. The store assigns
// the ID and CreatedAt.
type NewBooking struct {
	CabinID   CabinID
	GuestID   GuestID
	Period    Period
	Status    BookingStatus
	NumGuests int

	IsBreakfast     bool
	CabinPrice      Money
	Discount        Money
	BreakfastPrice  Money
	CabinAmount     Money
	BreakfastAmount Money
	TotalPrice      Money

	Payments     Payments
	Observations string
}

// ToBooking materializes the insert input as a booking with the given id.
func (nb NewBooking) ToBooking(id BookingID, createdAt time.Time) Booking {
	return Booking{
		ID:              id,
		CabinID:         nb.CabinID,
		GuestID:         nb.GuestID,
		Period:          nb.Period,
		Status:          nb.Status,
		NumGuests:       nb.NumGuests,
		IsBreakfast:     nb.IsBreakfast,
		CabinPrice:      nb.CabinPrice,
		Discount:        nb.Discount,
		BreakfastPrice:  nb.BreakfastPrice,
		CabinAmount:     nb.CabinAmount,
		BreakfastAmount: nb.BreakfastAmount,
		TotalPrice:      nb.TotalPrice,
		Payments:        nb.Payments,
		Observations:    nb.Observations,
		CreatedAt:       createdAt,
	}
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Address string `json:"address"`
}

type Cabin struct {
	ID           CabinID  `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	MaxGuests    int      `json:"max_guests"`
	RegularPrice Money    `json:"regular_price"`
	Discount     Money    `json:"discount"`
	Images       []string `json:"images,omitempty"`
	Location     Location `json:"location"`
}

type Guest struct {
	ID          GuestID `json:"id"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Nationality string  `json:"nationality,omitempty"`
}

// BookingDetails is a booking joined with its cabin and guest, as returned
// after creation and in a guest's reservation list.
type BookingDetails struct {
	Booking
	Cabin Cabin `json:"cabin"`
	Guest Guest `json:"guest"`
}

// BookingSettings are the global rules every new booking must satisfy.
type BookingSettings struct {
	MinNights      int   `json:"min_nights"`
	MaxNights      int   `json:"max_nights"`
	BreakfastPrice Money `json:"breakfast_price"`
}
