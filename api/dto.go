/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request types carry
  validator/v10 tags and are checked by decodeRequest before a handler
  touches them. Response types wrap domain values where the wire shape
  differs from the domain shape.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers
  - *DTO: Small response types

DATES:
  Dates cross the wire as ISO-8601 strings ("2024-06-10" or an RFC 3339
  timestamp). A timestamp keeps the calendar date written in its own
  offset, so "2024-06-10T00:00:00+02:00" is June 10.

SEE ALSO:
  - handlers.go: Uses these types
  - generic/types.go: Money and Day JSON encodings
*/
package api

import (
	"github.com/warp/cabin-engine/booking"
	"github.com/warp/cabin-engine/generic"
)

// =============================================================================
// BOOKINGS
// =============================================================================

type GuestsDTO struct {
	Adults   int `json:"adults" validate:"min=1"`
	Children int `json:"children" validate:"min=0"`
}

// Total is the head count used for capacity and breakfast pricing.
func (g GuestsDTO) Total() int { return g.Adults + g.Children }

// CreateBookingRequest is the reservation form. TotalPrice is the preview the
// guest saw; it is compared with the server price, never charged.
type CreateBookingRequest struct {
	CabinID     int64          `json:"cabinId" validate:"required,gt=0"`
	StartDate   string         `json:"startDate" validate:"required"`
	EndDate     string         `json:"endDate" validate:"required"`
	Guests      GuestsDTO      `json:"guests"`
	IsBreakfast bool           `json:"isBreakfast"`
	TotalPrice  *generic.Money `json:"totalPrice,omitempty"`
}

// QuoteRequest asks for a price preview. Dates may be missing while the
// guest is still filling in the form.
type QuoteRequest struct {
	CabinID     int64     `json:"cabinId" validate:"required,gt=0"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Guests      GuestsDTO `json:"guests" validate:"-"`
	IsBreakfast bool      `json:"isBreakfast"`
}

type QuoteResponse struct {
	Computable bool                `json:"computable"`
	Quote      *booking.PriceQuote `json:"quote,omitempty"`
}

type CancelResponse struct {
	ID     generic.BookingID     `json:"id"`
	Status generic.BookingStatus `json:"status"`
}

// =============================================================================
// AUTH
// =============================================================================

type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type TokenResponse struct {
	Token   string          `json:"token"`
	GuestID generic.GuestID `json:"guest_id"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse represents an API error. Code is the machine-readable
// category; Details names the offending field for validation errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
