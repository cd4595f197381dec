/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every error carries two messages: Error() for logs and UserMessage() for
  the person in front of the screen. Internal detail never reaches the user.

ERROR CATEGORIES:
  1. Validation errors     - Malformed input (bad date, guest count, nights)
  2. Authentication errors - No verified caller
  3. Authorization errors  - Caller does not own the booking
  4. Booking conflicts     - Dates no longer available
  5. Lifecycle errors      - Transition not allowed from the current status
  6. Persistence errors    - Store failures, transient or permanent

USAGE:
  Callers branch on sentinels with errors.Is:

    if errors.Is(err, generic.ErrBookingConflict) {
        // re-fetch availability, let the user pick new dates
    }

  The HTTP layer maps categories to status codes (see api/handlers.go).

SEE ALSO:
  - store.go: Stores return these errors
  - booking/service.go: Orchestrator raises most of them
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication is returned when the caller has no verified identity.
	ErrAuthentication = errors.New("authentication required")

	// ErrAuthorization is returned when the caller does not own the resource.
	ErrAuthorization = errors.New("not authorized")

	// ErrBookingConflict is returned when the requested nights overlap an
	// active booking of the same cabin.
	ErrBookingConflict = errors.New("booking conflict")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the booking's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a referenced cabin, booking or guest
	// doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrPersistence is returned when the store fails.
	ErrPersistence = errors.New("persistence failure")
)

const supportMessage = "Something went wrong. Please try again later and contact support if the problem persists."

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error       { return ErrValidation }
func (e *ValidationError) UserMessage() string { return e.Message }

type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error       { return ErrAuthentication }
func (e *AuthenticationError) UserMessage() string { return "Please log in to continue." }

type AuthorizationError struct {
	GuestID   GuestID
	BookingID BookingID
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("guest %d is not allowed to modify booking %d", e.GuestID, e.BookingID)
}

func (e *AuthorizationError) Unwrap() error { return ErrAuthorization }
func (e *AuthorizationError) UserMessage() string {
	return "You are not allowed to change this booking."
}

// ConflictError provides details about a booking conflict.
type ConflictError struct {
	CabinID   CabinID
	Requested Period
	// Existing is the conflicting booking's stay, when known. Constraint
	// violations raised by a database do not say which row conflicted.
	Existing *Period
}

func (e *ConflictError) Error() string {
	if e.Existing != nil {
		return fmt.Sprintf("cabin %d: requested %s overlaps booking %s",
			e.CabinID, e.Requested, e.Existing)
	}
	return fmt.Sprintf("cabin %d: requested %s overlaps an active booking", e.CabinID, e.Requested)
}

func (e *ConflictError) Unwrap() error { return ErrBookingConflict }
func (e *ConflictError) UserMessage() string {
	return "These dates are no longer available. Please choose different dates."
}

type InvalidTransitionError struct {
	BookingID BookingID
	From      BookingStatus
	To        BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %d: cannot move from %s to %s", e.BookingID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
func (e *InvalidTransitionError) UserMessage() string {
	return fmt.Sprintf("This booking is %s and can no longer be changed.", e.From)
}

type NotFoundError struct {
	Kind string // "cabin", "booking", "guest"
	ID   string
}

func (e *NotFoundError) Error() string       { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error       { return ErrNotFound }
func (e *NotFoundError) UserMessage() string { return fmt.Sprintf("The %s could not be found.", e.Kind) }

// PersistenceError wraps a store failure. Transient failures (timeouts,
// dropped connections, serialization aborts) may succeed on retry.
type PersistenceError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *PersistenceError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, kind, e.Err)
}

// Unwrap exposes both the sentinel and the driver error.
func (e *PersistenceError) Unwrap() []error     { return []error{ErrPersistence, e.Err} }
func (e *PersistenceError) UserMessage() string { return supportMessage }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// UserMessage returns the message that is safe to show to the caller.
func UserMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return supportMessage
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Transient
}

// IsClientError returns true if the error is due to the caller's input or
// identity rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, ErrBookingConflict) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
