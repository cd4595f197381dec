/*
Package booking orchestrates the booking lifecycle of a cabin.

PURPOSE:
  Ties the calendar engine (generic), the price engine (pricing.go) and the
  store together for the two state-changing operations, create and cancel,
  plus the read paths the guest-facing pages need.

STATE MACHINE:
  (none) --create--> pending --ops--> confirmed --> checked-in --> checked-out
                        |                 |
                        +-----cancel------+--> canceled

  Only pending and confirmed bookings can be canceled. Canceling anything
  else is rejected with *generic.InvalidTransitionError; it is never a
  silent no-op.

CREATE FLOW:
  1. Require a session                       (AuthenticationError)
  2. Load the cabin, validate the stay       (NotFound / ValidationError)
  3. Price with trusted inputs               (client total is only compared)
  4. Under the cabin lock:
       conflict check -> insert pending      (ConflictError)
  5. Invalidate cached availability, then audit
  6. Return the booking joined with cabin and guest

CANCEL FLOW:
  1. Require a session
  2. Load, check ownership                   (AuthorizationError)
  3. Check the transition                    (InvalidTransitionError)
  4. Guarded status update in the store
  5. Invalidate cached availability, then audit

  Steps after the commit run on a context detached from the request, each
  bounded by AfterCommitTimeout, so an expired request deadline or a slow
  audit sink cannot leave the calendar cache stale.

SEE ALSO:
  - conflict.go: Overlap gate
  - pricing.go: Price engine
  - availability.go: Calendar read paths
*/
package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/cabin-engine/auth"
	"github.com/warp/cabin-engine/generic"
)

// AfterCommitTimeout bounds each follow-up step (cache invalidation, audit)
// run after a booking write has been committed.
const AfterCommitTimeout = 5 * time.Second

// Clock returns the current time. Injected for deterministic tests.
type Clock func() time.Time

// Store is what the orchestrator needs from persistence.
type Store interface {
	generic.TxStore
	generic.CabinStore
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store        Store
	availability *Availability
	validator    *ConflictValidator
	audit        generic.AuditLog
	settings     generic.BookingSettings
	now          Clock
	log          logrus.FieldLogger
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.now = c } }

func WithAuditLog(a generic.AuditLog) Option { return func(s *Service) { s.audit = a } }

func WithLogger(l logrus.FieldLogger) Option { return func(s *Service) { s.log = l } }

func WithAvailability(a *Availability) Option { return func(s *Service) { s.availability = a } }

func NewService(store Store, settings generic.BookingSettings, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: NewConflictValidator(store),
		settings:  settings,
		now:       time.Now,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.availability == nil {
		s.availability = NewAvailability(store, nil, s.log)
	}
	return s
}

func (s *Service) Settings() generic.BookingSettings { return s.settings }
func (s *Service) Availability() *Availability       { return s.availability }
func (s *Service) Validator() *ConflictValidator     { return s.validator }

// Today is the service clock's current UTC day.
func (s *Service) Today() generic.Day { return generic.DayOf(s.now()) }

// =============================================================================
// CREATE
// =============================================================================

type CreateBookingInput struct {
	CabinID     generic.CabinID
	Period      generic.Period
	NumGuests   int
	IsBreakfast bool
	// ClientTotal is the total the guest saw in the preview. It is never
	// charged; a mismatch with the server total is logged.
	ClientTotal *generic.Money
}

func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (generic.BookingDetails, error) {
	sess, err := auth.RequireSession(ctx, "You must be logged in to create a new reservation.")
	if err != nil {
		return generic.BookingDetails{}, err
	}
	log := s.log.WithFields(logrus.Fields{"cabin_id": in.CabinID, "guest_id": sess.UserID})

	cabin, err := s.store.GetCabin(ctx, in.CabinID)
	if err != nil {
		return generic.BookingDetails{}, err
	}
	if err := ValidateStay(s.settings, cabin, in.Period, in.NumGuests, s.Today()); err != nil {
		return generic.BookingDetails{}, err
	}

	quote, ok := QuoteForCabin(cabin, s.settings, in.Period, in.NumGuests, in.IsBreakfast)
	if !ok {
		return generic.BookingDetails{}, &generic.ValidationError{Field: "cabinId", Message: "This cabin cannot be priced right now."}
	}
	if in.ClientTotal != nil && !in.ClientTotal.Equal(quote.Total) {
		log.WithFields(logrus.Fields{
			"client_total": in.ClientTotal.String(),
			"server_total": quote.Total.String(),
		}).Warn("client price preview differs from server price")
	}

	nb := generic.NewBooking{
		CabinID:         in.CabinID,
		GuestID:         sess.UserID,
		Period:          in.Period,
		Status:          generic.StatusPending,
		NumGuests:       in.NumGuests,
		IsBreakfast:     in.IsBreakfast,
		CabinPrice:      quote.NightlyPrice,
		Discount:        quote.Discount,
		BreakfastPrice:  quote.BreakfastPrice,
		CabinAmount:     quote.CabinAmount,
		BreakfastAmount: quote.BreakfastAmount,
		TotalPrice:      quote.Total,
		Payments:        generic.ZeroPayments(),
		Observations:    "",
	}

	var created generic.Booking
	err = s.store.WithCabinLock(ctx, in.CabinID, func(tx generic.BookingStore) error {
		if err := assertAvailable(ctx, tx, in.CabinID, in.Period); err != nil {
			return err
		}
		b, err := tx.InsertBooking(ctx, nb)
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		log.WithError(err).Info("booking not created")
		return generic.BookingDetails{}, err
	}

	log = log.WithField("booking_id", created.ID)
	s.invalidate(ctx, in.CabinID)
	s.record(ctx, generic.AuditEntry{
		ActorID:   sess.UserID,
		Action:    generic.AuditBookingCreated,
		BookingID: created.ID,
		CabinID:   created.CabinID,
		Payload: map[string]any{
			"start_date":  created.Period.Start.String(),
			"end_date":    created.Period.End.String(),
			"total_price": created.TotalPrice.String(),
		},
	})
	log.Info("booking created")

	details, err := s.store.GetBookingDetails(ctx, created.ID)
	if err != nil {
		log.WithError(err).Warn("booking details lookup failed after create")
		return generic.BookingDetails{Booking: created, Cabin: cabin}, nil
	}
	return details, nil
}

// =============================================================================
// CANCEL
// =============================================================================

func (s *Service) CancelBooking(ctx context.Context, id generic.BookingID) error {
	sess, err := auth.RequireSession(ctx, "You must be logged in to cancel a reservation.")
	if err != nil {
		return err
	}
	log := s.log.WithFields(logrus.Fields{"booking_id": id, "guest_id": sess.UserID})

	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if b.GuestID != sess.UserID {
		log.Warn("cancel attempted by non-owner")
		return &generic.AuthorizationError{GuestID: sess.UserID, BookingID: id}
	}
	if !b.Status.CanTransitionTo(generic.StatusCanceled) {
		return &generic.InvalidTransitionError{BookingID: id, From: b.Status, To: generic.StatusCanceled}
	}

	if err := s.store.UpdateBookingStatus(ctx, id, generic.StatusCanceled, sess.UserID,
		generic.StatusPending, generic.StatusConfirmed); err != nil {
		return err
	}

	s.invalidate(ctx, b.CabinID)
	s.record(ctx, generic.AuditEntry{
		ActorID:   sess.UserID,
		Action:    generic.AuditBookingCanceled,
		BookingID: id,
		CabinID:   b.CabinID,
		Payload:   map[string]any{"previous_status": string(b.Status)},
	})
	log.WithField("cabin_id", b.CabinID).Info("booking canceled")
	return nil
}

// =============================================================================
// READ PATHS
// =============================================================================

// GuestBookings returns the caller's bookings grouped by lifecycle.
func (s *Service) GuestBookings(ctx context.Context, order SortOrder) (GroupedBookings, error) {
	sess, err := auth.RequireSession(ctx, "You must be logged in to see your reservations.")
	if err != nil {
		return GroupedBookings{}, err
	}
	bookings, err := s.store.BookingsByGuest(ctx, sess.UserID)
	if err != nil {
		return GroupedBookings{}, err
	}
	return GroupBookings(bookings, order), nil
}

// QuoteRequest is a price preview request. Missing dates are allowed and
// yield a not-yet-computable quote.
type QuoteRequest struct {
	CabinID     generic.CabinID
	From        *generic.Day
	To          *generic.Day
	NumGuests   int
	IsBreakfast bool
}

// Quote prices a prospective stay with the same engine CreateBooking uses.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (PriceQuote, bool, error) {
	cabin, err := s.store.GetCabin(ctx, req.CabinID)
	if err != nil {
		return PriceQuote{}, false, err
	}
	if req.From == nil || req.To == nil {
		return PriceQuote{}, false, nil
	}
	q, ok := QuoteForCabin(cabin, s.settings, generic.NewPeriod(*req.From, *req.To), req.NumGuests, req.IsBreakfast)
	return q, ok, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// afterCommit detaches ctx from the request's cancellation and deadline.
// The write is already durable, so its follow-ups must not be cut short.
func afterCommit(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), AfterCommitTimeout)
}

func (s *Service) invalidate(ctx context.Context, cabinID generic.CabinID) {
	ctx, cancel := afterCommit(ctx)
	defer cancel()
	s.availability.Invalidate(ctx, cabinID)
}

// record appends to the audit log. Audit failures are logged, never
// surfaced: the booking is already committed.
func (s *Service) record(ctx context.Context, e generic.AuditEntry) {
	if s.audit == nil {
		return
	}
	e.ID = uuid.NewString()
	e.Timestamp = s.now().UTC()
	ctx, cancel := afterCommit(ctx)
	defer cancel()
	if err := s.audit.Append(ctx, e); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": e.BookingID,
			"action":     e.Action,
		}).Error("audit append failed")
	}
}
