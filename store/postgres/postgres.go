/*
Package postgres provides a PostgreSQL-backed implementation of generic.Store.

PURPOSE:
  Production backend. Same table layout as store/sqlite with native types:
  DATE for stay boundaries, NUMERIC(12,2) for money, JSONB for lists and
  audit payloads.

NO-DOUBLE-BOOKING ENFORCEMENT:
  bookings_no_overlap is an exclusion constraint over
  daterange(start_date, end_date, '[)') for active statuses. Half-open
  ranges share a turnover day but never a night. A violation (23P01) is
  mapped to *generic.ConflictError.

  WithCabinLock takes pg_advisory_xact_lock(cabin_id), so concurrent
  check-then-insert on one cabin is serialized while other cabins proceed.

ERROR MAPPING:
  23P01 exclusion_violation         -> *generic.ConflictError
  08xxx connection exceptions       -> transient *generic.PersistenceError
  40001 serialization_failure       -> transient
  40P01 deadlock_detected           -> transient
  55P03 lock_not_available          -> transient
  57014 query_canceled, ctx expired -> transient
  anything else                     -> permanent

USAGE:
  store, err := postgres.Open(ctx, postgres.Config{DSN: dsn})
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - store/sqlite/sqlite.go: Same contract on SQLite
  - store/columns: Shared column decoding
*/
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/warp/cabin-engine/generic"
	"github.com/warp/cabin-engine/store/columns"
)

// Config holds connection pool settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store implements generic.Store using PostgreSQL.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ generic.Store = (*Store)(nil)

// Open connects, pings and migrates.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,

		`CREATE TABLE IF NOT EXISTS cabins (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			max_guests INTEGER NOT NULL,
			regular_price NUMERIC(12,2) NOT NULL,
			discount NUMERIC(12,2) NOT NULL DEFAULT 0,
			images JSONB NOT NULL DEFAULT '[]',
			city TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS guests (
			id BIGINT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			nationality TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_guests_email ON guests (lower(email))`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGSERIAL PRIMARY KEY,
			cabin_id BIGINT NOT NULL REFERENCES cabins(id),
			guest_id BIGINT NOT NULL REFERENCES guests(id),
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			status TEXT NOT NULL,
			num_guests INTEGER NOT NULL,
			is_breakfast BOOLEAN NOT NULL DEFAULT false,
			cabin_price NUMERIC(12,2) NOT NULL,
			discount NUMERIC(12,2) NOT NULL,
			breakfast_price NUMERIC(12,2) NOT NULL,
			cabin_amount NUMERIC(12,2) NOT NULL,
			breakfast_amount NUMERIC(12,2) NOT NULL,
			total_price NUMERIC(12,2) NOT NULL,
			cabin_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			breakfast_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			cabin_refund NUMERIC(12,2) NOT NULL DEFAULT 0,
			breakfast_refund NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_refund NUMERIC(12,2) NOT NULL DEFAULT 0,
			observations TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			CHECK (start_date < end_date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_cabin_start ON bookings(cabin_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_guest ON bookings(guest_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,

		`DO $$ BEGIN
			ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
				EXCLUDE USING gist (cabin_id WITH =, daterange(start_date, end_date, '[)') WITH &&)
				WHERE (status IN ('pending', 'confirmed', 'checked-in'));
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			ts TIMESTAMPTZ NOT NULL,
			actor_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			booking_id BIGINT NOT NULL,
			cabin_id BIGINT NOT NULL,
			payload JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_booking ON audit_log(booking_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type bookingQueries struct {
	q   querier
	now func() time.Time
	// inTx is set when q is a transaction. A failed statement aborts a
	// PostgreSQL transaction, so follow-up reads are skipped.
	inTx bool
}

const bookingColumns = `
	b.id, b.cabin_id, b.guest_id, b.start_date, b.end_date, b.status, b.num_guests,
	b.is_breakfast, b.cabin_price, b.discount, b.breakfast_price, b.cabin_amount,
	b.breakfast_amount, b.total_price, b.cabin_paid, b.breakfast_paid, b.total_paid,
	b.cabin_refund, b.breakfast_refund, b.total_refund, b.observations, b.created_at`

const cabinColumns = `
	c.id, c.name, c.description, c.max_guests, c.regular_price, c.discount,
	c.images, c.city, c.country, c.address`

const guestColumns = `g.id, g.full_name, g.email, g.nationality`

func (s *Store) queries() *bookingQueries { return &bookingQueries{q: s.db, now: s.now} }

func (s *Store) ActiveBookings(ctx context.Context, cabinID generic.CabinID, window generic.Period) ([]generic.Booking, error) {
	return s.queries().ActiveBookings(ctx, cabinID, window)
}

func (s *Store) InsertBooking(ctx context.Context, nb generic.NewBooking) (generic.Booking, error) {
	return s.queries().InsertBooking(ctx, nb)
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id generic.BookingID, status generic.BookingStatus, owner generic.GuestID, expected ...generic.BookingStatus) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer sqlTx.Rollback()

	q := &bookingQueries{q: sqlTx, now: s.now, inTx: true}
	if err := q.UpdateBookingStatus(ctx, id, status, owner, expected...); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return mapError("commit status update", err)
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id generic.BookingID) (generic.Booking, error) {
	return s.queries().GetBooking(ctx, id)
}

func (s *Store) GetBookingDetails(ctx context.Context, id generic.BookingID) (generic.BookingDetails, error) {
	return s.queries().GetBookingDetails(ctx, id)
}

func (s *Store) BookingsByGuest(ctx context.Context, guestID generic.GuestID) ([]generic.BookingDetails, error) {
	return s.queries().BookingsByGuest(ctx, guestID)
}

func (bq *bookingQueries) ActiveBookings(ctx context.Context, cabinID generic.CabinID, window generic.Period) ([]generic.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.cabin_id = $1
		  AND b.status = ANY($2)
		  AND b.end_date >= $3 AND b.start_date <= $4
		ORDER BY b.start_date ASC, b.id ASC
	`
	rows, err := bq.q.QueryContext(ctx, query,
		int64(cabinID), pq.Array(statusStrings(generic.ActiveStatuses)),
		window.Start.String(), window.End.String())
	if err != nil {
		return nil, mapError("query active bookings", err)
	}
	defer rows.Close()

	var bookings []generic.Booking
	for rows.Next() {
		var b generic.Booking
		if err := rows.Scan(columns.BookingDest(&b)...); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("query active bookings", err)
	}
	return bookings, nil
}

func (bq *bookingQueries) InsertBooking(ctx context.Context, nb generic.NewBooking) (generic.Booking, error) {
	if !nb.Period.Start.Before(nb.Period.End) {
		return generic.Booking{}, &generic.ValidationError{Field: "endDate", Message: "end date must be after start date"}
	}
	var exists bool
	err := bq.q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM cabins WHERE id = $1)", int64(nb.CabinID)).Scan(&exists)
	if err != nil {
		return generic.Booking{}, mapError("lookup cabin", err)
	}
	if !exists {
		return generic.Booking{}, &generic.NotFoundError{Kind: "cabin", ID: nb.CabinID.String()}
	}

	createdAt := bq.now().UTC()
	query := `
		INSERT INTO bookings
		(cabin_id, guest_id, start_date, end_date, status, num_guests, is_breakfast,
		 cabin_price, discount, breakfast_price, cabin_amount, breakfast_amount, total_price,
		 cabin_paid, breakfast_paid, total_paid, cabin_refund, breakfast_refund, total_refund,
		 observations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id
	`
	var id int64
	err = bq.q.QueryRowContext(ctx, query,
		int64(nb.CabinID),
		int64(nb.GuestID),
		nb.Period.Start.String(),
		nb.Period.End.String(),
		string(nb.Status),
		nb.NumGuests,
		nb.IsBreakfast,
		nb.CabinPrice.String(),
		nb.Discount.String(),
		nb.BreakfastPrice.String(),
		nb.CabinAmount.String(),
		nb.BreakfastAmount.String(),
		nb.TotalPrice.String(),
		nb.Payments.CabinPaid.String(),
		nb.Payments.BreakfastPaid.String(),
		nb.Payments.TotalPaid.String(),
		nb.Payments.CabinRefund.String(),
		nb.Payments.BreakfastRefund.String(),
		nb.Payments.TotalRefund.String(),
		nb.Observations,
		createdAt,
	).Scan(&id)
	if err != nil {
		if isExclusionViolation(err) {
			return generic.Booking{}, bq.conflict(ctx, nb)
		}
		return generic.Booking{}, mapError("insert booking", err)
	}
	return nb.ToBooking(generic.BookingID(id), createdAt), nil
}

func (bq *bookingQueries) conflict(ctx context.Context, nb generic.NewBooking) error {
	cerr := &generic.ConflictError{CabinID: nb.CabinID, Requested: nb.Period}
	if bq.inTx {
		return cerr
	}
	existing, err := bq.ActiveBookings(ctx, nb.CabinID, nb.Period)
	if err != nil {
		return cerr
	}
	for _, b := range existing {
		if nb.Period.Overlaps(b.Period, false) {
			p := b.Period
			cerr.Existing = &p
			break
		}
	}
	return cerr
}

func (bq *bookingQueries) UpdateBookingStatus(ctx context.Context, id generic.BookingID, status generic.BookingStatus, owner generic.GuestID, expected ...generic.BookingStatus) error {
	var (
		guestID int64
		current string
	)
	err := bq.q.QueryRowContext(ctx,
		"SELECT guest_id, status FROM bookings WHERE id = $1 FOR UPDATE", int64(id),
	).Scan(&guestID, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return &generic.NotFoundError{Kind: "booking", ID: id.String()}
	}
	if err != nil {
		return mapError("load booking", err)
	}
	if generic.GuestID(guestID) != owner {
		return &generic.AuthorizationError{GuestID: owner, BookingID: id}
	}
	from := generic.BookingStatus(current)
	if len(expected) > 0 && !containsStatus(expected, from) {
		return &generic.InvalidTransitionError{BookingID: id, From: from, To: status}
	}

	_, err = bq.q.ExecContext(ctx, "UPDATE bookings SET status = $1 WHERE id = $2", string(status), int64(id))
	if err != nil {
		return mapError("update booking status", err)
	}
	return nil
}

func (bq *bookingQueries) GetBooking(ctx context.Context, id generic.BookingID) (generic.Booking, error) {
	var b generic.Booking
	err := bq.q.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id = $1", int64(id)).
		Scan(columns.BookingDest(&b)...)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Booking{}, &generic.NotFoundError{Kind: "booking", ID: id.String()}
	}
	if err != nil {
		return generic.Booking{}, mapError("get booking", err)
	}
	return b, nil
}

func (bq *bookingQueries) GetBookingDetails(ctx context.Context, id generic.BookingID) (generic.BookingDetails, error) {
	query := `
		SELECT ` + bookingColumns + `, ` + cabinColumns + `, ` + guestColumns + `
		FROM bookings b
		JOIN cabins c ON c.id = b.cabin_id
		JOIN guests g ON g.id = b.guest_id
		WHERE b.id = $1
	`
	var d generic.BookingDetails
	err := bq.q.QueryRowContext(ctx, query, int64(id)).Scan(detailsDest(&d)...)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.BookingDetails{}, &generic.NotFoundError{Kind: "booking", ID: id.String()}
	}
	if err != nil {
		return generic.BookingDetails{}, mapError("get booking details", err)
	}
	return d, nil
}

func (bq *bookingQueries) BookingsByGuest(ctx context.Context, guestID generic.GuestID) ([]generic.BookingDetails, error) {
	query := `
		SELECT ` + bookingColumns + `, ` + cabinColumns + `, ` + guestColumns + `
		FROM bookings b
		JOIN cabins c ON c.id = b.cabin_id
		JOIN guests g ON g.id = b.guest_id
		WHERE b.guest_id = $1
		ORDER BY b.start_date ASC, b.id ASC
	`
	rows, err := bq.q.QueryContext(ctx, query, int64(guestID))
	if err != nil {
		return nil, mapError("query guest bookings", err)
	}
	defer rows.Close()

	var result []generic.BookingDetails
	for rows.Next() {
		var d generic.BookingDetails
		if err := rows.Scan(detailsDest(&d)...); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("query guest bookings", err)
	}
	return result, nil
}

// =============================================================================
// CABIN LOCK
// =============================================================================

// WithCabinLock runs fn in a transaction holding the cabin's advisory lock.
// The lock is released at commit or rollback.
func (s *Store) WithCabinLock(ctx context.Context, cabinID generic.CabinID, fn func(generic.BookingStore) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", int64(cabinID)); err != nil {
		return mapError(fmt.Sprintf("lock cabin %d", cabinID), err)
	}

	if err := fn(&bookingQueries{q: sqlTx, now: s.now, inTx: true}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapError("commit", err)
	}
	return nil
}

// =============================================================================
// CABINS & GUESTS
// =============================================================================

func (s *Store) SaveCabin(ctx context.Context, c generic.Cabin) error {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, _ := json.Marshal(images)
	query := `
		INSERT INTO cabins (id, name, description, max_guests, regular_price, discount,
		                    images, city, country, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			max_guests = EXCLUDED.max_guests,
			regular_price = EXCLUDED.regular_price,
			discount = EXCLUDED.discount,
			images = EXCLUDED.images,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			address = EXCLUDED.address
	`
	_, err := s.db.ExecContext(ctx, query,
		int64(c.ID), c.Name, c.Description, c.MaxGuests,
		c.RegularPrice.String(), c.Discount.String(), string(imagesJSON),
		c.Location.City, c.Location.Country, c.Location.Address,
	)
	if err != nil {
		return mapError("save cabin", err)
	}
	return nil
}

func (s *Store) SaveGuest(ctx context.Context, g generic.Guest) error {
	query := `
		INSERT INTO guests (id, full_name, email, nationality)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			nationality = EXCLUDED.nationality
	`
	if _, err := s.db.ExecContext(ctx, query, int64(g.ID), g.FullName, g.Email, g.Nationality); err != nil {
		if isUniqueViolation(err) {
			return &generic.ValidationError{Field: "email", Message: "This email is already registered."}
		}
		return mapError("save guest", err)
	}
	return nil
}

func (s *Store) GetCabin(ctx context.Context, id generic.CabinID) (generic.Cabin, error) {
	var c generic.Cabin
	err := s.db.QueryRowContext(ctx, "SELECT "+cabinColumns+" FROM cabins c WHERE c.id = $1", int64(id)).
		Scan(columns.CabinDest(&c)...)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Cabin{}, &generic.NotFoundError{Kind: "cabin", ID: id.String()}
	}
	if err != nil {
		return generic.Cabin{}, mapError("get cabin", err)
	}
	return c, nil
}

func (s *Store) ListCabins(ctx context.Context) ([]generic.Cabin, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+cabinColumns+" FROM cabins c ORDER BY c.id")
	if err != nil {
		return nil, mapError("list cabins", err)
	}
	defer rows.Close()

	var cabins []generic.Cabin
	for rows.Next() {
		var c generic.Cabin
		if err := rows.Scan(columns.CabinDest(&c)...); err != nil {
			return nil, fmt.Errorf("failed to scan cabin: %w", err)
		}
		cabins = append(cabins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list cabins", err)
	}
	return cabins, nil
}

func (s *Store) GetGuest(ctx context.Context, id generic.GuestID) (generic.Guest, error) {
	return s.guestWhere(ctx, "g.id = $1", id.String(), int64(id))
}

func (s *Store) GetGuestByEmail(ctx context.Context, email string) (generic.Guest, error) {
	return s.guestWhere(ctx, "lower(g.email) = lower($1)", email, email)
}

func (s *Store) guestWhere(ctx context.Context, cond, label string, arg any) (generic.Guest, error) {
	var g generic.Guest
	err := s.db.QueryRowContext(ctx, "SELECT "+guestColumns+" FROM guests g WHERE "+cond, arg).
		Scan(columns.GuestDest(&g)...)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Guest{}, &generic.NotFoundError{Kind: "guest", ID: label}
	}
	if err != nil {
		return generic.Guest{}, mapError("get guest", err)
	}
	return g, nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (s *Store) Append(ctx context.Context, e generic.AuditEntry) error {
	var payload any
	if e.Payload != nil {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode audit payload: %w", err)
		}
		payload = string(b)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, ts, actor_id, action, booking_id, cabin_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Timestamp.UTC(), int64(e.ActorID), string(e.Action),
		int64(e.BookingID), int64(e.CabinID), payload,
	)
	if err != nil {
		return mapError("append audit entry", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, filter generic.AuditFilter) ([]generic.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.BookingID != nil {
		where = append(where, "booking_id = "+arg(int64(*filter.BookingID)))
	}
	if filter.CabinID != nil {
		where = append(where, "cabin_id = "+arg(int64(*filter.CabinID)))
	}
	if filter.ActorID != nil {
		where = append(where, "actor_id = "+arg(int64(*filter.ActorID)))
	}
	if len(filter.Actions) > 0 {
		actions := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			actions[i] = string(a)
		}
		where = append(where, "action = ANY("+arg(pq.Array(actions))+")")
	}

	query := "SELECT id, ts, actor_id, action, booking_id, cabin_id, payload FROM audit_log"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts ASC, seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("query audit log", err)
	}
	defer rows.Close()

	var entries []generic.AuditEntry
	for rows.Next() {
		var (
			e                           generic.AuditEntry
			action                      string
			actorID, bookingID, cabinID int64
		)
		err := rows.Scan(&e.ID, columns.Time(&e.Timestamp), &actorID, &action,
			&bookingID, &cabinID, columns.JSONMap(&e.Payload))
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.ActorID = generic.GuestID(actorID)
		e.Action = generic.AuditAction(action)
		e.BookingID = generic.BookingID(bookingID)
		e.CabinID = generic.CabinID(cabinID)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE audit_log, bookings, guests, cabins RESTART IDENTITY CASCADE")
	if err != nil {
		return mapError("reset", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func detailsDest(d *generic.BookingDetails) []any {
	dest := columns.BookingDest(&d.Booking)
	dest = append(dest, columns.CabinDest(&d.Cabin)...)
	return append(dest, columns.GuestDest(&d.Guest)...)
}

func statusStrings(list []generic.BookingStatus) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = string(s)
	}
	return out
}

func containsStatus(list []generic.BookingStatus, s generic.BookingStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.ExclusionViolation
}

// mapError wraps driver errors in *generic.PersistenceError, marking the
// ones worth retrying as transient.
// isUniqueViolation reports a duplicate key, e.g. a guest email already
// used by another guest.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}

func mapError(op string, err error) error {
	return &generic.PersistenceError{Op: op, Transient: isTransient(err), Err: err}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	code := string(pqErr.Code)
	switch code {
	case pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected,
		pgerrcode.LockNotAvailable,
		pgerrcode.QueryCanceled:
		return true
	}
	return pgerrcode.IsConnectionException(code)
}
