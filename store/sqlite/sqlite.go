/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements generic.Store (bookings, cabins, guests, audit log) on SQLite.
  The PostgreSQL backend in store/postgres follows the same layout with
  dialect differences only.

NO-DOUBLE-BOOKING ENFORCEMENT:
  The bookings_no_overlap trigger aborts any insert of an active booking
  whose nights intersect another active booking of the same cabin. The
  driver error is mapped to *generic.ConflictError, so the invariant holds
  even for callers that skip the availability check.

KEY TABLES:
  cabins:    Cabin reference data (prices as decimal TEXT)
  guests:    Guest reference data
  bookings:  Reservations, never deleted; dates as YYYY-MM-DD TEXT
  audit_log: Append-only record of who did what when

INDEXES:
  - idx_bookings_cabin_start: Active bookings per cabin (hot path)
  - idx_bookings_guest:       Reservation list
  - idx_bookings_status:      Status filtering

CONCURRENCY:
  Opened with WAL and _txlock=immediate. Every transaction takes the
  database write lock at BEGIN, so WithCabinLock serializes check-then-insert
  across connections and processes. A mutex additionally serializes writers
  inside one process to avoid SQLITE_BUSY churn.

USAGE:
  store, err := sqlite.New("./data/cabins.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
  - store/postgres/postgres.go: PostgreSQL implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/warp/cabin-engine/generic"
	"github.com/warp/cabin-engine/store/columns"
)

// Store implements generic.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

var _ generic.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cabins (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		max_guests INTEGER NOT NULL,
		regular_price TEXT NOT NULL,
		discount TEXT NOT NULL DEFAULT '0',
		images_json TEXT NOT NULL DEFAULT '[]',
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS guests (
		id INTEGER PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		nationality TEXT NOT NULL DEFAULT ''
	);

	-- Bookings are never deleted; cancellation is a status change.
	CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cabin_id INTEGER NOT NULL REFERENCES cabins(id),
		guest_id INTEGER NOT NULL REFERENCES guests(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		num_guests INTEGER NOT NULL,
		is_breakfast INTEGER NOT NULL DEFAULT 0,
		cabin_price TEXT NOT NULL,
		discount TEXT NOT NULL,
		breakfast_price TEXT NOT NULL,
		cabin_amount TEXT NOT NULL,
		breakfast_amount TEXT NOT NULL,
		total_price TEXT NOT NULL,
		cabin_paid TEXT NOT NULL DEFAULT '0',
		breakfast_paid TEXT NOT NULL DEFAULT '0',
		total_paid TEXT NOT NULL DEFAULT '0',
		cabin_refund TEXT NOT NULL DEFAULT '0',
		breakfast_refund TEXT NOT NULL DEFAULT '0',
		total_refund TEXT NOT NULL DEFAULT '0',
		observations TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		CHECK (start_date < end_date)
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_cabin_start
		ON bookings(cabin_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_bookings_guest
		ON bookings(guest_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_status
		ON bookings(status);

	-- CRITICAL: two active bookings of one cabin may share a turnover day
	-- but never a night. ISO dates compare correctly as text.
	CREATE TRIGGER IF NOT EXISTS bookings_no_overlap
	BEFORE INSERT ON bookings
	WHEN NEW.status IN ('pending', 'confirmed', 'checked-in')
	BEGIN
		SELECT RAISE(ABORT, 'booking_overlap')
		WHERE EXISTS (
			SELECT 1 FROM bookings
			WHERE cabin_id = NEW.cabin_id
			  AND status IN ('pending', 'confirmed', 'checked-in')
			  AND start_date < NEW.end_date
			  AND NEW.start_date < end_date
		);
	END;

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		actor_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		booking_id INTEGER NOT NULL,
		cabin_id INTEGER NOT NULL,
		payload_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_booking
		ON audit_log(booking_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// QUERIER - Shared by the pool and by transactions
// =============================================================================

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// bookingQueries implements generic.BookingStore over any querier.
type bookingQueries struct {
	q   querier
	now func() time.Time
}

const bookingColumns = `
	b.id, b.cabin_id, b.guest_id, b.start_date, b.end_date, b.status, b.num_guests,
	b.is_breakfast, b.cabin_price, b.discount, b.breakfast_price, b.cabin_amount,
	b.breakfast_amount, b.total_price, b.cabin_paid, b.breakfast_paid, b.total_paid,
	b.cabin_refund, b.breakfast_refund, b.total_refund, b.observations, b.created_at`

const cabinColumns = `
	c.id, c.name, c.description, c.max_guests, c.regular_price, c.discount,
	c.images_json, c.city, c.country, c.address`

const guestColumns = `g.id, g.full_name, g.email, g.nationality`

const activeStatuses = "('pending', 'confirmed', 'checked-in')"

// =============================================================================
// BOOKING STORE (generic.BookingStore interface)
// =============================================================================

func (s *Store) queries() *bookingQueries { return &bookingQueries{q: s.db, now: s.now} }

func (s *Store) ActiveBookings(ctx context.Context, cabinID generic.CabinID, window generic.Period) ([]generic.Booking, error) {
	return s.queries().ActiveBookings(ctx, cabinID, window)
}

func (s *Store) InsertBooking(ctx context.Context, nb generic.NewBooking) (generic.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries().InsertBooking(ctx, nb)
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id generic.BookingID, status generic.BookingStatus, owner generic.GuestID, expected ...generic.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer sqlTx.Rollback()

	q := &bookingQueries{q: sqlTx, now: s.now}
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
		WHERE b.cabin_id = ?
		  AND b.status IN ` + activeStatuses + `
		  AND b.end_date >= ? AND b.start_date <= ?
		ORDER BY b.start_date ASC, b.id ASC
	`
	rows, err := bq.q.QueryContext(ctx, query, int64(cabinID), window.Start.String(), window.End.String())
	if err != nil {
		return nil, mapError("query active bookings", err)
	}
	defer rows.Close()

	var bookings []generic.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
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
	var exists int
	err := bq.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM cabins WHERE id = ?", int64(nb.CabinID)).Scan(&exists)
	if err != nil {
		return generic.Booking{}, mapError("lookup cabin", err)
	}
	if exists == 0 {
		return generic.Booking{}, &generic.NotFoundError{Kind: "cabin", ID: nb.CabinID.String()}
	}

	createdAt := bq.now().UTC()
	query := `
		INSERT INTO bookings
		(cabin_id, guest_id, start_date, end_date, status, num_guests, is_breakfast,
		 cabin_price, discount, breakfast_price, cabin_amount, breakfast_amount, total_price,
		 cabin_paid, breakfast_paid, total_paid, cabin_refund, breakfast_refund, total_refund,
		 observations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := bq.q.ExecContext(ctx, query,
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
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isOverlapError(err) {
			return generic.Booking{}, bq.conflict(ctx, nb)
		}
		return generic.Booking{}, mapError("insert booking", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return generic.Booking{}, mapError("insert booking", err)
	}
	return nb.ToBooking(generic.BookingID(id), createdAt), nil
}

// conflict builds the ConflictError for a rejected insert, naming the
// booking in the way when it can still be read.
func (bq *bookingQueries) conflict(ctx context.Context, nb generic.NewBooking) error {
	cerr := &generic.ConflictError{CabinID: nb.CabinID, Requested: nb.Period}
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
	err := bq.q.QueryRowContext(ctx, "SELECT guest_id, status FROM bookings WHERE id = ?", int64(id)).Scan(&guestID, &current)
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

	// The status guard in WHERE catches a concurrent change between read and write.
	res, err := bq.q.ExecContext(ctx,
		"UPDATE bookings SET status = ? WHERE id = ? AND guest_id = ? AND status = ?",
		string(status), int64(id), int64(owner), current,
	)
	if err != nil {
		return mapError("update booking status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &generic.InvalidTransitionError{BookingID: id, From: from, To: status}
	}
	return nil
}

func (bq *bookingQueries) GetBooking(ctx context.Context, id generic.BookingID) (generic.Booking, error) {
	row := bq.q.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ?", int64(id))
	b, err := scanBooking(row)
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
		WHERE b.id = ?
	`
	d, err := scanDetails(bq.q.QueryRowContext(ctx, query, int64(id)))
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
		WHERE b.guest_id = ?
		ORDER BY b.start_date ASC, b.id ASC
	`
	rows, err := bq.q.QueryContext(ctx, query, int64(guestID))
	if err != nil {
		return nil, mapError("query guest bookings", err)
	}
	defer rows.Close()

	var result []generic.BookingDetails
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("query guest bookings", err)
	}
	return result, nil
}

// =============================================================================
// CABIN LOCK (generic.TxStore interface)
// =============================================================================

// WithCabinLock executes fn within an immediate transaction. SQLite has one
// writer, so the lock is database-wide rather than per cabin.
func (s *Store) WithCabinLock(ctx context.Context, cabinID generic.CabinID, fn func(generic.BookingStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(fmt.Sprintf("lock cabin %d", cabinID), err)
	}
	defer sqlTx.Rollback()

	if err := fn(&bookingQueries{q: sqlTx, now: s.now}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapError("commit", err)
	}
	return nil
}

// =============================================================================
// CABIN STORE (generic.CabinStore interface)
// =============================================================================

// SaveCabin inserts or replaces a cabin.
func (s *Store) SaveCabin(ctx context.Context, c generic.Cabin) error {
	images, _ := json.Marshal(c.Images)
	if c.Images == nil {
		images = []byte("[]")
	}
	query := `
		INSERT INTO cabins (id, name, description, max_guests, regular_price, discount,
		                    images_json, city, country, address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			max_guests = excluded.max_guests,
			regular_price = excluded.regular_price,
			discount = excluded.discount,
			images_json = excluded.images_json,
			city = excluded.city,
			country = excluded.country,
			address = excluded.address
	`
	_, err := s.db.ExecContext(ctx, query,
		int64(c.ID), c.Name, c.Description, c.MaxGuests,
		c.RegularPrice.String(), c.Discount.String(), string(images),
		c.Location.City, c.Location.Country, c.Location.Address,
	)
	if err != nil {
		return mapError("save cabin", err)
	}
	return nil
}

// SaveGuest inserts or replaces a guest.
func (s *Store) SaveGuest(ctx context.Context, g generic.Guest) error {
	query := `
		INSERT INTO guests (id, full_name, email, nationality)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			nationality = excluded.nationality
	`
	if _, err := s.db.ExecContext(ctx, query, int64(g.ID), g.FullName, g.Email, g.Nationality); err != nil {
		return mapError("save guest", err)
	}
	return nil
}

func (s *Store) GetCabin(ctx context.Context, id generic.CabinID) (generic.Cabin, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+cabinColumns+" FROM cabins c WHERE c.id = ?", int64(id))
	c, err := scanCabin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Cabin{}, &generic.NotFoundError{Kind: "cabin", ID: id.String()}
	}
	return c, err
}

func (s *Store) ListCabins(ctx context.Context) ([]generic.Cabin, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+cabinColumns+" FROM cabins c ORDER BY c.id")
	if err != nil {
		return nil, mapError("list cabins", err)
	}
	defer rows.Close()

	var cabins []generic.Cabin
	for rows.Next() {
		c, err := scanCabin(rows)
		if err != nil {
			return nil, err
		}
		cabins = append(cabins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list cabins", err)
	}
	return cabins, nil
}

func (s *Store) GetGuest(ctx context.Context, id generic.GuestID) (generic.Guest, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+guestColumns+" FROM guests g WHERE g.id = ?", int64(id))
	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Guest{}, &generic.NotFoundError{Kind: "guest", ID: id.String()}
	}
	return g, err
}

func (s *Store) GetGuestByEmail(ctx context.Context, email string) (generic.Guest, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+guestColumns+" FROM guests g WHERE g.email = ?", email)
	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Guest{}, &generic.NotFoundError{Kind: "guest", ID: email}
	}
	return g, err
}

// =============================================================================
// AUDIT LOG (generic.AuditLog interface)
// =============================================================================

func (s *Store) Append(ctx context.Context, e generic.AuditEntry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode audit payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, timestamp, actor_id, action, booking_id, cabin_id, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC().Format(time.RFC3339Nano), int64(e.ActorID), string(e.Action),
		int64(e.BookingID), int64(e.CabinID), string(payload),
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
	if filter.BookingID != nil {
		where = append(where, "booking_id = ?")
		args = append(args, int64(*filter.BookingID))
	}
	if filter.CabinID != nil {
		where = append(where, "cabin_id = ?")
		args = append(args, int64(*filter.CabinID))
	}
	if filter.ActorID != nil {
		where = append(where, "actor_id = ?")
		args = append(args, int64(*filter.ActorID))
	}
	if len(filter.Actions) > 0 {
		marks := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			marks[i] = "?"
			args = append(args, string(a))
		}
		where = append(where, "action IN ("+strings.Join(marks, ", ")+")")
	}

	query := "SELECT id, timestamp, actor_id, action, booking_id, cabin_id, payload_json FROM audit_log"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp ASC, rowid ASC"

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

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"audit_log", "bookings", "guests", "cabins"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'bookings'")
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(sc scanner) (generic.Booking, error) {
	var b generic.Booking
	err := sc.Scan(columns.BookingDest(&b)...)
	return b, err
}

func scanDetails(sc scanner) (generic.BookingDetails, error) {
	var d generic.BookingDetails
	dest := columns.BookingDest(&d.Booking)
	dest = append(dest, columns.CabinDest(&d.Cabin)...)
	dest = append(dest, columns.GuestDest(&d.Guest)...)
	if err := sc.Scan(dest...); err != nil {
		return d, err
	}
	return d, nil
}

func scanCabin(sc scanner) (generic.Cabin, error) {
	var c generic.Cabin
	err := sc.Scan(columns.CabinDest(&c)...)
	return c, err
}

func scanGuest(sc scanner) (generic.Guest, error) {
	var g generic.Guest
	err := sc.Scan(columns.GuestDest(&g)...)
	return g, err
}

func containsStatus(list []generic.BookingStatus, s generic.BookingStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func isOverlapError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint &&
		strings.Contains(se.Error(), "booking_overlap")
}

// mapError wraps driver errors. Busy and locked databases and expired
// contexts are transient.
func mapError(op string, err error) error {
	transient := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	var se sqlite3.Error
	if errors.As(err, &se) {
		transient = se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return &generic.PersistenceError{Op: op, Transient: transient, Err: err}
}
