// Package columns decodes the SQL encodings shared by the SQLite and
// PostgreSQL stores: dates as YYYY-MM-DD (TEXT or DATE), money as decimal
// text (TEXT or NUMERIC), timestamps and JSON string lists.
package columns

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/cabin-engine/generic"
)

// Day returns a sql.Scanner writing into d.
func Day(d *generic.Day) DayColumn { return DayColumn{d} }

type DayColumn struct{ d *generic.Day }

func (c DayColumn) Scan(src any) error {
	if t, ok := src.(time.Time); ok {
		*c.d = generic.DayOf(t)
		return nil
	}
	d, err := generic.ParseDay(String(src))
	if err != nil {
		return fmt.Errorf("failed to scan date %v: %w", src, err)
	}
	*c.d = d
	return nil
}

// Money returns a sql.Scanner writing into m.
func Money(m *generic.Money) MoneyColumn { return MoneyColumn{m} }

type MoneyColumn struct{ m *generic.Money }

func (c MoneyColumn) Scan(src any) error {
	m, err := generic.ParseMoney(String(src))
	if err != nil {
		return fmt.Errorf("failed to scan amount %v: %w", src, err)
	}
	*c.m = m
	return nil
}

// Time returns a sql.Scanner writing a UTC timestamp into t.
func Time(t *time.Time) TimeColumn { return TimeColumn{t} }

type TimeColumn struct{ t *time.Time }

func (c TimeColumn) Scan(src any) error {
	if t, ok := src.(time.Time); ok {
		*c.t = t.UTC()
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, String(src))
	if err != nil {
		return fmt.Errorf("failed to scan timestamp %v: %w", src, err)
	}
	*c.t = t.UTC()
	return nil
}

// JSONStrings returns a sql.Scanner decoding a JSON array into list. An
// empty array decodes to nil.
func JSONStrings(list *[]string) JSONStringsColumn { return JSONStringsColumn{list} }

type JSONStringsColumn struct{ list *[]string }

func (c JSONStringsColumn) Scan(src any) error {
	raw := String(src)
	if raw == "" {
		*c.list = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return fmt.Errorf("failed to scan string list: %w", err)
	}
	if len(list) == 0 {
		list = nil
	}
	*c.list = list
	return nil
}

// JSONMap returns a sql.Scanner decoding a JSON object into m. NULL leaves
// m nil.
func JSONMap(m *map[string]any) JSONMapColumn { return JSONMapColumn{m} }

type JSONMapColumn struct{ m *map[string]any }

func (c JSONMapColumn) Scan(src any) error {
	raw := String(src)
	if raw == "" || raw == "null" {
		*c.m = nil
		return nil
	}
	return json.Unmarshal([]byte(raw), c.m)
}

// =============================================================================
// ROW DESTINATIONS
// =============================================================================

// BookingDest returns Scan destinations for the booking column list both
// stores select, in order.
func BookingDest(b *generic.Booking) []any {
	return []any{
		(*int64)(&b.ID), (*int64)(&b.CabinID), (*int64)(&b.GuestID),
		Day(&b.Period.Start), Day(&b.Period.End),
		(*string)(&b.Status), &b.NumGuests, &b.IsBreakfast,
		Money(&b.CabinPrice), Money(&b.Discount), Money(&b.BreakfastPrice),
		Money(&b.CabinAmount), Money(&b.BreakfastAmount), Money(&b.TotalPrice),
		Money(&b.Payments.CabinPaid), Money(&b.Payments.BreakfastPaid), Money(&b.Payments.TotalPaid),
		Money(&b.Payments.CabinRefund), Money(&b.Payments.BreakfastRefund), Money(&b.Payments.TotalRefund),
		&b.Observations, Time(&b.CreatedAt),
	}
}

func CabinDest(c *generic.Cabin) []any {
	return []any{
		(*int64)(&c.ID), &c.Name, &c.Description, &c.MaxGuests,
		Money(&c.RegularPrice), Money(&c.Discount), JSONStrings(&c.Images),
		&c.Location.City, &c.Location.Country, &c.Location.Address,
	}
}

func GuestDest(g *generic.Guest) []any {
	return []any{(*int64)(&g.ID), &g.FullName, &g.Email, &g.Nationality}
}

// String converts a driver value to its text form.
func String(src any) string {
	switch v := src.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
