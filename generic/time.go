package generic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DAY - Calendar-day value (this IS a calendar system)
// =============================================================================

// Day is a calendar day. The wrapped time is always midnight UTC, so two Days
// built from the same calendar date compare equal regardless of the caller's
// timezone or time-of-day.
type Day struct {
	Time time.Time
}

// DateLayout is the wire and storage format for calendar days.
const DateLayout = "2006-01-02"

// Constructors
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf converts t to UTC and drops the time of day.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

func Today() Day {
	return DayOf(time.Now())
}

// ParseDay accepts an ISO date ("2024-06-10") or an RFC 3339 timestamp
// ("2024-06-10T00:00:00+02:00"). A timestamp keeps the calendar date written
// in its own offset, so a client's local midnight never slides to the day
// before.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day{}, &ValidationError{Field: "date", Message: "date is required"}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewDay(t.Date()), nil
	}
	return Day{}, &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q", s)}
}

// MustParseDay is ParseDay for fixtures and tests.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Day) Before(other Day) bool        { return d.Time.Before(other.Time) }
func (d Day) Equal(other Day) bool         { return d.Time.Equal(other.Time) }
func (d Day) After(other Day) bool         { return d.Time.After(other.Time) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.After(other) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.Before(other) }

// Arithmetic
func (d Day) AddDays(n int) Day   { return Day{Time: d.Time.AddDate(0, 0, n)} }
func (d Day) AddMonths(n int) Day { return Day{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Day) Year() int         { return d.Time.Year() }
func (d Day) Month() time.Month { return d.Time.Month() }
func (d Day) Day() int          { return d.Time.Day() }
func (d Day) IsZero() bool      { return d.Time.IsZero() }
func (d Day) String() string    { return d.Time.Format(DateLayout) }

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the whole number of calendar days from -> to.
// Negative when to is before from. Works on Unix seconds since time.Duration
// saturates past ~292 years.
func DaysBetween(from, to Day) int {
	return int((to.Time.Unix() - from.Time.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// StartOfMonth returns the full calendar month as a period. Month overflow is
// normalized the way time.Date does (month 13 is January of the next year).
func StartOfMonth(year int, month time.Month) Period {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Period{Start: Day{Time: first}, End: Day{Time: last}}
}

// MonthOf returns the calendar month containing d.
func MonthOf(d Day) Period {
	return StartOfMonth(d.Year(), d.Month())
}

func EndOfMonth(year int, month time.Month) Day {
	return StartOfMonth(year, month).End
}
