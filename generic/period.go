package generic

// =============================================================================
// PERIOD - Closed calendar-day interval
// =============================================================================

// Period is the closed interval [Start, End] of calendar days.
//
// A booking is stored as a Period where Start is the check-in day and End is
// the checkout day. The nights of a stay are [Start, End) so Nights() is
// End - Start.
type Period struct {
	Start Day `json:"from"`
	End   Day `json:"to"`
}

func NewPeriod(start, end Day) Period {
	return Period{Start: start, End: end}
}

// Valid reports whether Start <= End.
func (p Period) Valid() bool {
	return p.Start.BeforeOrEqual(p.End)
}

// Contains returns true if the day is within the period [Start, End].
func (p Period) Contains(d Day) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Nights returns the number of nights of a stay described by this period.
func (p Period) Nights() int {
	return DaysBetween(p.Start, p.End)
}

// Overlaps reports whether the two closed intervals share any point. With
// inclusive set, touching boundaries (p.End == other.Start) count as an
// overlap; without it they do not.
func (p Period) Overlaps(other Period, inclusive bool) bool {
	if inclusive {
		return p.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(p.End)
	}
	return p.Start.Before(other.End) && other.Start.Before(p.End)
}

// Blocked returns the part of a stay that no other stay may touch: the
// check-in and checkout days are turnover days and are shared, so the
// blocked range is [Start+1, End-1]. A one-night stay collapses to a range
// where To < From (see IsCollapsed).
func (p Period) Blocked() Period {
	return Period{Start: p.Start.AddDays(1), End: p.End.AddDays(-1)}
}

// IsCollapsed reports End < Start. Collapsed ranges are still reported to
// the calendar for disabling but never occupy a day.
func (p Period) IsCollapsed() bool {
	return p.End.Before(p.Start)
}

// Intersects reports whether any day of p falls inside window. Used to select
// bookings relevant to a month.
func (p Period) Intersects(window Period) bool {
	return p.End.AfterOrEqual(window.Start) && p.Start.BeforeOrEqual(window.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// SpanningMonths returns the window from the first day of p.Start's month to
// the last day of p.End's month.
func (p Period) SpanningMonths() Period {
	return Period{
		Start: MonthOf(p.Start).Start,
		End:   MonthOf(p.End).End,
	}
}
