/*
availability.go - Interval math over a single cabin's calendar

PURPOSE:
  Turns a cabin's active stays into what a guest can still book:
  1. The blocked ranges of a calendar month (for disabling days)
  2. The next window in which a new stay fits

TURNOVER RULE:
  The checkout day of one stay may be the check-in day of the next. A stay
  therefore blocks [Start+1, End-1] only; see Period.Blocked.

MINIMUM GAP:
  A free gap is only usable when it spans at least MinUsableGap days. A gap
  of one day between a checkout and a check-in is turnover only.

EXAMPLE:
  stays := []Period{{Start: june10, End: june15}}
  UnavailableRangesForMonth(stays, MonthOf(june1))  // [{june11, june14}]
  NextAvailableWindow(stays, june1)                 // {From: june1, To: june10}

SEE ALSO:
  - period.go: Overlaps, Blocked
  - booking/availability.go: store-backed service with caching
*/
package generic

import "sort"

// MinUsableGap is the smallest gap, in days, that can hold a new stay.
const MinUsableGap = 2

// =============================================================================
// WINDOW - Result of a next-availability query
// =============================================================================

// Window is a free interval. From == nil means nothing is available; To ==
// nil means the availability is open-ended.
type Window struct {
	From *Day `json:"from,omitempty"`
	To   *Day `json:"to,omitempty"`
}

func (w Window) IsEmpty() bool     { return w.From == nil }
func (w Window) IsOpenEnded() bool { return w.From != nil && w.To == nil }

func openWindow(from Day) Window {
	return Window{From: &from}
}

func boundedWindow(from, to Day) Window {
	return Window{From: &from, To: &to}
}

// =============================================================================
// UNAVAILABLE RANGES
// =============================================================================

// UnavailableRangesForMonth returns the blocked range of every stay that
// intersects month, ascending by start. A one-night stay yields a collapsed
// range; it is kept so the caller can disable the turnover days around it.
func UnavailableRangesForMonth(stays []Period, month Period) []Period {
	ranges := make([]Period, 0, len(stays))
	for _, s := range stays {
		if !s.Intersects(month) {
			continue
		}
		ranges = append(ranges, s.Blocked())
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start.Before(ranges[j].Start)
	})
	return ranges
}

// =============================================================================
// NEXT AVAILABLE WINDOW
// =============================================================================

// NextAvailableWindow scans the stays in start order from ref forward and
// returns the first usable gap.
//
// ALGORITHM (single pass):
//  1. current := ref
//  2. for each stay:
//     - current < stay.Start: if the gap is >= MinUsableGap days return
//       [current, stay.Start]; otherwise the gap is turnover only, jump to
//       stay.End.
//     - current within [stay.Start, stay.End]: jump to stay.End.
//     - stay ended before current: skip.
//  3. past the last stay: open-ended from current when current has moved at
//     least MinUsableGap days past ref, otherwise nothing.
//
// Stays that ended on or before ref are ignored; if none remain the calendar
// is free from ref.
func NextAvailableWindow(stays []Period, ref Day) Window {
	upcoming := make([]Period, 0, len(stays))
	for _, s := range stays {
		if s.End.After(ref) {
			upcoming = append(upcoming, s)
		}
	}
	if len(upcoming) == 0 {
		return openWindow(ref)
	}

	if !sort.SliceIsSorted(upcoming, func(i, j int) bool {
		return upcoming[i].Start.Before(upcoming[j].Start)
	}) {
		sort.SliceStable(upcoming, func(i, j int) bool {
			return upcoming[i].Start.Before(upcoming[j].Start)
		})
	}

	current := ref
	for _, s := range upcoming {
		if current.Before(s.Start) {
			if DaysBetween(current, s.Start) >= MinUsableGap {
				return boundedWindow(current, s.Start)
			}
			current = s.End
			continue
		}
		if s.Contains(current) {
			current = s.End
		}
	}

	if DaysBetween(ref, current) >= MinUsableGap {
		return openWindow(current)
	}
	return Window{}
}
