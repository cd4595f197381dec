package booking

import (
	"sort"

	"github.com/warp/cabin-engine/generic"
)

// SortOrder orders a guest's reservation list.
type SortOrder string

const (
	SortAsc    SortOrder = "asc"    // soonest checkout first
	SortDesc   SortOrder = "desc"   // latest checkout first
	SortRecent SortOrder = "recent" // latest check-in first
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "":
		return SortAsc, nil
	case SortAsc, SortDesc, SortRecent:
		return SortOrder(s), nil
	}
	return "", &generic.ValidationError{Field: "sort", Message: "sort must be one of asc, desc, recent"}
}

// GroupedBookings is a guest's reservation list split by lifecycle.
type GroupedBookings struct {
	Upcoming []generic.BookingDetails `json:"upcoming"`
	Past     []generic.BookingDetails `json:"past"`
	Canceled []generic.BookingDetails `json:"canceled"`
}

// GroupBookings splits bookings into upcoming (pending, confirmed,
// checked-in), past (checked-out) and canceled, each sorted by order.
func GroupBookings(bookings []generic.BookingDetails, order SortOrder) GroupedBookings {
	g := GroupedBookings{
		Upcoming: []generic.BookingDetails{},
		Past:     []generic.BookingDetails{},
		Canceled: []generic.BookingDetails{},
	}
	for _, b := range bookings {
		switch b.Status {
		case generic.StatusPending, generic.StatusConfirmed, generic.StatusCheckedIn:
			g.Upcoming = append(g.Upcoming, b)
		case generic.StatusCheckedOut:
			g.Past = append(g.Past, b)
		case generic.StatusCanceled:
			g.Canceled = append(g.Canceled, b)
		}
	}
	for _, list := range [][]generic.BookingDetails{g.Upcoming, g.Past, g.Canceled} {
		sortBookings(list, order)
	}
	return g
}

func sortBookings(list []generic.BookingDetails, order SortOrder) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Period, list[j].Period
		switch order {
		case SortDesc:
			if !a.End.Equal(b.End) {
				return a.End.After(b.End)
			}
			return a.Start.After(b.Start)
		case SortRecent:
			if !a.Start.Equal(b.Start) {
				return a.Start.After(b.Start)
			}
			return a.End.After(b.End)
		default:
			if !a.End.Equal(b.End) {
				return a.End.Before(b.End)
			}
			return a.Start.Before(b.Start)
		}
	})
}
