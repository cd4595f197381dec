package booking

import (
	"fmt"

	"github.com/warp/cabin-engine/generic"
)

// ValidateStay applies the form rules to a requested stay: dates present and
// ordered, no check-in before today, nights within the configured bounds and
// guests within [1, cabin capacity].
func ValidateStay(settings generic.BookingSettings, cabin generic.Cabin, period generic.Period, guests int, today generic.Day) error {
	if period.Start.IsZero() {
		return &generic.ValidationError{Field: "startDate", Message: "Please select a start date."}
	}
	if period.End.IsZero() {
		return &generic.ValidationError{Field: "endDate", Message: "Please select an end date."}
	}
	if !period.Start.Before(period.End) {
		return &generic.ValidationError{Field: "endDate", Message: "The end date must be after the start date."}
	}
	if period.Start.Before(today) {
		return &generic.ValidationError{Field: "startDate", Message: "The stay cannot start in the past."}
	}

	nights := period.Nights()
	if settings.MinNights > 0 && nights < settings.MinNights {
		return &generic.ValidationError{Field: "dates", Message: fmt.Sprintf(
			"The stay must be at least the minimum number of nights (%d).", settings.MinNights)}
	}
	if settings.MaxNights > 0 && nights > settings.MaxNights {
		return &generic.ValidationError{Field: "dates", Message: fmt.Sprintf(
			"The stay cannot exceed the maximum number of nights (%d).", settings.MaxNights)}
	}

	if guests < 1 {
		return &generic.ValidationError{Field: "guests", Message: "At least one guest is required."}
	}
	if cabin.MaxGuests > 0 && guests > cabin.MaxGuests {
		return &generic.ValidationError{Field: "guests", Message: fmt.Sprintf(
			"The number of guests exceeds the maximum limit (%d).", cabin.MaxGuests)}
	}
	return nil
}
