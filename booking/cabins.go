package booking

import (
	"context"

	"github.com/warp/cabin-engine/generic"
)

// CabinAvailability is a cabin preview with its next free window.
type CabinAvailability struct {
	generic.Cabin
	NextAvailable generic.Window `json:"next_available"`
}

// Cabin returns one cabin with its next window from today.
func (s *Service) Cabin(ctx context.Context, id generic.CabinID) (CabinAvailability, error) {
	c, err := s.store.GetCabin(ctx, id)
	if err != nil {
		return CabinAvailability{}, err
	}
	w, err := s.availability.NextAvailable(ctx, id, s.Today())
	if err != nil {
		return CabinAvailability{}, err
	}
	return CabinAvailability{Cabin: c, NextAvailable: w}, nil
}

// AvailableCabins lists cabins with their next window from today. When stay
// is set, cabins with an active booking whose nights intersect it are left
// out.
func (s *Service) AvailableCabins(ctx context.Context, stay *generic.Period) ([]CabinAvailability, error) {
	cabins, err := s.store.ListCabins(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	result := make([]CabinAvailability, 0, len(cabins))
	for _, c := range cabins {
		if stay != nil {
			free, err := s.validator.IsDateRangeAvailable(ctx, c.ID, *stay)
			if err != nil {
				return nil, err
			}
			if !free {
				continue
			}
		}
		w, err := s.availability.NextAvailable(ctx, c.ID, today)
		if err != nil {
			return nil, err
		}
		result = append(result, CabinAvailability{Cabin: c, NextAvailable: w})
	}
	return result, nil
}
