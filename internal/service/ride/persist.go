package ride

import (
	"context"
	"fmt"

	"ridetrace/internal/model"
)

// Persister is durable ride storage. *postgres.RideRepository satisfies it.
type Persister interface {
	SaveRides(ctx context.Context, rides []*model.Ride) error
	FindRide(ctx context.Context, id string) (*model.Ride, error)
}

// Rides returns every ride held in memory.
func (s *Service) Rides() []*model.Ride {
	return s.store.GetAllValues()
}

// FlushRides writes rides changed since the last flush to the persister and
// returns how many were saved. Dirty flags are cleared only on success, and
// only for rides not stored again while the save was running.
func (s *Service) FlushRides(ctx context.Context) (int, error) {
	if s.persist == nil {
		return 0, nil
	}
	dirty := s.store.GetDirtyVersions()
	if len(dirty) == 0 {
		return 0, nil
	}

	seen := make(map[string]uint64, len(dirty))
	rides := make([]*model.Ride, 0, len(dirty))
	for id, v := range dirty {
		seen[id] = v.Version
		rides = append(rides, v.Value)
	}
	if err := s.persist.SaveRides(ctx, rides); err != nil {
		return 0, fmt.Errorf("failed to flush %d rides: %w", len(rides), err)
	}
	s.store.ClearDirtyVersions(seen)
	s.log.Info().Int("count", len(rides)).Msg("flushed rides")
	return len(rides), nil
}
