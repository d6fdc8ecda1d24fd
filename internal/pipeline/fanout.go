package pipeline

import (
	"context"
	"sync"

	"github.com/couchcryptid/swell-api/internal/domain"
)

// All runs the single-station pipeline concurrently over the full registry.
// The result always has one entry per registered station, in registry order;
// a failed station carries its error tag and never affects its siblings.
func (s *Service) All(ctx context.Context) []domain.StationResult {
	start := s.clock.Now()
	stations := s.registry.Stations()
	results := make([]domain.StationResult, len(stations))

	var wg sync.WaitGroup
	for i, st := range stations {
		wg.Add(1)
		go func(i int, st domain.StationDescriptor) {
			defer wg.Done()
			results[i] = s.stationResult(ctx, st)
		}(i, st)
	}
	wg.Wait()

	s.metrics.FanoutSeconds.Observe(s.clock.Since(start).Seconds())
	s.ready.Store(true)

	return results
}

func (s *Service) stationResult(ctx context.Context, st domain.StationDescriptor) domain.StationResult {
	res := domain.StationResult{
		ID:   st.ID,
		Name: st.Name,
		Lat:  st.Lat,
		Lon:  st.Lon,
	}

	obs, err := s.Current(ctx, st.ID)
	if err != nil {
		res.Error = err.Error()
		res.ErrorKind = domain.ErrorKind(err)
		s.metrics.StationFailures.WithLabelValues(st.ID).Inc()
		s.logger.Warn("station refresh failed", "station", st.ID, "kind", res.ErrorKind, "error", err)
		return res
	}

	res.Observation = obs
	return res
}
