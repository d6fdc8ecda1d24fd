package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/couchcryptid/swell-api/internal/cache"
	"github.com/couchcryptid/swell-api/internal/domain"
	"github.com/couchcryptid/swell-api/internal/ndbc"
)

// History returns the station's observations within the trailing window of
// requested hours, sorted ascending by timestamp. Rows keep sentinel fields
// as absent rather than being dropped.
func (s *Service) History(ctx context.Context, stationID string, hours int) ([]domain.Observation, error) {
	st, ok := s.registry.Lookup(stationID)
	if !ok {
		return nil, domain.ErrUnknownStation
	}

	key := fmt.Sprintf("%s:%d", st.ID, hours)
	if v, ok := s.cacheGet(cache.ClassHistory, key); ok {
		return v.([]domain.Observation), nil
	}

	start := s.clock.Now()
	text, err := s.feed.Fetch(ctx, st.ID, s.extendedTimeout)
	s.metrics.FeedFetchSeconds.WithLabelValues("history").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.FeedFetches.WithLabelValues(domain.ErrorKind(err)).Inc()
		return nil, err
	}
	s.metrics.FeedFetches.WithLabelValues("success").Inc()

	cutoff := s.clock.Now().Add(-time.Duration(hours) * time.Hour)

	all := ndbc.History(text, st.ID)
	window := make([]domain.Observation, 0, len(all))
	for _, obs := range all {
		if obs.Timestamp.Before(cutoff) {
			continue
		}
		window = append(window, obs)
	}

	sort.Slice(window, func(i, j int) bool {
		return window[i].Timestamp.Before(window[j].Timestamp)
	})

	s.store.Put(cache.ClassHistory, key, window)
	return window, nil
}
