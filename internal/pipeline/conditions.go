package pipeline

import (
	"context"

	"github.com/couchcryptid/swell-api/internal/cache"
	"github.com/couchcryptid/swell-api/internal/domain"
	"github.com/couchcryptid/swell-api/internal/ndbc"
)

// Current returns the freshest observation for a station, serving from cache
// within the TTL. On a miss it fetches the feed, derives metrics, resolves
// wind, caches, and publishes.
func (s *Service) Current(ctx context.Context, stationID string) (*domain.Observation, error) {
	st, ok := s.registry.Lookup(stationID)
	if !ok {
		return nil, domain.ErrUnknownStation
	}

	if v, ok := s.cacheGet(cache.ClassCurrent, st.ID); ok {
		obs := v.(domain.Observation)
		return &obs, nil
	}

	obs, err := s.refresh(ctx, st)
	if err != nil {
		return nil, err
	}

	s.store.Put(cache.ClassCurrent, st.ID, obs)
	s.publish(ctx, obs)
	return &obs, nil
}

// refresh runs the fetch-parse-derive-wind chain for one station, bypassing
// the cache.
func (s *Service) refresh(ctx context.Context, st domain.StationDescriptor) (domain.Observation, error) {
	start := s.clock.Now()
	text, err := s.feed.Fetch(ctx, st.ID, s.fetchTimeout)
	s.metrics.FeedFetchSeconds.WithLabelValues("conditions").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.FeedFetches.WithLabelValues(domain.ErrorKind(err)).Inc()
		return domain.Observation{}, err
	}
	s.metrics.FeedFetches.WithLabelValues("success").Inc()

	obs, err := ndbc.Conditions(text, st.ID)
	if err != nil {
		return domain.Observation{}, err
	}

	s.resolveWind(ctx, st, &obs)
	return obs, nil
}

// resolveWind fills the wind fields and provenance tag. A buoy that reports
// its own wind wins; otherwise the configured fallback station is queried,
// and any failure along that path leaves the fields absent with source "N/A".
func (s *Service) resolveWind(ctx context.Context, st domain.StationDescriptor, obs *domain.Observation) {
	if obs.HasWind() {
		obs.WindSource = domain.WindSourceBuoy
		return
	}
	obs.WindSource = domain.WindSourceUnavailable

	if st.WindFallbackID == "" {
		return
	}

	start := s.clock.Now()
	text, err := s.feed.Fetch(ctx, st.WindFallbackID, s.fetchTimeout)
	s.metrics.FeedFetchSeconds.WithLabelValues("wind_fallback").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.FeedFetches.WithLabelValues(domain.ErrorKind(err)).Inc()
		s.logger.Warn("wind fallback fetch failed",
			"station", st.ID, "fallback", st.WindFallbackID, "error", err)
		return
	}
	s.metrics.FeedFetches.WithLabelValues("success").Inc()

	dir, speed, gust, ok := ndbc.LatestWind(text)
	if !ok {
		s.logger.Debug("wind fallback had no usable rows",
			"station", st.ID, "fallback", st.WindFallbackID)
		return
	}

	obs.WindDirDeg = dir
	obs.WindSpeedMS = speed
	obs.WindGustMS = gust
	obs.WindSource = st.WindFallbackID
}

// publish streams a fresh observation when a publisher is configured.
func (s *Service) publish(ctx context.Context, obs domain.Observation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, obs); err != nil {
		s.logger.Warn("conditions publish failed", "station", obs.Station, "error", err)
		return
	}
	s.metrics.ConditionsPublished.Inc()
}
