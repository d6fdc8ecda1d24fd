// Package pipeline composes the per-station aggregation chain: fetch, parse,
// derive, wind resolution, and the fan-out, history, forecast, and overlay
// products built on top of it. All upstream access goes through the Feed and
// decoder interfaces so tests can substitute canned data.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/swell-api/internal/cache"
	"github.com/couchcryptid/swell-api/internal/domain"
	"github.com/couchcryptid/swell-api/internal/observability"
)

// Feed retrieves the raw text report for a station id within timeout.
type Feed interface {
	Fetch(ctx context.Context, station string, timeout time.Duration) (string, error)
}

// ModelDecoder reads a wave-model time series for a mapped model station.
// Implementations return domain.ErrDecodeUnavailable for any failure mode;
// the resolver falls back rather than surfacing decode detail.
type ModelDecoder interface {
	WaveSeries(ctx context.Context, modelStation string, from, to time.Time) ([]domain.ModelSample, error)
}

// GridDecoder sources real gridded wind/wave fields over a bounding box,
// downsampled to the overlay step.
type GridDecoder interface {
	WindGrid(ctx context.Context, b domain.Bounds, step float64) ([]domain.OverlayVector, error)
	WaveGrid(ctx context.Context, b domain.Bounds, step float64) ([]domain.OverlayWavePoint, error)
}

// ConditionsPublisher emits freshly fetched observations to a downstream
// stream. Publishing is best-effort; failures never affect the API response.
type ConditionsPublisher interface {
	Publish(ctx context.Context, obs domain.Observation) error
}

// Service owns the aggregation pipelines for the full station registry.
type Service struct {
	registry     *domain.Registry
	modelSources map[string]string

	feed            Feed
	model           ModelDecoder
	grid            GridDecoder
	store           *cache.Store
	publisher       ConditionsPublisher
	clock           clockwork.Clock
	logger          *slog.Logger
	metrics         *observability.Metrics
	fetchTimeout    time.Duration
	extendedTimeout time.Duration

	ready atomic.Bool
}

// Params collects the Service dependencies. Feed, Cache, Logger, and Metrics
// are required; nil decoders disable their resolution stage, a nil Publisher
// disables streaming, and a nil Clock selects the real clock.
type Params struct {
	Registry     *domain.Registry
	ModelSources map[string]string

	Feed      Feed
	Model     ModelDecoder
	Grid      GridDecoder
	Cache     *cache.Store
	Publisher ConditionsPublisher
	Clock     clockwork.Clock
	Logger    *slog.Logger
	Metrics   *observability.Metrics

	FetchTimeout         time.Duration
	ExtendedFetchTimeout time.Duration
}

// New creates a Service, applying defaults for optional Params fields.
func New(p Params) *Service {
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = 10 * time.Second
	}
	if p.ExtendedFetchTimeout <= 0 {
		p.ExtendedFetchTimeout = 15 * time.Second
	}
	if p.ModelSources == nil {
		p.ModelSources = map[string]string{}
	}

	return &Service{
		registry:        p.Registry,
		modelSources:    p.ModelSources,
		feed:            p.Feed,
		model:           p.Model,
		grid:            p.Grid,
		store:           p.Cache,
		publisher:       p.Publisher,
		clock:           p.Clock,
		logger:          p.Logger,
		metrics:         p.Metrics,
		fetchTimeout:    p.FetchTimeout,
		extendedTimeout: p.ExtendedFetchTimeout,
	}
}

// Registry exposes the station table for the HTTP layer.
func (s *Service) Registry() *domain.Registry {
	return s.registry
}

// CheckReadiness returns nil once at least one refresh has completed, or an
// error describing why the service is not yet ready.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no station refresh has completed yet")
	}
	return nil
}

// ClearCache drops every cached entry across all TTL classes.
func (s *Service) ClearCache() {
	s.store.ClearAll()
	s.metrics.CacheClears.Inc()
	s.logger.Info("cache cleared")
}

func (s *Service) cacheGet(class cache.Class, key string) (any, bool) {
	v, ok := s.store.Get(class, key)
	if ok {
		s.metrics.CacheLookups.WithLabelValues(string(class), "hit").Inc()
	} else {
		s.metrics.CacheLookups.WithLabelValues(string(class), "miss").Inc()
	}
	return v, ok
}
