package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/swell-api/internal/cache"
	"github.com/couchcryptid/swell-api/internal/domain"
	"github.com/couchcryptid/swell-api/internal/ndbc"
)

// forecastStrideHours is the spacing between projected points.
const forecastStrideHours = 3

// trendBaselineSamples bounds the (height, period) pairs averaged into the
// projection baseline.
const trendBaselineSamples = 5

// Forecast resolves a projection for the station across the requested
// horizon. Resolution order: mapped model source first, then a trend
// projection synthesized from recent observations. Every result carries the
// source and confidence tags of the stage that produced it.
func (s *Service) Forecast(ctx context.Context, stationID string, hours int) (domain.Forecast, error) {
	st, ok := s.registry.Lookup(stationID)
	if !ok {
		return domain.Forecast{}, domain.ErrUnknownStation
	}

	key := fmt.Sprintf("%s:%d", st.ID, hours)
	if v, ok := s.cacheGet(cache.ClassForecast, key); ok {
		return v.(domain.Forecast), nil
	}

	modelID, mapped := s.modelSources[st.ID]
	if !mapped {
		s.metrics.ForecastResolutions.WithLabelValues("unavailable").Inc()
		f := domain.Forecast{
			Station: st.ID,
			Reason:  "no model source mapped for station",
			Points:  []domain.ForecastPoint{},
		}
		s.store.Put(cache.ClassForecast, key, f)
		return f, nil
	}

	if f, ok := s.modelForecast(ctx, st, modelID, hours); ok {
		s.metrics.ForecastResolutions.WithLabelValues(domain.SourceModel).Inc()
		s.store.Put(cache.ClassForecast, key, f)
		return f, nil
	}

	f, err := s.trendProjection(ctx, st, hours)
	if err != nil {
		return domain.Forecast{}, err
	}
	s.metrics.ForecastResolutions.WithLabelValues(domain.SourceTrendProjection).Inc()
	s.store.Put(cache.ClassForecast, key, f)
	return f, nil
}

// modelForecast attempts the real model decode. Any decode failure or an
// empty window reports ok=false so the caller falls through to the next
// resolution stage.
func (s *Service) modelForecast(ctx context.Context, st domain.StationDescriptor, modelID string, hours int) (domain.Forecast, bool) {
	if s.model == nil {
		return domain.Forecast{}, false
	}

	now := s.clock.Now()
	start := now
	samples, err := s.model.WaveSeries(ctx, modelID, start, now.Add(time.Duration(hours)*time.Hour))
	if err != nil || len(samples) == 0 {
		s.logger.Debug("model decode unavailable, projecting trend",
			"station", st.ID, "model", modelID, "error", err)
		return domain.Forecast{}, false
	}

	points := make([]domain.ForecastPoint, 0, len(samples))
	for _, sm := range samples {
		points = append(points, domain.NewForecastPoint(sm.Timestamp, sm.WaveHeightM, sm.PeriodSec, sm.DirectionDeg))
	}

	return domain.Forecast{
		Station:    st.ID,
		Available:  true,
		Source:     domain.SourceModel,
		Confidence: domain.ConfidenceHigh,
		Points:     points,
	}, true
}

// trendProjection synthesizes points from the mean of recent observations,
// modulated by a smooth diurnal oscillation. The output is deterministic for
// a given feed and clock reading; the low-confidence tag marks it as
// plausible-looking synthesis rather than model output.
func (s *Service) trendProjection(ctx context.Context, st domain.StationDescriptor, hours int) (domain.Forecast, error) {
	start := s.clock.Now()
	text, err := s.feed.Fetch(ctx, st.ID, s.extendedTimeout)
	s.metrics.FeedFetchSeconds.WithLabelValues("forecast").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.FeedFetches.WithLabelValues(domain.ErrorKind(err)).Inc()
		return domain.Forecast{}, err
	}
	s.metrics.FeedFetches.WithLabelValues("success").Inc()

	heights, periods := ndbc.RecentPairs(text, trendBaselineSamples)
	if len(heights) == 0 {
		return domain.Forecast{
			Station: st.ID,
			Reason:  "no recent observations to project from",
			Points:  []domain.ForecastPoint{},
		}, nil
	}

	baseHeight := mean(heights)
	basePeriod := mean(periods)
	now := s.clock.Now()

	var points []domain.ForecastPoint
	for h := 0; h <= hours; h += forecastStrideHours {
		// 24-hour sinusoid, ±15% around the baseline.
		factor := 1 + 0.15*math.Sin(2*math.Pi*float64(h)/24)
		height := math.Round(baseHeight*factor*100) / 100
		ts := now.Add(time.Duration(h) * time.Hour)
		points = append(points, domain.NewForecastPoint(ts, height, basePeriod, nil))
	}

	return domain.Forecast{
		Station:    st.ID,
		Available:  true,
		Source:     domain.SourceTrendProjection,
		Confidence: domain.ConfidenceLow,
		Points:     points,
	}, nil
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
