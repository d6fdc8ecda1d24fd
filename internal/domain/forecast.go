package domain

import (
	"math"
	"time"
)

// Forecast provenance tags.
const (
	SourceModel           = "model"
	SourceTrendProjection = "trend_projection"
	SourceSynthetic       = "synthetic"

	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

const metersToFeet = 3.28084

// ForecastPoint is one projected swell state.
type ForecastPoint struct {
	Timestamp    time.Time `json:"timestamp_utc"`
	WaveHeightM  float64   `json:"wave_height_m"`
	WaveHeightFt float64   `json:"wave_height_ft"`
	PeriodSec    float64   `json:"period_sec"`
	DirectionDeg *float64  `json:"direction_deg"`
	SurfHeightM  float64   `json:"surf_height_m"`
	WaveEnergy   float64   `json:"wave_energy"`
}

// NewForecastPoint builds a point with the derived metrics and the imperial
// height conversion filled in.
func NewForecastPoint(ts time.Time, heightM, periodSec float64, directionDeg *float64) ForecastPoint {
	return ForecastPoint{
		Timestamp:    ts,
		WaveHeightM:  heightM,
		WaveHeightFt: round2(heightM * metersToFeet),
		PeriodSec:    periodSec,
		DirectionDeg: directionDeg,
		SurfHeightM:  SurfHeight(heightM, periodSec),
		WaveEnergy:   WaveEnergy(heightM, periodSec),
	}
}

// Forecast is the resolved projection for one station. Available is false
// only when no model source is mapped and no baseline could be assembled;
// Source and Confidence always state which chain stage produced the points.
// A trend projection is plausible-looking synthesis, not model output; the
// distinct Source/Confidence tags are the accuracy caveat.
type Forecast struct {
	Station    string          `json:"station"`
	Available  bool            `json:"available"`
	Reason     string          `json:"reason,omitempty"`
	Source     string          `json:"source,omitempty"`
	Confidence string          `json:"confidence,omitempty"`
	Points     []ForecastPoint `json:"data"`
}

// ModelSample is one decoded wave-model reading, before derived metrics are
// attached.
type ModelSample struct {
	Timestamp    time.Time
	WaveHeightM  float64
	PeriodSec    float64
	DirectionDeg *float64
}

// OverlayVector is one wind arrow of a spatial overlay grid.
type OverlayVector struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	DirectionDeg float64 `json:"direction_deg"`
	SpeedMS      float64 `json:"speed_ms"`
}

// OverlayWavePoint is one swell sample of a spatial overlay grid.
type OverlayWavePoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	HeightM   float64 `json:"height_m"`
	PeriodSec float64 `json:"period_sec"`
}

// WindOverlay is a wind grid labeled with its provenance ("model" or
// "synthetic").
type WindOverlay struct {
	Source  string          `json:"source"`
	Vectors []OverlayVector `json:"vectors"`
}

// SwellOverlay is a wave grid labeled with its provenance.
type SwellOverlay struct {
	Source string             `json:"source"`
	Points []OverlayWavePoint `json:"points"`
}

// Bounds is a caller-supplied lat/lon bounding box, validated at the edge.
type Bounds struct {
	LatMin float64
	LonMin float64
	LatMax float64
	LonMax float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
