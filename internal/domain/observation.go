package domain

import "time"

// Wind source tags for Observation.WindSource.
const (
	WindSourceBuoy        = "buoy"
	WindSourceUnavailable = "N/A"
)

// Wave trend labels.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendHolding = "holding"
)

// Observation is one normalized current-conditions record for a station.
// Optional numeric fields are nil when the feed reported a sentinel or
// omitted the column; they serialize as JSON null, never as a placeholder
// number.
type Observation struct {
	Station   string    `json:"station"`
	Timestamp time.Time `json:"timestamp_utc"`

	WaveHeightM       *float64 `json:"wave_height_m"`
	DominantPeriodSec *float64 `json:"dominant_period_sec"`
	MeanWaveDirDeg    *float64 `json:"mean_wave_dir"`
	WaterTempC        *float64 `json:"water_temp_c"`
	AirTempC          *float64 `json:"air_temp_c"`

	WindDirDeg  *float64 `json:"wind_dir_deg"`
	WindSpeedMS *float64 `json:"wind_speed_ms"`
	WindGustMS  *float64 `json:"wind_gust_ms"`
	// WindSource is "buoy" when the primary feed supplied wind, the fallback
	// station id when the wind resolver filled it in, or "N/A" when resolution
	// failed.
	WindSource string `json:"wind_source,omitempty"`

	SurfHeightM *float64 `json:"surf_height_m"`
	WaveEnergy  *float64 `json:"wave_energy"`
	WaveTrend   string   `json:"wave_trend,omitempty"`
}

// HasWind reports whether both wind direction and speed are present.
func (o *Observation) HasWind() bool {
	return o.WindDirDeg != nil && o.WindSpeedMS != nil
}

// StationResult is one entry of the all-stations view: registry metadata
// merged with either an observation or an error tag. A failed station never
// affects its siblings.
type StationResult struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`

	Observation *Observation `json:"observation,omitempty"`
	Error       string       `json:"error,omitempty"`
	ErrorKind   string       `json:"error_kind,omitempty"`
}

// Float returns a pointer to v, for building optional fields in literals.
func Float(v float64) *float64 {
	return &v
}
