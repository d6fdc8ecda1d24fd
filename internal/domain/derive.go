package domain

import "math"

// SurfHeight estimates breaking-wave face height in metres from significant
// wave height and dominant period, rounded to 2 decimals.
func SurfHeight(waveHeightM, periodSec float64) float64 {
	return math.Round(0.7*waveHeightM*math.Sqrt(periodSec)*100) / 100
}

// WaveEnergy is the relative swell-power index height² × period, rounded to
// 1 decimal.
func WaveEnergy(waveHeightM, periodSec float64) float64 {
	return math.Round(waveHeightM*waveHeightM*periodSec*10) / 10
}

// WaveTrend classifies the swell direction from up to 5 wave-height samples
// in feed order (newest first). Fewer than 3 samples is "holding". The mean
// of the two newest samples is compared against the mean of the next two; a
// change above +10% is rising, below -10% falling.
func WaveTrend(samples []float64) string {
	if len(samples) < 3 {
		return TrendHolding
	}

	recent := mean(samples[:2])
	older := mean(samples[2:min(4, len(samples))])
	if older == 0 {
		return TrendHolding
	}

	pct := (recent - older) / older * 100
	switch {
	case pct > 10:
		return TrendRising
	case pct < -10:
		return TrendFalling
	default:
		return TrendHolding
	}
}

// DeriveMetrics fills the derived fields of an observation. Surf height and
// energy require both wave height and a nonzero period; the trend is computed
// from the sample window regardless.
func DeriveMetrics(obs *Observation, heightSamples []float64) {
	if obs.WaveHeightM != nil && obs.DominantPeriodSec != nil && *obs.DominantPeriodSec > 0 {
		obs.SurfHeightM = Float(SurfHeight(*obs.WaveHeightM, *obs.DominantPeriodSec))
		obs.WaveEnergy = Float(WaveEnergy(*obs.WaveHeightM, *obs.DominantPeriodSec))
	}
	obs.WaveTrend = WaveTrend(heightSamples)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
