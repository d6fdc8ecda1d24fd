package ndbc

import (
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/swell-api/internal/domain"
)

// Required column sets for header detection. A comment line is promoted to
// the active header only when it contains every required column.
var (
	// ConditionsColumns marks a standard meteorological feed.
	ConditionsColumns = []string{"WVHT", "DPD", "MWD"}
	// WindColumns marks a feed usable for wind fallback (C-MAN stations
	// often carry no wave instrumentation).
	WindColumns = []string{"WDIR", "WSPD"}
)

// maxTrendSamples bounds the wave-height window used for trend derivation.
const maxTrendSamples = 5

// Row maps an active-header column name to the raw token of one data line.
// Rows are transient; they are discarded once normalized into Observations.
type Row map[string]string

// fieldSentinels lists the numeric missing-data codes per column, applied on
// top of the universal "MM"/"NaN" markers.
var fieldSentinels = map[string][]float64{
	"WDIR": {999},
	"MWD":  {999},
	"WSPD": {99},
	"GST":  {99},
	"WVHT": {99},
	"DPD":  {99},
	"APD":  {99},
	"PRES": {9999},
	"ATMP": {999},
	"WTMP": {999},
	"DEWP": {999},
}

// ParseRows splits a raw feed into structurally valid rows. The first comment
// line containing the full required column set becomes the active header;
// every later comment line (typically the units row) is skipped. A data line
// is kept only when its token count equals the header length. Sentinel
// resolution happens later, per field.
func ParseRows(text string, required []string) []Row {
	var header []string
	var rows []Row

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			if header == nil && containsAll(line, required) {
				header = strings.Fields(strings.TrimLeft(line, "# "))
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		tokens := strings.Fields(line)
		if header == nil || len(tokens) != len(header) {
			continue
		}

		row := make(Row, len(header))
		for i, col := range header {
			row[col] = tokens[i]
		}
		rows = append(rows, row)
	}

	return rows
}

// Conditions extracts the newest complete observation from a feed, with the
// derived metrics computed from a wave-height trend window of the same parse
// pass. Rows with a missing wave height or dominant period are skipped
// entirely, matching the current-conditions contract.
func Conditions(text, station string) (domain.Observation, error) {
	rows := ParseRows(text, ConditionsColumns)

	var picked Row
	var samples []float64
	for _, row := range rows {
		h := floatField(row, "WVHT")
		p := floatField(row, "DPD")
		if h == nil || p == nil {
			continue
		}
		if len(samples) < maxTrendSamples {
			samples = append(samples, *h)
		}
		if picked == nil {
			picked = row
		}
	}

	if picked == nil {
		return domain.Observation{}, domain.ErrNoValidRows
	}

	obs := observationFromRow(station, picked)
	domain.DeriveMetrics(&obs, samples)
	return obs, nil
}

// RecentPairs collects up to max newest (wave height, dominant period) pairs
// from a feed. The forecast trend projection averages these into its
// baseline.
func RecentPairs(text string, max int) (heights, periods []float64) {
	for _, row := range ParseRows(text, ConditionsColumns) {
		h := floatField(row, "WVHT")
		p := floatField(row, "DPD")
		if h == nil || p == nil {
			continue
		}
		heights = append(heights, *h)
		periods = append(periods, *p)
		if len(heights) == max {
			break
		}
	}
	return heights, periods
}

// History converts every structurally valid row of a feed into an
// observation with per-field sentinel resolution and per-row derived
// metrics; there is no wave-height or period presence requirement. Rows
// without a parseable timestamp are dropped since the windower cannot place
// them.
func History(text, station string) []domain.Observation {
	rows := ParseRows(text, ConditionsColumns)

	out := make([]domain.Observation, 0, len(rows))
	for _, row := range rows {
		ts, ok := rowTime(row)
		if !ok {
			continue
		}
		obs := observationFromRow(station, row)
		obs.Timestamp = ts
		if obs.WaveHeightM != nil && obs.DominantPeriodSec != nil && *obs.DominantPeriodSec > 0 {
			obs.SurfHeightM = domain.Float(domain.SurfHeight(*obs.WaveHeightM, *obs.DominantPeriodSec))
			obs.WaveEnergy = domain.Float(domain.WaveEnergy(*obs.WaveHeightM, *obs.DominantPeriodSec))
		}
		out = append(out, obs)
	}
	return out
}

// LatestWind pulls the newest usable wind reading from a fallback station
// feed. A direction of 999 or 0 and a speed/gust of 99 are absent; the first
// row with both direction and speed present wins.
func LatestWind(text string) (dir, speed, gust *float64, ok bool) {
	for _, row := range ParseRows(text, WindColumns) {
		d := floatField(row, "WDIR")
		if d != nil && *d == 0 {
			d = nil
		}
		s := floatField(row, "WSPD")
		if d == nil || s == nil {
			continue
		}
		return d, s, floatField(row, "GST"), true
	}
	return nil, nil, nil, false
}

// observationFromRow normalizes one row into an Observation. Every numeric
// field resolves sentinels to nil, never to zero.
func observationFromRow(station string, row Row) domain.Observation {
	obs := domain.Observation{Station: station}
	if ts, ok := rowTime(row); ok {
		obs.Timestamp = ts
	}

	obs.WaveHeightM = floatField(row, "WVHT")
	obs.DominantPeriodSec = floatField(row, "DPD")
	obs.MeanWaveDirDeg = floatField(row, "MWD")
	obs.WaterTempC = floatField(row, "WTMP")
	obs.AirTempC = floatField(row, "ATMP")
	obs.WindDirDeg = floatField(row, "WDIR")
	obs.WindSpeedMS = floatField(row, "WSPD")
	obs.WindGustMS = floatField(row, "GST")
	return obs
}

// timestampAliases lists the two column-name families NDBC feeds use,
// resolved by first-non-null precedence.
var timestampAliases = [5][2]string{
	{"YY", "yr"},
	{"MM", "mo"},
	{"DD", "dy"},
	{"hh", "hr"},
	{"mm", "mn"},
}

// rowTime assembles the UTC timestamp of a row. Two-digit years are offset
// into the 2000s.
func rowTime(row Row) (time.Time, bool) {
	var parts [5]int
	for i, aliases := range timestampAliases {
		tok := row[aliases[0]]
		if tok == "" {
			tok = row[aliases[1]]
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = v
	}

	year := parts[0]
	if year < 100 {
		year += 2000
	}

	return time.Date(year, time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC), true
}

// floatField resolves one column of a row to a float, mapping "MM"/"NaN",
// unparsable tokens, and the column's numeric sentinel codes to absent.
func floatField(row Row, col string) *float64 {
	tok, present := row[col]
	if !present || tok == "" || tok == "MM" || tok == "NaN" {
		return nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil
	}
	for _, s := range fieldSentinels[col] {
		if v == s {
			return nil
		}
	}
	return &v
}

func containsAll(line string, required []string) bool {
	for _, r := range required {
		if !strings.Contains(line, r) {
			return false
		}
	}
	return true
}
