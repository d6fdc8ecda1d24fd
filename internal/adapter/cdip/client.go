// Package cdip decodes wave time series from CDIP THREDDS OPeNDAP endpoints.
// The decoder is deliberately failure-tolerant: every error collapses into
// domain.ErrDecodeUnavailable so the forecast resolver can fall back without
// inspecting transport detail.
package cdip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/swell-api/internal/domain"
)

// DefaultBaseURL is the CDIP realtime THREDDS catalog root.
const DefaultBaseURL = "https://thredds.cdip.ucsd.edu/thredds/dodsC/cdip/realtime"

const maxResponseBytes = 4 << 20

// variable projections tried in order; CDIP realtime files use the wave*
// names, archive-style files the descriptive ones.
var projections = [][]string{
	{"waveTime", "waveHs", "waveTp", "waveDp"},
	{"time", "significant_wave_height", "peak_wave_period", "mean_wave_direction"},
}

// Client fetches and decodes OPeNDAP ASCII responses. It implements
// pipeline.ModelDecoder.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates a decoder client. An empty baseURL selects the public
// CDIP endpoint.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
		logger:     logger,
	}
}

// WaveSeries decodes the station's wave series and returns the samples whose
// timestamps fall in [from, to]. Candidate variable sets are tried in order;
// the first decodable response wins.
func (c *Client) WaveSeries(ctx context.Context, station string, from, to time.Time) ([]domain.ModelSample, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	for _, vars := range projections {
		samples, err := c.fetchProjection(ctx, station, vars, from, to)
		if err == nil {
			return samples, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	c.logger.Debug("cdip decode failed", "station", station, "error", lastErr)
	return nil, fmt.Errorf("%w: %v", domain.ErrDecodeUnavailable, lastErr)
}

func (c *Client) fetchProjection(ctx context.Context, station string, vars []string, from, to time.Time) ([]domain.ModelSample, error) {
	u := fmt.Sprintf("%s/%sp1_rt.nc.ascii?%s", c.baseURL, station, strings.Join(vars, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	arrays := parseArrays(string(body))
	return assembleSamples(arrays, vars, from, to)
}

// parseArrays extracts the named 1-D arrays from an OPeNDAP ASCII response.
// Each array is announced by a "name, [n]" line followed by comma-separated
// values; the declaration block before "data:" is skipped.
func parseArrays(text string) map[string][]float64 {
	arrays := make(map[string][]float64)

	var current string
	inData := !strings.Contains(text, "Dataset {")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !inData {
			inData = line == "data:" || strings.HasSuffix(line, "} data;")
			continue
		}
		if line == "" {
			current = ""
			continue
		}

		if name, ok := arrayHeader(line); ok {
			current = name
			continue
		}
		if current == "" {
			continue
		}

		for _, tok := range strings.Split(line, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
			if err != nil {
				continue
			}
			arrays[current] = append(arrays[current], v)
		}
	}

	return arrays
}

// arrayHeader matches lines of the form "waveHs, [742]" or "waveHs[742]".
func arrayHeader(line string) (string, bool) {
	open := strings.Index(line, "[")
	if open < 0 || !strings.HasSuffix(line, "]") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimSpace(line[:open]), ",")
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", false
	}
	if _, err := strconv.Atoi(strings.TrimSuffix(line[open+1:], "]")); err != nil {
		return "", false
	}
	return name, true
}

// assembleSamples joins the parallel arrays into window-filtered samples.
// The time axis is epoch seconds, per CDIP convention. Direction is optional;
// time, height, and period are required and must align.
func assembleSamples(arrays map[string][]float64, vars []string, from, to time.Time) ([]domain.ModelSample, error) {
	times, heights, periods := arrays[vars[0]], arrays[vars[1]], arrays[vars[2]]
	if len(times) == 0 || len(heights) != len(times) || len(periods) != len(times) {
		return nil, fmt.Errorf("missing or misaligned arrays for %s", strings.Join(vars, ","))
	}
	dirs := arrays[vars[3]]

	var samples []domain.ModelSample
	for i, t := range times {
		ts := time.Unix(int64(t), 0).UTC()
		if ts.Before(from) || ts.After(to) {
			continue
		}
		sample := domain.ModelSample{
			Timestamp:   ts,
			WaveHeightM: heights[i],
			PeriodSec:   periods[i],
		}
		if i < len(dirs) {
			sample.DirectionDeg = domain.Float(dirs[i])
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
