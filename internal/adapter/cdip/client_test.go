package cdip

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/swell-api/internal/domain"
)

// asciiResponse mimics the OPeNDAP ASCII rendering of a realtime CDIP file:
// a DDS declaration block, then the projected arrays.
const asciiResponse = `Dataset {
    Float64 waveTime[waveTime = 3];
    Float32 waveHs[waveTime = 3];
    Float32 waveTp[waveTime = 3];
    Float32 waveDp[waveTime = 3];
} data;
waveTime, [3]
1721067600, 1721078400, 1721089200
waveHs, [3]
1.05, 1.12, 1.31
waveTp, [3]
14.29, 13.33, 12.5
waveDp, [3]
285, 280, 278
`

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestClient_WaveSeries(t *testing.T) {
	// 1721067600 = 2024-07-15T18:20:00Z.
	from := time.Date(2024, 7, 15, 18, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	t.Run("decodes realtime variable names", func(t *testing.T) {
		var gotPath, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			w.Write([]byte(asciiResponse))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, 5*time.Second, discardLogger())
		samples, err := c.WaveSeries(context.Background(), "153", from, to)
		require.NoError(t, err)

		assert.Equal(t, "/153p1_rt.nc.ascii", gotPath)
		assert.Equal(t, "waveTime,waveHs,waveTp,waveDp", gotQuery)

		require.Len(t, samples, 3)
		assert.Equal(t, time.Unix(1721067600, 0).UTC(), samples[0].Timestamp)
		assert.InDelta(t, 1.05, samples[0].WaveHeightM, 1e-9)
		assert.InDelta(t, 14.29, samples[0].PeriodSec, 1e-9)
		require.NotNil(t, samples[0].DirectionDeg)
		assert.InDelta(t, 285, *samples[0].DirectionDeg, 1e-9)
	})

	t.Run("window filters samples", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(asciiResponse))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, 5*time.Second, discardLogger())
		samples, err := c.WaveSeries(context.Background(), "153", from, from.Add(4*time.Hour))
		require.NoError(t, err)
		// Third sample at +6h falls outside the window.
		assert.Len(t, samples, 2)
	})

	t.Run("second projection tried after first fails", func(t *testing.T) {
		const archiveResponse = `data:
time, [1]
1721067600
significant_wave_height, [1]
1.5
peak_wave_period, [1]
12.0
mean_wave_direction, [1]
290
`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery == "waveTime,waveHs,waveTp,waveDp" {
				http.Error(w, "variable not found", http.StatusBadRequest)
				return
			}
			w.Write([]byte(archiveResponse))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, 5*time.Second, discardLogger())
		samples, err := c.WaveSeries(context.Background(), "153", from, to)
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.InDelta(t, 1.5, samples[0].WaveHeightM, 1e-9)
	})

	t.Run("upstream error collapses to ErrDecodeUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "catalog offline", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, 5*time.Second, discardLogger())
		_, err := c.WaveSeries(context.Background(), "153", from, to)
		assert.ErrorIs(t, err, domain.ErrDecodeUnavailable)
	})

	t.Run("misaligned arrays rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("data:\nwaveTime, [2]\n1721067600, 1721078400\nwaveHs, [1]\n1.05\n"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, 5*time.Second, discardLogger())
		_, err := c.WaveSeries(context.Background(), "153", from, to)
		assert.ErrorIs(t, err, domain.ErrDecodeUnavailable)
	})
}

func TestParseArrays(t *testing.T) {
	arrays := parseArrays(asciiResponse)

	require.Contains(t, arrays, "waveHs")
	assert.Equal(t, []float64{1.05, 1.12, 1.31}, arrays["waveHs"])
	assert.Len(t, arrays["waveTime"], 3)
	assert.NotContains(t, arrays, "Float64", "declaration block is skipped")
}
