package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/swell-api/internal/cache"
	"github.com/couchcryptid/swell-api/internal/domain"
	"github.com/couchcryptid/swell-api/internal/observability"
	"github.com/couchcryptid/swell-api/internal/pipeline"
)

// --- fixtures ---

// waveOnlyFeed is a wave buoy without an anemometer.
const waveOnlyFeed = `#YY MM DD hh mm WVHT DPD MWD
#yr mo dy hr mn    m sec degT
2024 07 15 18 40  2.0 9.0  275
2024 07 15 18 10  1.9 8.8  270
2024 07 15 17 40  1.8 8.6  268
2024 07 14 10 00  1.2 7.0  250
`

// fullFeed is a buoy reporting its own wind.
const fullFeed = `#YY MM DD hh mm WDIR WSPD GST WVHT DPD MWD
2024 07 15 18 40  270  5.0 7.0  2.0 9.0 275
`

// coastalFeed is a C-MAN wind-only fallback station.
const coastalFeed = `#YY MM DD hh mm WDIR WSPD GST   PRES  ATMP
2024 07 15 18 42  240  5.2  6.8 1013.1  21.0
`

var testNow = time.Date(2024, 7, 15, 19, 0, 0, 0, time.UTC)

// --- mocks ---

type mockFeed struct {
	mu    sync.Mutex
	feeds map[string]string
	errs  map[string]error
	calls map[string]int
}

func newMockFeed() *mockFeed {
	return &mockFeed{
		feeds: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (m *mockFeed) Fetch(_ context.Context, station string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[station]++
	if err, ok := m.errs[station]; ok {
		return "", err
	}
	text, ok := m.feeds[station]
	if !ok {
		return "", &domain.FetchError{Station: station, Kind: domain.FetchUpstreamStatus, StatusCode: 404}
	}
	return text, nil
}

func (m *mockFeed) callCount(station string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[station]
}

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.Observation
}

func (m *mockPublisher) Publish(_ context.Context, obs domain.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, obs)
	return nil
}

// --- helpers ---

type testEnv struct {
	svc   *pipeline.Service
	feed  *mockFeed
	clock *clockwork.FakeClock
	pub   *mockPublisher
}

func newTestEnv(t *testing.T, stations []domain.StationDescriptor, opts ...func(*pipeline.Params)) *testEnv {
	t.Helper()

	feed := newMockFeed()
	clock := clockwork.NewFakeClockAt(testNow)
	pub := &mockPublisher{}

	params := pipeline.Params{
		Registry:  domain.NewRegistry(stations),
		Feed:      feed,
		Cache:     cache.New(clock, nil),
		Publisher: pub,
		Clock:     clock,
		Logger:    slog.New(slog.DiscardHandler),
		Metrics:   observability.NewMetricsForTesting(),
	}
	for _, opt := range opts {
		opt(&params)
	}

	return &testEnv{svc: pipeline.New(params), feed: feed, clock: clock, pub: pub}
}

// --- current conditions ---

func TestService_Current(t *testing.T) {
	stations := []domain.StationDescriptor{
		{ID: "46266", Lat: 32.933, Lon: -117.317, Name: "Del Mar Nearshore", WindFallbackID: "LJAC1"},
	}

	t.Run("happy path with own wind", func(t *testing.T) {
		env := newTestEnv(t, []domain.StationDescriptor{{ID: "46222", Name: "Santa Monica Basin"}})
		env.feed.feeds["46222"] = fullFeed

		obs, err := env.svc.Current(context.Background(), "46222")
		require.NoError(t, err)

		assert.Equal(t, "46222", obs.Station)
		assert.Equal(t, domain.WindSourceBuoy, obs.WindSource)
		require.NotNil(t, obs.SurfHeightM)
		assert.InDelta(t, 4.2, *obs.SurfHeightM, 1e-9)
		assert.Equal(t, 1, env.feed.callCount("46222"), "no fallback lookup when buoy reports wind")
	})

	t.Run("wind fallback fills absent fields", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.feeds["46266"] = waveOnlyFeed
		env.feed.feeds["LJAC1"] = coastalFeed

		obs, err := env.svc.Current(context.Background(), "46266")
		require.NoError(t, err)

		assert.Equal(t, "LJAC1", obs.WindSource)
		require.NotNil(t, obs.WindSpeedMS)
		assert.InDelta(t, 5.2, *obs.WindSpeedMS, 1e-9)
		require.NotNil(t, obs.WindDirDeg)
		assert.InDelta(t, 240, *obs.WindDirDeg, 1e-9)
	})

	t.Run("fallback failure degrades to N/A", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.feeds["46266"] = waveOnlyFeed
		env.feed.errs["LJAC1"] = &domain.FetchError{Station: "LJAC1", Kind: domain.FetchTimeout}

		obs, err := env.svc.Current(context.Background(), "46266")
		require.NoError(t, err, "wind fallback failure never fails the station")

		assert.Equal(t, domain.WindSourceUnavailable, obs.WindSource)
		assert.Nil(t, obs.WindSpeedMS)
	})

	t.Run("cache hit skips upstream", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.feeds["46266"] = waveOnlyFeed
		env.feed.feeds["LJAC1"] = coastalFeed

		first, err := env.svc.Current(context.Background(), "46266")
		require.NoError(t, err)
		second, err := env.svc.Current(context.Background(), "46266")
		require.NoError(t, err)

		assert.Equal(t, *first, *second, "hit returns the same payload verbatim")
		assert.Equal(t, 1, env.feed.callCount("46266"))
	})

	t.Run("expired entry triggers refetch", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.feeds["46266"] = waveOnlyFeed
		env.feed.feeds["LJAC1"] = coastalFeed

		_, err := env.svc.Current(context.Background(), "46266")
		require.NoError(t, err)

		env.clock.Advance(6 * time.Minute)

		_, err = env.svc.Current(context.Background(), "46266")
		require.NoError(t, err)
		assert.Equal(t, 2, env.feed.callCount("46266"))
	})

	t.Run("unknown station", func(t *testing.T) {
		env := newTestEnv(t, stations)
		_, err := env.svc.Current(context.Background(), "00000")
		assert.ErrorIs(t, err, domain.ErrUnknownStation)
	})

	t.Run("fetch error carries its kind", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.errs["46266"] = &domain.FetchError{Station: "46266", Kind: domain.FetchTimeout}

		_, err := env.svc.Current(context.Background(), "46266")
		var fe *domain.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FetchTimeout, fe.Kind)
	})

	t.Run("fresh observation is published", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.feeds["46266"] = waveOnlyFeed
		env.feed.feeds["LJAC1"] = coastalFeed

		_, err := env.svc.Current(context.Background(), "46266")
		require.NoError(t, err)
		_, err = env.svc.Current(context.Background(), "46266")
		require.NoError(t, err)

		require.Len(t, env.pub.published, 1, "cache hits do not republish")
		assert.Equal(t, "46266", env.pub.published[0].Station)
	})
}

// --- fan-out ---

func TestService_All(t *testing.T) {
	stations := []domain.StationDescriptor{
		{ID: "46266", Name: "Del Mar Nearshore"},
		{ID: "46225", Name: "Torrey Pines Outer"},
		{ID: "46259", Name: "Mission Bay"},
	}

	env := newTestEnv(t, stations)
	env.feed.feeds["46266"] = fullFeed
	// 46225 times out upstream.
	env.feed.errs["46225"] = &domain.FetchError{Station: "46225", Kind: domain.FetchTimeout}
	// 46259 returns a feed with no usable rows.
	env.feed.feeds["46259"] = "#YY MM DD hh mm WVHT DPD MWD\n2024 07 15 18 40 MM 9.0 275\n"

	results := env.svc.All(context.Background())

	require.Len(t, results, 3, "one entry per registered station")
	assert.Equal(t, []string{"46266", "46225", "46259"},
		[]string{results[0].ID, results[1].ID, results[2].ID}, "registry order preserved")

	require.NotNil(t, results[0].Observation)
	assert.Equal(t, "Del Mar Nearshore", results[0].Name)

	assert.Nil(t, results[1].Observation)
	assert.Equal(t, "timeout", results[1].ErrorKind)

	assert.Nil(t, results[2].Observation)
	assert.Equal(t, "empty_result", results[2].ErrorKind)

	assert.NoError(t, env.svc.CheckReadiness(context.Background()),
		"a completed refresh marks the service ready")
}

func TestService_CheckReadiness_BeforeRefresh(t *testing.T) {
	env := newTestEnv(t, []domain.StationDescriptor{{ID: "46266"}})
	assert.Error(t, env.svc.CheckReadiness(context.Background()))
}

// --- history ---

func TestService_History(t *testing.T) {
	stations := []domain.StationDescriptor{{ID: "46266", Name: "Del Mar Nearshore"}}

	t.Run("windows and sorts ascending", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.feeds["46266"] = waveOnlyFeed

		rows, err := env.svc.History(context.Background(), "46266", 6)
		require.NoError(t, err)

		// The 2024-07-14 row falls outside now-6h and is dropped.
		require.Len(t, rows, 3)
		assert.Equal(t, time.Date(2024, 7, 15, 17, 40, 0, 0, time.UTC), rows[0].Timestamp)
		assert.Equal(t, time.Date(2024, 7, 15, 18, 40, 0, 0, time.UTC), rows[2].Timestamp)

		// Per-row derived metrics are present.
		require.NotNil(t, rows[2].SurfHeightM)
		assert.InDelta(t, 4.2, *rows[2].SurfHeightM, 1e-9)
	})

	t.Run("cache key includes the window", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.feeds["46266"] = waveOnlyFeed

		_, err := env.svc.History(context.Background(), "46266", 6)
		require.NoError(t, err)
		_, err = env.svc.History(context.Background(), "46266", 6)
		require.NoError(t, err)
		assert.Equal(t, 1, env.feed.callCount("46266"), "same window served from cache")

		_, err = env.svc.History(context.Background(), "46266", 48)
		require.NoError(t, err)
		assert.Equal(t, 2, env.feed.callCount("46266"), "different window is a distinct entry")
	})

	t.Run("unknown station", func(t *testing.T) {
		env := newTestEnv(t, stations)
		_, err := env.svc.History(context.Background(), "00000", 24)
		assert.ErrorIs(t, err, domain.ErrUnknownStation)
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		env := newTestEnv(t, stations)
		env.feed.errs["46266"] = &domain.FetchError{Station: "46266", Kind: domain.FetchTransport}

		_, err := env.svc.History(context.Background(), "46266", 24)
		var fe *domain.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FetchTransport, fe.Kind)
	})
}

// --- cache clear ---

func TestService_ClearCache(t *testing.T) {
	stations := []domain.StationDescriptor{{ID: "46266", Name: "Del Mar Nearshore"}}

	env := newTestEnv(t, stations)
	env.feed.feeds["46266"] = waveOnlyFeed

	_, err := env.svc.Current(context.Background(), "46266")
	require.NoError(t, err)
	_, err = env.svc.History(context.Background(), "46266", 24)
	require.NoError(t, err)
	require.Equal(t, 2, env.feed.callCount("46266"))

	env.svc.ClearCache()

	_, err = env.svc.Current(context.Background(), "46266")
	require.NoError(t, err)
	_, err = env.svc.History(context.Background(), "46266", 24)
	require.NoError(t, err)
	assert.Equal(t, 4, env.feed.callCount("46266"), "clear empties every class")
}

func TestService_Current_NoValidRows(t *testing.T) {
	env := newTestEnv(t, []domain.StationDescriptor{{ID: "46266"}})
	env.feed.feeds["46266"] = "# broken feed\n"

	_, err := env.svc.Current(context.Background(), "46266")
	assert.True(t, errors.Is(err, domain.ErrNoValidRows))
}
