package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, "https://www.ndbc.noaa.gov/data/realtime2", cfg.NDBCBaseURL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 15*time.Second, cfg.ExtendedFetchTimeout)

	assert.Equal(t, "46266", cfg.PrimaryStation)
	assert.Empty(t, cfg.StationsFile)

	assert.Equal(t, 5*time.Minute, cfg.CurrentTTL)
	assert.Equal(t, 30*time.Minute, cfg.HistoryTTL)
	assert.Equal(t, 3*time.Hour, cfg.ForecastTTL)
	assert.Equal(t, 10*time.Minute, cfg.OverlayWindTTL)
	assert.Equal(t, 30*time.Minute, cfg.OverlayWaveTTL)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "buoy-conditions", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("NDBC_BASE_URL", "http://localhost:8081/ndbc")
	t.Setenv("FETCH_TIMEOUT", "2s")
	t.Setenv("EXTENDED_FETCH_TIMEOUT", "4s")
	t.Setenv("PRIMARY_STATION", "46042")
	t.Setenv("STATIONS_FILE", "/etc/swell/stations.json")
	t.Setenv("CACHE_TTL_CURRENT", "1m")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-conditions")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/ndbc", cfg.NDBCBaseURL)
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4*time.Second, cfg.ExtendedFetchTimeout)
	assert.Equal(t, "46042", cfg.PrimaryStation)
	assert.Equal(t, "/etc/swell/stations.json", cfg.StationsFile)
	assert.Equal(t, time.Minute, cfg.CurrentTTL)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-conditions", cfg.KafkaTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeFetchTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_InvalidCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL_FORECAST", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL_FORECAST")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
