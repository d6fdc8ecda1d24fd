package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream feed endpoints and timeouts.
	NDBCBaseURL          string
	CDIPBaseURL          string
	FetchTimeout         time.Duration
	ExtendedFetchTimeout time.Duration

	// Station registry overrides. Empty paths keep the built-in defaults.
	PrimaryStation  string
	StationsFile    string
	ModelSourceFile string

	// Cache TTL overrides.
	CurrentTTL     time.Duration
	HistoryTTL     time.Duration
	ForecastTTL    time.Duration
	OverlayWindTTL time.Duration
	OverlayWaveTTL time.Duration

	// Kafka conditions-stream publishing configuration.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	extendedTimeout, err := parseDuration("EXTENDED_FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	currentTTL, err := parseDuration("CACHE_TTL_CURRENT", "5m")
	if err != nil {
		return nil, err
	}

	historyTTL, err := parseDuration("CACHE_TTL_HISTORY", "30m")
	if err != nil {
		return nil, err
	}

	forecastTTL, err := parseDuration("CACHE_TTL_FORECAST", "3h")
	if err != nil {
		return nil, err
	}

	overlayWindTTL, err := parseDuration("CACHE_TTL_OVERLAY_WIND", "10m")
	if err != nil {
		return nil, err
	}

	overlayWaveTTL, err := parseDuration("CACHE_TTL_OVERLAY_WAVE", "30m")
	if err != nil {
		return nil, err
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NDBCBaseURL:          envOrDefault("NDBC_BASE_URL", "https://www.ndbc.noaa.gov/data/realtime2"),
		CDIPBaseURL:          envOrDefault("CDIP_BASE_URL", "https://thredds.cdip.ucsd.edu/thredds/dodsC/cdip/realtime"),
		FetchTimeout:         fetchTimeout,
		ExtendedFetchTimeout: extendedTimeout,

		PrimaryStation:  envOrDefault("PRIMARY_STATION", "46266"),
		StationsFile:    os.Getenv("STATIONS_FILE"),
		ModelSourceFile: os.Getenv("MODEL_SOURCE_FILE"),

		CurrentTTL:     currentTTL,
		HistoryTTL:     historyTTL,
		ForecastTTL:    forecastTTL,
		OverlayWindTTL: overlayWindTTL,
		OverlayWaveTTL: overlayWaveTTL,

		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "buoy-conditions"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.PrimaryStation == "" {
		return nil, errors.New("PRIMARY_STATION must not be empty")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDuration reads a positive duration from the environment, falling back
// to def when unset.
func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
