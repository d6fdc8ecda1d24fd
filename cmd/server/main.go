package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	cdipadapter "github.com/couchcryptid/swell-api/internal/adapter/cdip"
	httpadapter "github.com/couchcryptid/swell-api/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/swell-api/internal/adapter/kafka"
	"github.com/couchcryptid/swell-api/internal/cache"
	"github.com/couchcryptid/swell-api/internal/config"
	"github.com/couchcryptid/swell-api/internal/domain"
	"github.com/couchcryptid/swell-api/internal/ndbc"
	"github.com/couchcryptid/swell-api/internal/observability"
	"github.com/couchcryptid/swell-api/internal/pipeline"
)

func main() {
	// A local .env is a development convenience; deployments use process env.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		logger.Error("failed to load station registry", "error", err)
		os.Exit(1)
	}
	if _, ok := registry.Lookup(cfg.PrimaryStation); !ok {
		logger.Error("primary station not in registry", "station", cfg.PrimaryStation)
		os.Exit(1)
	}

	modelSources, err := buildModelSources(cfg, logger)
	if err != nil {
		logger.Error("failed to load model source mapping", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	store := cache.New(clock, map[cache.Class]time.Duration{
		cache.ClassCurrent:     cfg.CurrentTTL,
		cache.ClassHistory:     cfg.HistoryTTL,
		cache.ClassForecast:    cfg.ForecastTTL,
		cache.ClassOverlayWind: cfg.OverlayWindTTL,
		cache.ClassOverlayWave: cfg.OverlayWaveTTL,
	})

	// Conditions streaming is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.ConditionsPublisher
	var kafkaPub *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publisher = kafkaPub
		logger.Info("conditions publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("conditions publishing disabled")
	}

	svc := pipeline.New(pipeline.Params{
		Registry:             registry,
		ModelSources:         modelSources,
		Feed:                 ndbc.NewClient(cfg.NDBCBaseURL, logger),
		Model:                cdipadapter.NewClient(cfg.CDIPBaseURL, cfg.ExtendedFetchTimeout, logger),
		Cache:                store,
		Publisher:            publisher,
		Clock:                clock,
		Logger:               logger,
		Metrics:              metrics,
		FetchTimeout:         cfg.FetchTimeout,
		ExtendedFetchTimeout: cfg.ExtendedFetchTimeout,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.PrimaryStation, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("service started",
		"stations", registry.Len(),
		"primary", cfg.PrimaryStation,
		"model_sources", len(modelSources),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildRegistry loads the station table from STATIONS_FILE when set; a
// missing file falls back to the compiled-in defaults, any other failure is
// fatal.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*domain.Registry, error) {
	if cfg.StationsFile != "" {
		stations, err := domain.LoadStationsFile(cfg.StationsFile)
		switch {
		case err == nil:
			return domain.NewRegistry(stations), nil
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("stations file missing, using defaults", "path", cfg.StationsFile)
		default:
			return nil, err
		}
	}
	return domain.NewRegistry(domain.DefaultStations()), nil
}

func buildModelSources(cfg *config.Config, logger *slog.Logger) (map[string]string, error) {
	if cfg.ModelSourceFile != "" {
		mapping, err := domain.LoadMappingFile(cfg.ModelSourceFile)
		switch {
		case err == nil:
			return mapping, nil
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("model source file missing, using defaults", "path", cfg.ModelSourceFile)
		default:
			return nil, err
		}
	}
	return domain.DefaultModelSources(), nil
}
