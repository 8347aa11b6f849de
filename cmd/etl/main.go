// Command etl runs the Maji Ndogo batch pipelines end to end: the weather
// pipeline (station readings + measurement extraction) and the field
// pipeline (survey records + corrections + weather station join). Health
// and metrics endpoints are served for the duration of the run.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/majindogo/farm-survey-etl/internal/adapter/csvfetch"
	httpadapter "github.com/majindogo/farm-survey-etl/internal/adapter/http"
	"github.com/majindogo/farm-survey-etl/internal/adapter/sqldb"
	"github.com/majindogo/farm-survey-etl/internal/config"
	"github.com/majindogo/farm-survey-etl/internal/domain"
	"github.com/majindogo/farm-survey-etl/internal/observability"
	"github.com/majindogo/farm-survey-etl/internal/pipeline"
)

// readiness reports ready once both pipelines have produced their tables.
type readiness struct {
	field   *pipeline.FieldProcessor
	weather *pipeline.WeatherProcessor
}

func (r *readiness) CheckReadiness(_ context.Context) error {
	if r.weather.State() != pipeline.StateProcessed {
		return errors.New("weather pipeline has not completed")
	}
	if r.field.State() != pipeline.StateProcessed {
		return errors.New("field pipeline has not completed")
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("etl run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	patterns := make([]domain.Pattern, 0, len(cfg.Patterns))
	for _, spec := range cfg.Patterns {
		p, err := domain.NewPattern(spec.Kind, spec.Pattern)
		if err != nil {
			return err
		}
		patterns = append(patterns, p)
	}

	db, err := sqldb.Open(ctx, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	fetcher := csvfetch.NewClient(cfg.FetchTimeout, logger)

	weather := pipeline.NewWeatherProcessor(pipeline.WeatherConfig{
		StationCSVURL: cfg.WeatherCSVURL,
		Patterns:      patterns,
	}, fetcher, logger, metrics)

	field := pipeline.NewFieldProcessor(pipeline.FieldConfig{
		SQLQuery:     cfg.SQLQuery,
		SwapFrom:     cfg.SwapFrom,
		SwapTo:       cfg.SwapTo,
		ValueRenames: cfg.ValueRenames,
		MappingURL:   cfg.WeatherMappingURL,
	}, db, fetcher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, &readiness{field: field, weather: weather}, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}()

	weatherTable, err := weather.Process(ctx)
	if err != nil {
		return err
	}
	logger.Info("weather table ready", "rows", weatherTable.NumRows())

	means, err := weather.CalculateMeans()
	if err != nil {
		return err
	}
	logger.Info("station means ready", "stations", means.NumRows())

	fieldTable, err := field.Process(ctx)
	if err != nil {
		return err
	}
	logger.Info("field table ready", "rows", fieldTable.NumRows())

	return nil
}
