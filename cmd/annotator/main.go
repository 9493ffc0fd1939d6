// Command annotator runs the weather annotation service: periodic and
// on-demand batch runs over upcoming calendar events, plus health and
// metrics endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/event-weather-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/event-weather-service/internal/adapter/kafka"
	"github.com/couchcryptid/event-weather-service/internal/adapter/mapbox"
	"github.com/couchcryptid/event-weather-service/internal/adapter/metno"
	"github.com/couchcryptid/event-weather-service/internal/adapter/postgres"
	"github.com/couchcryptid/event-weather-service/internal/config"
	"github.com/couchcryptid/event-weather-service/internal/observability"
	"github.com/couchcryptid/event-weather-service/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("annotator stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	rules, err := config.LoadGearRules(cfg.GearRulesFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	store := postgres.NewEventStore(pool, logger)

	var lock pipeline.Lock
	switch cfg.LockBackend {
	case "postgres":
		lock = postgres.NewAdvisoryLock(pool, postgres.DefaultLockKey, nil)
	default:
		lock = pipeline.NewMutexLock(nil)
	}
	logger.Info("run lock configured", "backend", cfg.LockBackend, "timeout", cfg.LockTimeout)

	geocoder := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	resolver := mapbox.NewCachedResolver(geocoder, cfg.MapboxCacheSize, metrics)
	forecasts := metno.NewClient(cfg.MetnoUserAgent, cfg.MetnoTimeout, metrics, logger)

	annotator := pipeline.NewAnnotator(resolver, forecasts, pipeline.AnnotatorOptions{
		Config:          cfg.AnnotateConfig(rules),
		DefaultLocation: cfg.DefaultLocation(),
		Location:        cfg.Location,
		GoNoGo:          cfg.GoNoGoPattern,
	}, logger)

	deps := pipeline.Dependencies{
		Events:    store,
		Updater:   store,
		Annotator: annotator,
		Lock:      lock,
		Logger:    logger,
		Metrics:   metrics,
	}
	if cfg.PublishEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		deps.Publisher = writer
		logger.Info("annotation publishing enabled", "topic", cfg.KafkaTopic)
	}

	filter := pipeline.FilterOptions{
		CalendarIDs:     cfg.CalendarIDs,
		ColorIDs:        cfg.ColorIDs,
		TitlePattern:    cfg.TitlePattern,
		RequireLocation: cfg.RequireLocation,
		SkipAllDay:      cfg.SkipAllDay,
		AcceptedOnly:    cfg.AcceptedOnly,
	}.Build(cfg.Delimiters())

	coordinator := pipeline.NewCoordinator(deps, pipeline.Options{
		LockTimeout: cfg.LockTimeout,
		QuietPeriod: cfg.QuietPeriod,
		Location:    cfg.Location,
		Filter:      filter,
	})
	scheduler := pipeline.NewScheduler(coordinator, cfg.RunInterval, cfg.DaysAhead, nil, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, coordinator, scheduler, httpadapter.Options{
		DefaultDays: cfg.DaysAhead,
		MaxDays:     config.MaxDaysAhead,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}
