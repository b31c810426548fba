package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"indoornav/internal/config"
	"indoornav/internal/handler"
	"indoornav/internal/hub"
	"indoornav/internal/metrics"
	"indoornav/internal/repository/sqlite"
	"indoornav/internal/service"
	"indoornav/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	definition := flag.String("definition", "", "building definition path (overrides config)")
	flag.Parse()

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if *configPath != "" {
		cfg, path, err = config.LoadFromPath(*configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load config", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *definition != "" {
		cfg.Building.Definition = *definition
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	logger.Info("starting indoornav server", slog.String("config", path))
	logger.Debug("configuration\n" + cfg.Summary())

	if cfg.Building.Definition == "" {
		logger.Error("no building definition configured")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("database opened", slog.String("path", cfg.Database.Path))

	reg := metrics.NewRegistry()
	reg.GetPrometheusRegistry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	eventBus := service.NewEventBus()

	sseHub := hub.New(logger)
	go sseHub.Run(ctx)

	events := make(chan service.Event, 100)
	eventBus.Subscribe(events)
	go hub.Forward(ctx, sseHub, events)

	nav := service.NewNavigator(service.Options{
		Definition:      cfg.Building.Definition,
		Order:           cfg.FloorOrder(),
		Params:          cfg.Builder.Params,
		Plan:            cfg.PlanOptions(),
		IterationFactor: cfg.Search.IterationFactor,
		MaxIterations:   cfg.Search.MaxIterations,
		KeepBuilds:      cfg.Database.KeepBuilds,
	},
		service.WithRepository(repo),
		service.WithEventBus(eventBus),
		service.WithRecorder(reg),
		service.WithLogger(logger),
	)

	// A broken definition at startup still serves the stored directory and
	// the diagnostics endpoint, so it is not fatal.
	if _, err := nav.Rebuild(ctx); err != nil {
		logger.Error("initial build failed", slog.Any("error", err))
	}

	if cfg.Watch.Enabled {
		w := watcher.New(nav.Files, func(string) {
			if _, err := nav.Rebuild(ctx); err != nil {
				logger.Warn("rebuild after change failed", slog.Any("error", err))
			}
		}, logger).WithDebounce(cfg.Watch.Debounce.Duration())
		go func() {
			select {
			case <-w.Ready():
				logger.Info("watching building files", slog.Int("files", len(nav.Files())))
			case <-ctx.Done():
			}
		}()
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watcher stopped", slog.Any("error", err))
			}
		}()
	}

	router := handler.NewRouter(handler.NewNavHandler(nav, logger), handler.RouterConfig{
		Events:  sseHub,
		Metrics: reg.Handler(),
		Logger:  logger,
		Timeout: cfg.Server.WriteTimeout.Duration(),
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: 0, // the event stream is long lived; API routes carry their own timeout
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server", slog.Int("event_clients", sseHub.ClientCount()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
}
