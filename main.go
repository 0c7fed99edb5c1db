// Package main is the entry point for the budget tracker API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/yelinaung/budget-tracker/internal/api"
	"gitlab.com/yelinaung/budget-tracker/internal/config"
	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/gemini"
	"gitlab.com/yelinaung/budget-tracker/internal/logger"
	"gitlab.com/yelinaung/budget-tracker/internal/notify"
	"gitlab.com/yelinaung/budget-tracker/internal/repository"
	"gitlab.com/yelinaung/budget-tracker/internal/repository/memory"
	"gitlab.com/yelinaung/budget-tracker/internal/telemetry"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("budget-tracker %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.InitHashSalt()

	if err := run(ctx, cfg); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server stopped with error")
	}
	logger.Log.Info().Msg("Shut down cleanly")
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		Exporter:    cfg.TelemetryExporter,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Telemetry shutdown failed")
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sink, closeSinks, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	svcCfg := tracker.Config{
		Store:          store,
		Sink:           sink,
		Clock:          tracker.SystemClock{Location: cfg.Location},
		CurrencySymbol: cfg.CurrencySymbol,
	}
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create gemini client: %w", err)
		}
		svcCfg.Suggester = client
		logger.Log.Info().Msg("Category suggestions enabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(tracker.NewService(svcCfg)).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info().Msg("Shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (tracker.Store, func(), error) {
	if cfg.StorageBackend == config.BackendMemory {
		logger.Log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.WithMaxConns(cfg.DBMaxConns))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.SeedCategories(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	logger.Log.Info().Msg("Database initialized successfully")
	return repository.NewStore(pool), pool.Close, nil
}

func buildSinks(cfg *config.Config) (*notify.Multi, func(), error) {
	var (
		sinks   []notify.Sink
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Log.Warn().Err(err).Msg("Failed to close notifier")
			}
		}
	}

	for _, name := range cfg.Notifiers {
		switch name {
		case config.NotifierLog:
			sinks = append(sinks, notify.LogSink{})
		case config.NotifierSMTP:
			s, err := notify.NewSMTPSink(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("failed to create smtp notifier: %w", err)
			}
			sinks = append(sinks, s)
		case config.NotifierAMQP:
			s, err := notify.DialAMQPSink(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("failed to connect amqp notifier: %w", err)
			}
			sinks = append(sinks, s)
			closers = append(closers, s.Close)
		case config.NotifierTelegram:
			s, err := notify.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("failed to create telegram notifier: %w", err)
			}
			sinks = append(sinks, s)
		}
	}

	logger.Log.Info().Strs("notifiers", cfg.Notifiers).Msg("Notification sinks configured")
	return notify.NewMulti(sinks...), closeAll, nil
}
