package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Concert-Mate/Music-Service/internal/api"
	"github.com/Concert-Mate/Music-Service/internal/cache"
	"github.com/Concert-Mate/Music-Service/internal/config"
	"github.com/Concert-Mate/Music-Service/internal/log"
	"github.com/Concert-Mate/Music-Service/internal/redis"
	"github.com/Concert-Mate/Music-Service/internal/server"
	"github.com/Concert-Mate/Music-Service/internal/service"
	"github.com/Concert-Mate/Music-Service/internal/telemetry"
	"github.com/Concert-Mate/Music-Service/internal/yandex"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	app := &cli.Command{
		Name:   "music-service",
		Usage:  "Concerts, artists and track lists from Yandex Music",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "healthcheck",
				Usage: "wait for the cache to answer and exit",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "attempts",
						Usage: "number of PING attempts, overrides REDIS_WAIT_ATTEMPTS",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "delay between attempts, overrides REDIS_WAIT_INTERVAL",
					},
				},
				Action: healthcheck,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("music-service failed", "error", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load config")
	}
	log.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func serve(ctx context.Context, _ *cli.Command) error {
	var wg sync.WaitGroup
	// Registered first so a signal during the wait for the cache still
	// runs the deferred cleanup.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := setup()
	if err != nil {
		return err
	}

	slog.Info("initializing telemetry...")
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OtelConfig.Endpoint, cfg.OtelConfig.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	}()

	slog.Info("initializing redis client...")
	rdb := redis.NewClient(cfg.RedisConfig)
	defer func() {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err)
		}
	}()
	if err := rdb.WaitReady(ctx, cfg.RedisConfig.WaitAttempts, cfg.RedisConfig.WaitInterval); err != nil {
		if ctx.Err() != nil {
			slog.Info("received shutdown signal before redis became ready")
			return nil
		}
		return err
	}

	slog.Info("initializing music service...")
	store := cache.New(rdb, cache.DefaultPrefix)
	music := service.NewMusic(yandex.New(cfg.YandexMusicConfig), store, service.Expirations{
		Concerts:   cfg.ConcertsExpiration(),
		TrackLists: cfg.TrackListsExpiration(),
	})

	srv := server.New(cfg.Addr(), api.NewRouter(music, store))
	if err := srv.Start(ctx, &wg); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("received shutdown signal, initiating graceful shutdown...")

	wg.Wait()
	slog.Info("graceful shutdown finished")
	return nil
}

func healthcheck(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := setup()
	if err != nil {
		return err
	}

	attempts := cfg.RedisConfig.WaitAttempts
	if cmd.IsSet("attempts") {
		attempts = int(cmd.Int("attempts"))
	}
	interval := cfg.RedisConfig.WaitInterval
	if cmd.IsSet("interval") {
		interval = cmd.Duration("interval")
	}
	if attempts < 1 {
		return errors.Errorf("attempts must be positive, got %d", attempts)
	}

	rdb := redis.NewClient(cfg.RedisConfig)
	defer rdb.Close()

	if err := rdb.WaitReady(ctx, attempts, interval); err != nil {
		return err
	}
	slog.Info("cache is ready")
	return nil
}
