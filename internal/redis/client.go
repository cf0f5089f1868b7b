package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/Concert-Mate/Music-Service/internal/redis/config"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *redis.Client
	addr   string
}

func NewClient(cfg config.Config) *Client {
	var tlsConfig *tls.Config
	if cfg.TLS {
		tlsConfig = &tls.Config{ // nolint:gosec
			MinVersion: cfg.MinTLSVersion,
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	redisClient := redis.NewClient(&redis.Options{
		Addr:      addr,
		Username:  cfg.User,
		Password:  cfg.Password,
		DB:        cfg.Database,
		TLSConfig: tlsConfig,
	})

	return &Client{
		client: redisClient,
		addr:   addr,
	}
}

// WaitReady blocks until the server answers an authenticated PING.
// It gives up after attempts failed probes, returning the last error.
func (c *Client) WaitReady(ctx context.Context, attempts int, interval time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = c.client.Ping(ctx).Err()
		if lastErr == nil {
			slog.Info("redis is ready", "addr", c.addr, "attempt", attempt)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("redis is not ready yet", "addr", c.addr, "attempt", attempt, "attempts", attempts, "error", lastErr)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return errors.Wrapf(lastErr, "redis at %s is not ready after %d attempts", c.addr, attempts)
}

func (c *Client) Ping(ctx context.Context) *redis.StatusCmd {
	return c.client.Ping(ctx)
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return c.client.Get(ctx, key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return c.client.Set(ctx, key, value, expiration)
}

func (c *Client) Close() error {
	return c.client.Close()
}
