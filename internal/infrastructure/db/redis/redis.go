// Package redis holds the short-lived state of the API: the denylist of
// revoked session tokens and the cached GitHub repository listings. Every key
// carries a TTL.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPingTimeout = 5 * time.Second

	// Per-command limits for denylist and cache calls.
	opTimeout  = 500 * time.Millisecond
	maxRetries = 2
)

// Config selects the instance that backs revocation and the repo cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	// PingTimeout bounds the startup reachability check.
	PingTimeout time.Duration
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  opTimeout * 4,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		MaxRetries:   maxRetries,
	}
}

// Connect returns a client once the instance answers PING.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	client := redis.NewClient(cfg.options())

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
