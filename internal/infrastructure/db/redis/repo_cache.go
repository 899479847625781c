package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRepoCacheTTL = 10 * time.Minute

// RepoCache keeps GitHub repository listings keyed by lower-cased username.
// Key format: github:repos:<username>
type RepoCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRepoCache(client *redis.Client, ttl time.Duration) *RepoCache {
	if ttl <= 0 {
		ttl = defaultRepoCacheTTL
	}
	return &RepoCache{client: client, ttl: ttl}
}

// Get returns the cached payload; ok is false on a miss.
func (c *RepoCache) Get(ctx context.Context, username string) (json.RawMessage, bool, error) {
	b, err := c.client.Get(ctx, repoKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("repo cache get: %w", err)
	}
	return json.RawMessage(b), true, nil
}

func (c *RepoCache) Set(ctx context.Context, username string, repos json.RawMessage) error {
	if err := c.client.Set(ctx, repoKey(username), []byte(repos), c.ttl).Err(); err != nil {
		return fmt.Errorf("repo cache set: %w", err)
	}
	return nil
}

func repoKey(username string) string {
	return "github:repos:" + strings.ToLower(username)
}
