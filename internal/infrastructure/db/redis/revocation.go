package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore is the token denylist. Entries expire together with the
// token they revoke, so the set never outgrows the live tokens.
// Key format: revoked:<jti>
type RevocationStore struct {
	client *redis.Client
}

func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

var errEmptyTokenID = errors.New("empty token id")

// Revoke denylists tokenID for ttl. A non-positive ttl means the token has
// already expired and nothing is stored.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errEmptyTokenID
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}
