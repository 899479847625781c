package ports

import (
	"context"
	"time"

	"github.com/devconnector/connector-api/internal/core/domain"
)

// TokenIssuer produces signed bearer tokens for an already-authenticated user.
type TokenIssuer interface {
	Issue(principalID string) (string, domain.Principal, error)
}

// TokenVerifier reconstructs the Principal from a raw token.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (domain.Principal, error)
}

// TokenRevocationStore is the denylist of token ids revoked before expiry.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenRevoker invalidates a presented token before its natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, principal domain.Principal) error
}
