package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
)

// DefaultTokenTTL matches the 360000 second lifetime clients expect.
const DefaultTokenTTL = 100 * time.Hour

type tokenUser struct {
	ID string `json:"id"`
}

// Claims is the signed token payload: {"user":{"id":...}} plus jti/iat/exp.
type Claims struct {
	User tokenUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256 session tokens. The only
// server-side state is the optional revocation denylist.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked ports.TokenRevocationStore
	now     func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, revoked ports.TokenRevocationStore) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a token for a principal whose credentials were already checked.
func (s *TokenService) Issue(principalID string) (string, domain.Principal, error) {
	if len(s.secret) == 0 {
		return "", domain.Principal{}, domain.ErrSigningKey
	}

	now := s.now().UTC().Truncate(time.Second)
	p := domain.Principal{
		ID:        principalID,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	claims := Claims{
		User: tokenUser{ID: principalID},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.TokenID,
			IssuedAt:  jwt.NewNumericDate(p.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.Principal{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, p, nil
}

// Verify checks signature and expiry and rebuilds the Principal. Every
// decoding failure collapses into domain.ErrInvalidToken.
func (s *TokenService) Verify(ctx context.Context, raw string) (domain.Principal, error) {
	if raw == "" {
		return domain.Principal{}, domain.ErrMissingToken
	}
	if len(s.secret) == 0 {
		return domain.Principal{}, domain.ErrSigningKey
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid || claims.User.ID == "" {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	p := domain.Principal{
		ID:        claims.User.ID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}

	if s.revoked != nil && p.TokenID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, p.TokenID)
		if err != nil {
			return domain.Principal{}, fmt.Errorf("verify token: %w", err)
		}
		if revoked {
			return domain.Principal{}, domain.ErrInvalidToken
		}
	}

	return p, nil
}

// Revoke denylists the principal's token for the rest of its lifetime.
// Tokens without an id, or already expired, need no entry.
func (s *TokenService) Revoke(ctx context.Context, p domain.Principal) error {
	if s.revoked == nil || p.TokenID == "" {
		return nil
	}
	ttl := p.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, p.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
