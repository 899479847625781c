package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
)

// bcryptCost matches the salt rounds of existing stored hashes.
const bcryptCost = 10

// ActivitySink abstracts the asynchronous activity log.
type ActivitySink interface {
	Enqueue(activity domain.Activity)
}

type noopActivitySink struct{}

func (noopActivitySink) Enqueue(domain.Activity) {}

func normalizeSink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// AuthService implements registration, login and session teardown.
type AuthService struct {
	users    ports.UserRepository
	issuer   ports.TokenIssuer
	revoker  ports.TokenRevoker
	activity ActivitySink
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	issuer ports.TokenIssuer,
	revoker ports.TokenRevoker,
	activity ActivitySink,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		issuer:   issuer,
		revoker:  revoker,
		activity: normalizeSink(activity),
		log:      log,
	}
}

// Register creates the account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	email = normalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return "", domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Avatar:       gravatarURL(email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return "", err
		}
		return "", fmt.Errorf("register: %w", err)
	}

	token, _, err := s.issuer.Issue(created.ID)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	s.activity.Enqueue(domain.Activity{UserID: created.ID, Action: domain.ActionRegistered, OccurredAt: time.Now().UTC()})

	return token, nil
}

// Login checks the credentials and returns a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, _, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	s.activity.Enqueue(domain.Activity{UserID: user.ID, Action: domain.ActionLoggedIn, OccurredAt: time.Now().UTC()})
	return token, nil
}

// Me returns the principal's account.
func (s *AuthService) Me(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, principal domain.Principal) error {
	if err := s.revoker.Revoke(ctx, principal); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.activity.Enqueue(domain.Activity{UserID: principal.ID, Action: domain.ActionLoggedOut, OccurredAt: time.Now().UTC()})
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// gravatarURL builds the avatar link: 200px, PG rated, mystery-man fallback.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=mm&r=pg&s=200"
}
