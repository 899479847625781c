package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/devconnector/connector-api/internal/core/domain"
)

type stubUserRepo struct {
	byID      map[string]*domain.User
	seq       int
	findErr   error
	deleteErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("user-%d", r.seq)
	r.byID[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.byID, id)
	return nil
}

type recordingSink struct {
	activities []domain.Activity
}

func (s *recordingSink) Enqueue(a domain.Activity) {
	s.activities = append(s.activities, a)
}

func (s *recordingSink) actions() []domain.ActivityAction {
	out := make([]domain.ActivityAction, 0, len(s.activities))
	for _, a := range s.activities {
		out = append(out, a.Action)
	}
	return out
}

func newAuthSvc(repo *stubUserRepo) (*AuthService, *TokenService, *stubRevocationStore, *recordingSink) {
	store := newStubRevocationStore()
	tokens := NewTokenService("secret", time.Hour, store)
	sink := &recordingSink{}
	return NewAuthService(repo, tokens, tokens, sink, zerolog.Nop()), tokens, store, sink
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens, _, sink := newAuthSvc(repo)

	token, err := svc.Register(context.Background(), "A", "A@X.com ", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	p, err := tokens.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	user := repo.byID[p.ID]
	if user == nil {
		t.Fatalf("token principal %q has no stored user", p.ID)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(user.PasswordHash)); cost != bcryptCost {
		t.Fatalf("expected bcrypt cost %d, got %d", bcryptCost, cost)
	}
	if !strings.HasPrefix(user.Avatar, "//www.gravatar.com/avatar/") {
		t.Fatalf("unexpected avatar: %q", user.Avatar)
	}
	if got := sink.actions(); len(got) != 1 || got[0] != domain.ActionRegistered {
		t.Fatalf("expected registered activity, got %v", got)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _, _ := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "A", "a@x.com", "secret1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "B", "A@x.com", "secret2"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected a single stored user, got %d", len(repo.byID))
	}
}

func TestAuthService_Register_StoreFault(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("mongo unavailable")
	svc, _, _, _ := newAuthSvc(repo)

	_, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	if err == nil || errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected opaque storage error, got %v", err)
	}
}

func TestAuthService_Register_NoSigningKey(t *testing.T) {
	repo := newStubUserRepo()
	tokens := NewTokenService("", time.Hour, nil)
	svc := NewAuthService(repo, tokens, tokens, nil, zerolog.Nop())

	token, err := svc.Register(context.Background(), "A", "a@x.com", "secret1")
	if !errors.Is(err, domain.ErrSigningKey) {
		t.Fatalf("expected ErrSigningKey, got %v", err)
	}
	if token != "" {
		t.Fatalf("expected no token, got %q", token)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens, _, sink := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "Carol", "carol@example.com", "s3cret!"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "Carol@Example.com", "s3cret!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	p, err := tokens.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if repo.byID[p.ID].Name != "Carol" {
		t.Fatalf("token does not identify carol: %+v", p)
	}
	if got := sink.actions(); len(got) != 2 || got[1] != domain.ActionLoggedIn {
		t.Fatalf("expected logged_in activity, got %v", got)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _, _ := newAuthSvc(repo)

	_, _ = svc.Register(context.Background(), "Dave", "dave@example.com", "goodpass")
	if _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _, _ := newAuthSvc(repo)

	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens, _, _ := newAuthSvc(repo)

	token, _ := svc.Register(context.Background(), "Eve", "eve@example.com", "password")
	p, _ := tokens.Verify(context.Background(), token)

	user, err := svc.Me(context.Background(), p)
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if user.Email != "eve@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Me(context.Background(), domain.Principal{ID: "gone"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens, store, _ := newAuthSvc(repo)

	token, _ := svc.Register(context.Background(), "Fay", "fay@example.com", "password")
	p, _ := tokens.Verify(context.Background(), token)

	if err := svc.Logout(context.Background(), p); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok := store.revoked[p.TokenID]; !ok {
		t.Fatalf("expected token to be denylisted")
	}
	if _, err := tokens.Verify(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected logged-out token to be rejected, got %v", err)
	}
}

func TestGravatarURL(t *testing.T) {
	want := "//www.gravatar.com/avatar/743173788aa9166801df2e18f0e7ff24?d=mm&r=pg&s=200"

	if got := gravatarURL("a@x.com"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := gravatarURL(" A@X.com "); got != want {
		t.Fatalf("gravatar must ignore case and whitespace, got %q", got)
	}
}
