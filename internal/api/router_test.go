package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
	"github.com/devconnector/connector-api/internal/core/service"
	"github.com/devconnector/connector-api/internal/infrastructure/http/handlers"
)

const (
	ownerID = "64b7f0c2a1b2c3d4e5f60718"
	otherID = "64b7f0c2a1b2c3d4e5f60719"
	postHex = "64b7f0c2a1b2c3d4e5f6071a"
)

type routerAuth struct{ ports.AuthService }

func (routerAuth) Register(context.Context, string, string, string) (string, error) {
	return "tok", nil
}

type routerPosts struct{ ports.PostService }

func (routerPosts) List(context.Context) ([]*domain.Post, error) {
	return nil, errors.New("mongo: connection reset")
}

func (routerPosts) Delete(_ context.Context, p domain.Principal, id string) error {
	if p.ID != ownerID {
		return domain.ErrNotAuthorized
	}
	return nil
}

type routerProfiles struct{ ports.ProfileService }

func newTestRouter(t *testing.T) (*echo.Echo, *service.TokenService) {
	t.Helper()
	tokens := service.NewTokenService("secret", time.Hour, nil)
	e := NewRouter(Dependencies{
		Auth:      routerAuth{},
		Profiles:  routerProfiles{},
		Posts:     routerPosts{},
		Verifier:  tokens,
		Readiness: map[string]handlers.Pinger{"mongodb": func(context.Context) error { return nil }},
		Log:       zerolog.Nop(),
		Registry:  prometheus.NewRegistry(),
	})
	return e, tokens
}

func serve(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Contract(t *testing.T) {
	e, tokens := newTestRouter(t)
	owner, _, err := tokens.Issue(ownerID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other, _, _ := tokens.Issue(otherID)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		status int
		want   string
	}{
		{"private without token", http.MethodGet, "/api/post", "", "", 401, `{"msg":"No Token, authorization denied!"}`},
		{"private with garbage token", http.MethodGet, "/api/auth", "garbage", "", 401, `{"msg":"Token is not valid!"}`},
		{"malformed post id", http.MethodGet, "/api/post/not-an-id", owner, "", 404, `{"msg":"Post Not Found!"}`},
		{"malformed comment id", http.MethodDelete, "/api/post/comment/" + postHex + "/x", owner, "", 404, `{"msg":"Comment Not Found!"}`},
		{"malformed profile user id", http.MethodGet, "/api/profile/user/x", "", "", 404, `{"msg":"Profile Not Found!"}`},
		{"non-owner delete", http.MethodDelete, "/api/post/" + postHex, other, "", 401, `{"msg":"User not authorized!"}`},
		{"owner delete", http.MethodDelete, "/api/post/" + postHex, owner, "", 200, `{"msg":"Post Removed!"}`},
		{"store fault", http.MethodGet, "/api/post", owner, "", 500, `Server Error`},
		{"register", http.MethodPost, "/api/users", "", `{"name":"A","email":"a@x.com","password":"secret1"}`, 201, `{"token":"tok"}`},
		{"register invalid", http.MethodPost, "/api/users", "", `{"name":"A","email":"a@x.com","password":"1"}`, 400, `"msg":"Please Enter a password with 6 or more characters"`},
		{"malformed json", http.MethodPost, "/api/users", "", `{`, 400, `{"errors":[{"msg":"Invalid request payload"}]}`},
		{"unknown route", http.MethodGet, "/api/nothing", "", "", 404, `"msg":"Not Found"`},
		{"liveness", http.MethodGet, "/health", "", "", 200, `"status":"ok"`},
		{"readiness", http.MethodGet, "/health/ready", "", "", 200, `"mongodb":{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.method, tt.target, tt.token, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Fatalf("expected body to contain %s, got %s", tt.want, rec.Body.String())
			}
		})
	}
}

func TestRouter_RevokedTokenRejected(t *testing.T) {
	store := &memRevocations{ids: map[string]bool{}}
	tokens := service.NewTokenService("secret", time.Hour, store)
	e := NewRouter(Dependencies{
		Auth:     routerAuth{},
		Profiles: routerProfiles{},
		Posts:    routerPosts{},
		Verifier: tokens,
		Log:      zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})

	token, principal, _ := tokens.Issue(ownerID)
	if rec := serve(e, http.MethodDelete, "/api/post/"+postHex, token, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 before revocation, got %d", rec.Code)
	}

	if err := tokens.Revoke(context.Background(), principal); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	rec := serve(e, http.MethodDelete, "/api/post/"+postHex, token, "")
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Token is not valid!") {
		t.Fatalf("expected revoked token rejected, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_Metrics(t *testing.T) {
	e, _ := newTestRouter(t)
	serve(e, http.MethodGet, "/health", "", "")

	rec := serve(e, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "devconnector_requests_total") {
		t.Fatalf("expected request metrics, got %s", rec.Body.String())
	}
}

type memRevocations struct{ ids map[string]bool }

func (m *memRevocations) Revoke(_ context.Context, id string, _ time.Duration) error {
	m.ids[id] = true
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return m.ids[id], nil
}
