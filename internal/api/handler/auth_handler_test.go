package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/connector-api/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) (string, error)
	loginFn    func(ctx context.Context, email, password string) (string, error)
	meFn       func(ctx context.Context, p domain.Principal) (*domain.User, error)
	logoutFn   func(ctx context.Context, p domain.Principal) error
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.meFn(ctx, p)
}

func (s *stubAuthService) Logout(ctx context.Context, p domain.Principal) error {
	return s.logoutFn(ctx, p)
}

// newCtx builds an echo context with the validator installed. A non-empty
// principal ID simulates the Auth middleware having run.
func newCtx(method, target, body string, principal domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal.ID != "" {
		c.Set("principal", principal)
	}
	return c, rec
}

func validationErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	return ve
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (string, error) {
			if name != "Alice" || email != "a@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s %s", name, email, password)
			}
			return "signed.jwt.token", nil
		},
	}
	c, rec := newCtx(http.MethodPost, "/api/users", `{"name":"Alice","email":"a@example.com","password":"secret1"}`, domain.Principal{})

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "signed.jwt.token" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (string, error) {
			t.Fatalf("service must not be called on invalid input")
			return "", nil
		},
	}
	c, _ := newCtx(http.MethodPost, "/api/users", `{"name":"","email":"nope","password":"123"}`, domain.Principal{})

	ve := validationErrors(t, NewAuthHandler(stub).Register(c))
	want := map[string]string{
		"name":     "Name is required",
		"email":    "Enter a valid email",
		"password": "Please Enter a password with 6 or more characters",
	}
	if len(ve) != len(want) {
		t.Fatalf("expected %d errors, got %+v", len(want), ve)
	}
	for _, fe := range ve {
		if want[fe.Param] != fe.Msg {
			t.Fatalf("param %q: expected %q, got %q", fe.Param, want[fe.Param], fe.Msg)
		}
		if fe.Location != "body" {
			t.Fatalf("expected body location, got %q", fe.Location)
		}
		if fe.Param == "password" && fe.Value != nil {
			t.Fatalf("password value must not be echoed")
		}
	}
}

func TestAuthHandler_Register_PasswordByteLimit(t *testing.T) {
	var called string
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _, _, password string) (string, error) {
			called = password
			return "signed.jwt.token", nil
		},
	}

	// 40 runes but 80 bytes: over bcrypt's input limit.
	tooLong := strings.Repeat("é", 40)
	body, _ := json.Marshal(map[string]string{"name": "Alice", "email": "a@example.com", "password": tooLong})
	c, _ := newCtx(http.MethodPost, "/api/users", string(body), domain.Principal{})

	ve := validationErrors(t, NewAuthHandler(stub).Register(c))
	if len(ve) != 1 || ve[0].Param != "password" || ve[0].Msg != "Password must be at most 72 bytes" {
		t.Fatalf("unexpected errors: %+v", ve)
	}
	if ve[0].Value != nil {
		t.Fatalf("password value must not be echoed")
	}
	if called != "" {
		t.Fatalf("service must not be called, got password of %d bytes", len(called))
	}

	// Exactly 72 bytes is accepted.
	atLimit := strings.Repeat("é", 36)
	body, _ = json.Marshal(map[string]string{"name": "Alice", "email": "a@example.com", "password": atLimit})
	c, rec := newCtx(http.MethodPost, "/api/users", string(body), domain.Principal{})
	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated || called != atLimit {
		t.Fatalf("expected 201 with password forwarded, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_MalformedJSON(t *testing.T) {
	c, _ := newCtx(http.MethodPost, "/api/users", `{"name":`, domain.Principal{})

	ve := validationErrors(t, NewAuthHandler(&stubAuthService{}).Register(c))
	if len(ve) != 1 || ve[0].Msg != "Invalid request payload" {
		t.Fatalf("unexpected errors: %+v", ve)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (string, error) {
			return "", domain.ErrUserExists
		},
	}
	c, _ := newCtx(http.MethodPost, "/api/users", `{"name":"A","email":"a@x.com","password":"secret1"}`, domain.Principal{})

	if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			if password != "secret1" {
				return "", domain.ErrInvalidCredentials
			}
			return "tok", nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newCtx(http.MethodPost, "/api/auth", `{"email":"a@x.com","password":"secret1"}`, domain.Principal{})
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	c, _ = newCtx(http.MethodPost, "/api/auth", `{"email":"a@x.com","password":"wrong"}`, domain.Principal{})
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	c, _ = newCtx(http.MethodPost, "/api/auth", `{"email":"a@x.com"}`, domain.Principal{})
	ve := validationErrors(t, h.Login(c))
	if len(ve) != 1 || ve[0].Msg != "Password is required" {
		t.Fatalf("unexpected errors: %+v", ve)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		meFn: func(ctx context.Context, p domain.Principal) (*domain.User, error) {
			return &domain.User{ID: p.ID, Name: "Alice", Email: "a@x.com", PasswordHash: "$2a$10$hash"}, nil
		},
	}
	c, rec := newCtx(http.MethodGet, "/api/auth", "", domain.Principal{ID: "u1"})

	if err := NewAuthHandler(stub).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"_id":"u1"`) {
		t.Fatalf("expected user id in body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Me_WithoutPrincipal(t *testing.T) {
	c, _ := newCtx(http.MethodGet, "/api/auth", "", domain.Principal{})

	if err := NewAuthHandler(&stubAuthService{}).Me(c); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked domain.Principal
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, p domain.Principal) error {
			revoked = p
			return nil
		},
	}
	c, rec := newCtx(http.MethodPost, "/api/auth/logout", "", domain.Principal{ID: "u1", TokenID: "jti"})

	if err := NewAuthHandler(stub).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked.TokenID != "jti" {
		t.Fatalf("expected presented token revoked, got %+v", revoked)
	}
	if !strings.Contains(rec.Body.String(), `"msg":"Logged Out!"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
