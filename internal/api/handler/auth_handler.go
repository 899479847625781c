package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/connector-api/internal/api/metrics"
	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorsResponse
// @Failure      500   {string}  string
// @Router       /api/users [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "rejected").Inc()
		return err
	}

	token, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", authResult(err)).Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorsResponse
// @Failure      500   {string}  string
// @Router       /api/auth [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "rejected").Inc()
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", authResult(err)).Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/auth [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Me(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Logout revokes the presented token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "Logged Out!"})
}

func authResult(err error) string {
	if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrInvalidCredentials) {
		return "rejected"
	}
	return "error"
}
