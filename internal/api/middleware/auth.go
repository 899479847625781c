package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/connector-api/internal/api/metrics"
	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
)

const (
	// TokenHeader carries the session token on private routes.
	TokenHeader = "x-auth-token"

	principalKey = "principal"
)

// Auth verifies the session token and stores the Principal on the context.
// Failures are returned as domain errors for the HTTP error handler.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := verifier.Verify(c.Request().Context(), c.Request().Header.Get(TokenHeader))
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(verificationResult(err)).Inc()
				return err
			}

			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the Principal stored by Auth.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, false
	}
	return p, true
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "missing"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid"
	default:
		return "error"
	}
}
