package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/connector-api/internal/api/metrics"
	"github.com/devconnector/connector-api/internal/api/middleware"
	"github.com/devconnector/connector-api/internal/core/domain"
)

// ctxPrincipal returns the Principal set by the Auth middleware. Its absence
// means the route was mounted without Auth, which is treated as no token.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrMissingToken
	}
	return p, nil
}

// denied counts ownership refusals for resource and passes err through.
func denied(resource string, err error) error {
	if errors.Is(err, domain.ErrNotAuthorized) {
		metrics.OwnershipDenialsTotal.WithLabelValues(resource).Inc()
	}
	return err
}
