package middleware

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectID rejects requests whose path parameter cannot be a stored id.
// Such ids can never match, so the request fails as notFound without
// touching the store.
func ObjectID(param string, notFound error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !primitive.IsValidObjectID(c.Param(param)) {
				return notFound
			}
			return next(c)
		}
	}
}
