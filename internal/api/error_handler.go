package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devconnector/connector-api/internal/api/handler"
	"github.com/devconnector/connector-api/internal/core/domain"
)

// serverError is the plain-text body of every unexpected failure.
const serverError = "Server Error"

type msgBody struct {
	Msg string `json:"msg"`
}

type errorsBody struct {
	Errors handler.ValidationErrors `json:"errors"`
}

// msgErrors map to {"msg": ...}.
var msgErrors = []struct {
	err    error
	status int
	msg    string
}{
	{domain.ErrMissingToken, http.StatusUnauthorized, "No Token, authorization denied!"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "Token is not valid!"},
	{domain.ErrNotAuthorized, http.StatusUnauthorized, "User not authorized!"},
	{domain.ErrAlreadyLiked, http.StatusBadRequest, "Post already liked!"},
	{domain.ErrNotLiked, http.StatusBadRequest, "Post has not yet been liked!"},
	{domain.ErrPostNotFound, http.StatusNotFound, "Post Not Found!"},
	{domain.ErrCommentNotFound, http.StatusNotFound, "Comment Not Found!"},
	{domain.ErrProfileNotFound, http.StatusNotFound, "Profile Not Found!"},
	{domain.ErrExperienceNotFound, http.StatusNotFound, "Experience Not Found!"},
	{domain.ErrEducationNotFound, http.StatusNotFound, "Education Not Found!"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User Not Found!"},
	{domain.ErrReposNotFound, http.StatusNotFound, "No github repos found!"},
}

// inputErrors map to {"errors": [{"msg": ...}]} with 400.
var inputErrors = []struct {
	err error
	msg string
}{
	{domain.ErrUserExists, "User Already Exists!"},
	{domain.ErrInvalidCredentials, "Invalid Credentials!"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders field validation failures as {"errors": [...]}.
//   - Maps known domain errors to their status and {"msg": ...} body.
//   - Logs anything else and answers 500 "Server Error" without detail.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve handler.ValidationErrors
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, errorsBody{Errors: ve})
			return
		}

		for _, ie := range inputErrors {
			if errors.Is(err, ie.err) {
				_ = c.JSON(http.StatusBadRequest, errorsBody{Errors: handler.ValidationErrors{{Msg: ie.msg}}})
				return
			}
		}

		for _, me := range msgErrors {
			if errors.Is(err, me.err) {
				_ = c.JSON(me.status, msgBody{Msg: me.msg})
				return
			}
		}

		// Echo's own errors (unknown route, method not allowed, body limit).
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			_ = c.JSON(he.Code, msgBody{Msg: fmt.Sprintf("%v", he.Message)})
			return
		}

		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")

		_ = c.String(http.StatusInternalServerError, serverError)
	}
}
