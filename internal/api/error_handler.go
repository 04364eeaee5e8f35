package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vavastapak/account-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes and client messages.
//   - Logs storage and unexpected errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, validation, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var dup *domain.DuplicateIdentityError
	if errors.As(err, &dup) {
		switch dup.Field {
		case domain.FieldEmail:
			return http.StatusBadRequest, "Email already exists"
		case domain.FieldMobile:
			return http.StatusBadRequest, "Mobile number already exists"
		default:
			return http.StatusBadRequest, "User already exists"
		}
	}

	switch {
	case errors.Is(err, domain.ErrStorage):
		// handled below
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrResetTokenExpired):
		return http.StatusBadRequest, "Token has expired"
	case errors.Is(err, domain.ErrInvalidResetToken):
		return http.StatusBadRequest, "Invalid or expired token"
	case errors.Is(err, domain.ErrPasswordMismatch):
		return http.StatusBadRequest, "Passwords do not match"
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusUnprocessableEntity, "invalid input"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	}

	// Storage or unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
