package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"community-lending/internal/adapter/middleware"
	"community-lending/internal/domain/apperr"
	ids "community-lending/pkg/id"
)

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindStateConflict, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindBusinessRule:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindTransient:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// responder writes usecase errors as JSON. Wrapped causes are never
// exposed; failures the server is to blame for are logged.
type responder struct{ log zerolog.Logger }

func (r responder) fail(c echo.Context, err error) error {
	status := statusFor(err)
	body := ErrorResponse{Error: "internal error", Code: apperr.CodeOf(err)}
	var ae *apperr.Error
	switch {
	case status == http.StatusServiceUnavailable:
		body.Error = "service temporarily unavailable"
	case errors.As(err, &ae):
		body.Error = ae.Message
	}
	if status >= http.StatusInternalServerError {
		r.log.Error().Err(err).
			Str("method", c.Request().Method).
			Str("route", c.Path()).
			Int("status", status).
			Msg("request failed")
	}
	return c.JSON(status, body)
}

// bindValid binds and validates req. When it returns false the error
// response has already been written.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// actingUser returns the caller's id, preferring the one the idempotency
// middleware already validated.
func actingUser(c echo.Context) (string, bool) {
	if v, ok := c.Get(middleware.ContextUserID).(string); ok && v != "" {
		return v, true
	}
	id := strings.TrimSpace(c.Request().Header.Get(middleware.HeaderUserID))
	return id, ids.Valid(id)
}

func requireUser(c echo.Context) (string, bool, error) {
	id, ok := actingUser(c)
	if !ok {
		return "", false, c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid " + middleware.HeaderUserID})
	}
	return id, true, nil
}

func pathID(c echo.Context, name string) (string, bool, error) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + name + " path param"})
	}
	return v, true, nil
}
