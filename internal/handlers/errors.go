package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/JayaSurya08-dev/Nimbus/internal/service"
)

// httpError maps service errors to responses. Nothing but the fixed messages
// below reaches the client; notFound names the missing resource.
func httpError(err error, notFound string) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "username already exists")
	case errors.Is(err, service.ErrInvalidCredential):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid google credential")
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, service.ErrMissingToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token not provided")
	case errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
	case errors.Is(err, service.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrDelivery):
		return echo.NewHTTPError(http.StatusBadGateway, "could not send email")
	case errors.Is(err, service.ErrUpstream):
		return echo.NewHTTPError(http.StatusBadGateway, "storage provider error")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func invalidBody() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}
