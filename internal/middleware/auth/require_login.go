package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	jwthelp "github.com/JayaSurya08-dev/Nimbus/internal/jwt"
	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
)

const userIDKey = "user_id"

type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (uint, error)
}

// RequireLogin accepts the access token from the access_token cookie or an
// "Authorization: Bearer" header and stores the user id on the context.
func RequireLogin(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context()).With("mw", "require_login")

			raw := AccessToken(c)
			if raw == "" {
				l.Warn("auth_failed", "status", 401, "reason", "no access token")
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
			}

			userID, err := v.Verify(c.Request().Context(), raw)
			if err != nil {
				l.Warn("auth_failed", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			SetUserID(c, userID)
			return next(c)
		}
	}
}

// AccessToken returns the raw access token of the request, cookie first.
func AccessToken(c echo.Context) string {
	if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func SetUserID(c echo.Context, id uint) {
	c.Set(userIDKey, id)
}

var ErrNoUser = errors.New("no authenticated user on context")

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get(userIDKey).(uint)
	if !ok || id == 0 {
		return 0, ErrNoUser
	}
	return id, nil
}
