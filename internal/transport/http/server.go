package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/JayaSurya08-dev/Nimbus/internal/middleware/csrf"
	loggingmw "github.com/JayaSurya08-dev/Nimbus/internal/middleware/logging"
)

type Options struct {
	Logger      *slog.Logger
	CORSOrigins []string
	CSRF        bool
	// BodyLimit caps request bodies, e.g. "100M". Empty means no limit.
	BodyLimit string
}

// New builds the echo instance with the middleware chain and all routes.
func New(d *Deps, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(loggingmw.RequestLogger(opts.Logger))
	if len(opts.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     opts.CORSOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{
				echo.HeaderOrigin,
				echo.HeaderContentType,
				echo.HeaderAccept,
				echo.HeaderAuthorization,
				"X-CSRF-Token",
			},
		}))
	}
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}
	if opts.CSRF {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:         true,
			AllowedOrigins: opts.CORSOrigins,
			SkipPaths:      append([]string{"/health/live", "/health/ready"}, PublicPaths...),
		}))
	}

	Register(e, d)
	return e
}
