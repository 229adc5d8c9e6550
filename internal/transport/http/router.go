package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/JayaSurya08-dev/Nimbus/internal/handlers"
	mwauth "github.com/JayaSurya08-dev/Nimbus/internal/middleware/auth"
)

type Deps struct {
	DB          *gorm.DB
	AuthHandler *handlers.AuthHandler
	FileHandler *handlers.FileHandler
	Tokens      mwauth.TokenVerifier
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready(d.DB))

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/auth/google", d.AuthHandler.GoogleLogin)
	api.POST("/token/refresh", d.AuthHandler.Refresh)
	api.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	api.POST("/reset-password", d.AuthHandler.ResetPassword)

	authed := api.Group("", mwauth.RequireLogin(d.Tokens))

	authed.POST("/logout", d.AuthHandler.Logout)
	authed.GET("/profile", d.AuthHandler.Profile)

	authed.POST("/upload", d.FileHandler.Upload)
	authed.GET("/files", d.FileHandler.List)
	authed.GET("/files/search", d.FileHandler.Search)
	authed.GET("/download/:id", d.FileHandler.Download)
	authed.DELETE("/delete/:id", d.FileHandler.Delete)
}

// PublicPaths are reachable without a session; CSRF checks skip them.
var PublicPaths = []string{
	"/api/register",
	"/api/login",
	"/api/auth/google",
	"/api/token/refresh",
	"/api/forgot-password",
	"/api/reset-password",
}

func ready(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.NoContent(http.StatusOK)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}
