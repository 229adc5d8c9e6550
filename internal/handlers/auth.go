package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	jwthelp "github.com/JayaSurya08-dev/Nimbus/internal/jwt"
	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
	mwauth "github.com/JayaSurya08-dev/Nimbus/internal/middleware/auth"
	"github.com/JayaSurya08-dev/Nimbus/internal/models"
	"github.com/JayaSurya08-dev/Nimbus/internal/service"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return invalidBody()
	}

	user, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return httpError(err, "")
	}

	l.Info("register_success", "status", 201)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "User created",
		"username": user.Username,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return invalidBody()
	}

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err, "")
	}

	h.setSession(c, res.Tokens)
	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    userView(res.User),
	})
}

func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_google")

	var req struct {
		Credential string `json:"credential"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("google_login_error", "status", 400, "error", err)
		return invalidBody()
	}

	res, err := h.Auth.GoogleLogin(ctx, req.Credential)
	if err != nil {
		return httpError(err, "")
	}

	h.setSession(c, res.Tokens)
	l.Info("login_successful", "user_id", res.User.ID, "provider", "google")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user": echo.Map{
			"id":       res.User.ID,
			"email":    res.User.Email,
			"name":     res.User.FullName(),
			"username": res.User.Username,
		},
	})
}

// Refresh reads the refresh token from its cookie only.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	ck, err := c.Cookie(jwthelp.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "no refresh cookie")
		return httpError(service.ErrMissingToken, "")
	}

	access, _, err := h.Auth.Tokens.Refresh(ctx, ck.Value)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "error", err)
		return httpError(err, "")
	}

	c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, access, "/", h.Auth.Tokens.AccessTTL))
	return c.JSON(http.StatusOK, echo.Map{"message": "Token refreshed"})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var refresh string
	if ck, err := c.Cookie(jwthelp.RefreshCookie); err == nil {
		refresh = ck.Value
	}
	h.Auth.Logout(ctx, refresh, mwauth.AccessToken(c))

	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
	logging.FromContext(ctx).Info("logout_successful", "handler", "auth_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	if err := h.Auth.ForgotPassword(ctx, req.Email); err != nil {
		return httpError(err, "no user found with this email")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset link sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	if err := h.Auth.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return httpError(err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password has been reset successfully"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}

	user, err := h.Auth.Profile(c.Request().Context(), userID)
	if err != nil {
		return httpError(err, "user not found")
	}
	return c.JSON(http.StatusOK, userView(user))
}

func (h *AuthHandler) setSession(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, pair.AccessToken, "/", h.Auth.Tokens.AccessTTL))
	c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, pair.RefreshToken, "/", h.Auth.Tokens.RefreshTTL))
}

func userView(u *models.User) echo.Map {
	return echo.Map{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	}
}
