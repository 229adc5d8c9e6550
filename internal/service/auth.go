package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/JayaSurya08-dev/Nimbus/internal/cache"
	"github.com/JayaSurya08-dev/Nimbus/internal/hash"
	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
	"github.com/JayaSurya08-dev/Nimbus/internal/models"
	"github.com/JayaSurya08-dev/Nimbus/internal/repo"
)

const (
	resetTokenLength   = 32
	resetTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	resetMailSubject   = "Password Reset Request"
)

type AuthService struct {
	Users    repo.UserRepository
	Tokens   *TokenService
	Resets   cache.Store
	Mailer   Mailer
	Google   GoogleVerifier
	Producer EventPublisher

	ResetURLBase  string
	ResetTokenTTL time.Duration
}

type LoginResult struct {
	User   *models.User
	Tokens *TokenPair
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	pwHash, err := hashPassword(password)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			l.Warn("register_error", "status", 400, "error", err)
		} else {
			l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		}
		return nil, err
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}

	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist", "username", username)
			return nil, ErrConflict
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Producer, TopicUserEvents, subject(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})
	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates by email. Callers only ever see ErrUnauthenticated for bad credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	// emails are shared between accounts; the password picks the account
	candidates, err := s.Users.FindAllByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if hash.CheckPassword(candidates[i].PasswordHash, password) {
			return s.startSession(ctx, &candidates[i], "user_logged_in")
		}
	}

	reason := "wrong password"
	if len(candidates) == 0 {
		reason = "no such user"
	}
	l.Warn("login_failed", "status", 401, "reason", reason)
	return nil, ErrUnauthenticated
}

func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.google")

	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("%w: credential is required", ErrValidation)
	}
	if s.Google == nil {
		l.Error("google_login_failed", "reason", "google sign-in is not configured")
		return nil, ErrInvalidCredential
	}

	identity, err := s.Google.Verify(ctx, credential)
	if err != nil {
		l.Warn("google_login_failed", "status", 400, "error", err)
		return nil, ErrInvalidCredential
	}
	if identity.Email == "" {
		l.Warn("google_login_failed", "status", 400, "reason", "no email claim")
		return nil, ErrInvalidCredential
	}

	first, last := SplitName(identity.Name)
	user, created, err := s.Users.FindOrCreateByEmail(ctx, &models.User{
		Username:  identity.Email,
		Email:     identity.Email,
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("google_login_failed", "status", 409, "reason", "username taken by another email")
			return nil, ErrConflict
		}
		l.Error("google_login_failed", "status", 500, "error", err)
		return nil, err
	}
	if created {
		l.Info("user_registered", "user_id", user.ID, "via", "google")
	}

	return s.startSession(ctx, user, "user_logged_in_google")
}

// SplitName takes the first whitespace-separated token as the first name and
// joins the rest into the last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, event string) (*LoginResult, error) {
	pair, err := s.Tokens.Issue(user)
	if err != nil {
		logging.FromContext(ctx).Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Producer, TopicUserEvents, subject(user.ID), map[string]any{
		"type":     event,
		"user_id":  user.ID,
		"username": user.Username,
	})
	return &LoginResult{User: user, Tokens: pair}, nil
}

// Logout revokes whatever it can and never fails.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if err := s.Tokens.Revoke(ctx, refreshToken); err != nil {
		l.Warn("logout_revoke_skipped", "token", "refresh", "error", err)
	}
	if err := s.Tokens.RevokeAccess(ctx, accessToken); err != nil {
		l.Warn("logout_revoke_skipped", "token", "access", "error", err)
	}
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("forgot_password_failed", "status", 404, "reason", "unknown email")
			return ErrNotFound
		}
		return err
	}

	token, err := NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.Resets.Set(ctx, token, user.Username, s.ResetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := strings.TrimRight(s.ResetURLBase, "/") + "/" + token
	body := fmt.Sprintf("Click the link to reset your password: %s", link)
	if err := s.Mailer.Send(ctx, user.Email, resetMailSubject, body); err != nil {
		l.Error("forgot_password_failed", "status", 502, "reason", "cannot send email", "error", err)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	l.Info("reset_link_sent", "user_id", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: token and new_password are required", ErrValidation)
	}

	pwHash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	username, ok := s.Resets.Take(ctx, token)
	if !ok {
		l.Warn("reset_password_failed", "status", 400, "reason", "token not found")
		return ErrInvalidOrExpiredToken
	}

	user, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	if err := s.Users.UpdatePassword(ctx, user.ID, pwHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	publish(ctx, s.Producer, TopicUserEvents, subject(user.ID), map[string]any{
		"type":    "password_reset",
		"user_id": user.ID,
	})
	l.Info("password_reset", "user_id", user.ID)
	return nil
}

func hashPassword(password string) (string, error) {
	h, err := hash.HashPassword(password)
	switch {
	case errors.Is(err, hash.ErrPasswordTooLong):
		return "", fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
	case errors.Is(err, hash.ErrEmptyPassword):
		return "", fmt.Errorf("%w: password is required", ErrValidation)
	}
	return h, err
}

func NewResetToken() (string, error) {
	max := big.NewInt(int64(len(resetTokenAlphabet)))
	b := make([]byte, resetTokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(b), nil
}
