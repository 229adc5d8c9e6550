package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	jwthelp "github.com/JayaSurya08-dev/Nimbus/internal/jwt"
	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
	"github.com/JayaSurya08-dev/Nimbus/internal/models"
	"github.com/JayaSurya08-dev/Nimbus/internal/repo"
	"github.com/JayaSurya08-dev/Nimbus/internal/tokens"
)

type TokenService struct {
	Denylist      repo.DenylistRepository
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func NewTokenService(denylist repo.DenylistRepository, accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		Denylist:      denylist,
		JWTSecret:     accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Now:           time.Now,
	}
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func subject(userID uint) string { return strconv.FormatUint(uint64(userID), 10) }

func parseSubject(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("bad subject %q", sub)
	}
	return uint(id), nil
}

func (s *TokenService) Issue(user *models.User) (*TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.AccessTTL)
	access, err := tokens.NewAccessToken(subject(user.ID), jwthelp.NewJTI(), now, accessExp, s.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshExp := now.Add(s.RefreshTTL)
	refresh, err := tokens.NewRefreshToken(subject(user.ID), jwthelp.NewJTI(), now, refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Refresh mints a new access token. The refresh token itself is not rotated.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	l := logging.FromContext(ctx).With("svc", "token.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_rejected", "reason", "unparseable", "error", err)
		return "", time.Time{}, ErrInvalidToken
	}
	userID, err := parseSubject(claims.Subject)
	if err != nil {
		l.Warn("refresh_rejected", "reason", "bad subject", "error", err)
		return "", time.Time{}, ErrInvalidToken
	}

	revoked, err := s.Denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		l.Warn("refresh_rejected", "reason", "revoked", "jti", claims.ID)
		return "", time.Time{}, ErrInvalidToken
	}

	now := s.now()
	accessExp := now.Add(s.AccessTTL)
	access, err := tokens.NewAccessToken(subject(userID), jwthelp.NewJTI(), now, accessExp, s.JWTSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return access, accessExp, nil
}

// Revoke denylists a refresh token. Expired tokens are accepted as long as the signature holds.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrMissingToken
	}
	claims, err := tokens.RefreshClaimsIgnoringExpiry(refreshToken, s.RefreshSecret)
	if err != nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	return s.revoke(ctx, refreshToken, claims.Subject, claims.ID, claims.ExpiresAt.Unix())
}

// RevokeAccess denylists an access token so it stops working before it expires.
func (s *TokenService) RevokeAccess(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrMissingToken
	}
	claims, err := tokens.AccessClaimsFromToken(accessToken, s.JWTSecret)
	if err != nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	return s.revoke(ctx, accessToken, claims.Subject, claims.ID, claims.ExpiresAt.Unix())
}

func (s *TokenService) revoke(ctx context.Context, raw, sub, jti string, exp int64) error {
	userID, err := parseSubject(sub)
	if err != nil || jti == "" {
		return ErrInvalidToken
	}
	entry := &models.RevokedToken{
		JTI:       jti,
		TokenHash: jwthelp.Sha256Hex(raw),
		UserID:    userID,
		ExpiresAt: exp,
		RevokedAt: s.now().UTC(),
	}
	if err := s.Denylist.Revoke(ctx, entry); err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}
	return nil
}

func (s *TokenService) Verify(ctx context.Context, accessToken string) (uint, error) {
	if accessToken == "" {
		return 0, ErrUnauthenticated
	}
	claims, err := tokens.AccessClaimsFromToken(accessToken, s.JWTSecret)
	if err != nil {
		return 0, ErrUnauthenticated
	}
	userID, err := parseSubject(claims.Subject)
	if err != nil {
		return 0, ErrUnauthenticated
	}

	revoked, err := s.Denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return 0, fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		return 0, ErrUnauthenticated
	}
	return userID, nil
}

func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Denylist.PurgeExpired(ctx, s.now().Unix())
}

// RunJanitor purges expired denylist entries every interval until ctx is done.
func (s *TokenService) RunJanitor(ctx context.Context, interval time.Duration) {
	l := logging.FromContext(ctx).With("svc", "token.janitor")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				l.Error("purge_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("purged_revoked_tokens", "count", n)
			}
		}
	}
}
