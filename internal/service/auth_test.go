package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "blank username", username: "   ", password: "secret"},
		{name: "empty password", username: "user", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.username, "", tt.password)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "pw1", user.PasswordHash)

	res, err := env.auth.Login(ctx, "alice@x", "pw1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
}

func TestAuthService_Register_ConflictRegardlessOfOtherFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, "alice", "different@x", "other")
	require.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login_FailuresLookTheSame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)

	_, errWrongPw := env.auth.Login(ctx, "alice@x", "wrong")
	_, errNoUser := env.auth.Login(ctx, "nobody@x", "pw1")

	require.ErrorIs(t, errWrongPw, ErrUnauthenticated)
	require.ErrorIs(t, errNoUser, ErrUnauthenticated)
	assert.Equal(t, errWrongPw.Error(), errNoUser.Error())

	_, err = env.auth.Login(ctx, "", "pw1")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_GoogleLogin_CreatesThenReuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.GoogleLogin(ctx, "good-credential")
	require.NoError(t, err)
	assert.Equal(t, "grace@x", res.User.Username)
	assert.Equal(t, "grace@x", res.User.Email)
	assert.Equal(t, "Grace", res.User.FirstName)
	assert.Equal(t, "Brewster Hopper", res.User.LastName)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	again, err := env.auth.GoogleLogin(ctx, "good-credential")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)

	// google accounts have no usable password
	_, err = env.auth.Login(ctx, "grace@x", "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = env.auth.Login(ctx, "grace@x", "anything")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_GoogleLogin_LinksExistingEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	existing, err := env.auth.Register(ctx, "gracie", "grace@x", "pw")
	require.NoError(t, err)

	res, err := env.auth.GoogleLogin(ctx, "good-credential")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.User.ID)
	assert.Equal(t, "gracie", res.User.Username)
}

func TestAuthService_GoogleLogin_UsernameTakenByOtherEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other, err := env.auth.Register(ctx, "grace@x", "mallory@x", "pw")
	require.NoError(t, err)

	res, err := env.auth.GoogleLogin(ctx, "good-credential")
	require.ErrorIs(t, err, ErrConflict)
	assert.Nil(t, res)

	// the existing account is left untouched and still logs in with its own email
	login, err := env.auth.Login(ctx, "mallory@x", "pw")
	require.NoError(t, err)
	assert.Equal(t, other.ID, login.User.ID)
}

func TestAuthService_Login_SharedEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, err := env.auth.Register(ctx, "alice", "shared@x", "pw1")
	require.NoError(t, err)
	bob, err := env.auth.Register(ctx, "bob", "shared@x", "pw2")
	require.NoError(t, err)

	res, err := env.auth.Login(ctx, "shared@x", "pw1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, res.User.ID)

	res, err = env.auth.Login(ctx, "shared@x", "pw2")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, res.User.ID)

	_, err = env.auth.Login(ctx, "shared@x", "pw3")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_PasswordTooLong(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	long := strings.Repeat("p", 73)

	_, err := env.auth.Register(ctx, "alice", "alice@x", long)
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)
	require.NoError(t, env.auth.Resets.Set(ctx, "tok", "alice", time.Minute))

	err = env.auth.ResetPassword(ctx, "tok", long)
	require.ErrorIs(t, err, ErrValidation)

	// the token survives a rejected password
	require.NoError(t, env.auth.ResetPassword(ctx, "tok", "pw2"))
	_, err = env.auth.Login(ctx, "alice@x", "pw2")
	require.NoError(t, err)
}

func TestAuthService_GoogleLogin_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.GoogleLogin(ctx, "forged")
	require.ErrorIs(t, err, ErrInvalidCredential)

	env.auth.Google = &fakeGoogle{identity: &GoogleIdentity{Name: "No Email"}}
	_, err = env.auth.GoogleLogin(ctx, "good-credential")
	require.ErrorIs(t, err, ErrInvalidCredential)

	env.auth.Google = nil
	_, err = env.auth.GoogleLogin(ctx, "good-credential")
	require.ErrorIs(t, err, ErrInvalidCredential)

	_, err = env.auth.GoogleLogin(ctx, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full, first, last string
	}{
		{"", "", ""},
		{"   ", "", ""},
		{"Cher", "Cher", ""},
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"  Grace   Brewster\tHopper ", "Grace", "Brewster Hopper"},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.full)
		assert.Equal(t, tt.first, first, tt.full)
		assert.Equal(t, tt.last, last, tt.full)
	}
}

func TestAuthService_Logout_IsBestEffort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.auth.Logout(ctx, "", "")
	env.auth.Logout(ctx, "garbage", "garbage")

	_, err := env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)
	res, err := env.auth.Login(ctx, "alice@x", "pw1")
	require.NoError(t, err)

	env.auth.Logout(ctx, res.Tokens.RefreshToken, res.Tokens.AccessToken)

	_, _, err = env.tokens.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = env.tokens.Verify(ctx, res.Tokens.AccessToken)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func resetTokenFromMail(t *testing.T, m *fakeMailer) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	body := m.sent[len(m.sent)-1].Body
	idx := strings.Index(body, "/reset-password/")
	require.GreaterOrEqual(t, idx, 0, body)
	return body[idx+len("/reset-password/"):]
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)

	require.NoError(t, env.auth.ForgotPassword(ctx, "alice@x"))
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "alice@x", env.mailer.sent[0].To)
	assert.Equal(t, "Password Reset Request", env.mailer.sent[0].Subject)
	assert.Contains(t, env.mailer.sent[0].Body, "http://localhost:5173/reset-password/")

	token := resetTokenFromMail(t, env.mailer)
	assert.Len(t, token, 32)

	username, ok := env.resets.Get(ctx, token)
	require.True(t, ok)
	assert.Equal(t, "alice", username)

	require.NoError(t, env.auth.ResetPassword(ctx, token, "newpw"))

	_, err = env.auth.Login(ctx, "alice@x", "pw1")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = env.auth.Login(ctx, "alice@x", "newpw")
	require.NoError(t, err)

	err = env.auth.ResetPassword(ctx, token, "third")
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestAuthService_ResetPassword_ExpiredMatchesUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)

	env.auth.ResetTokenTTL = 20 * time.Millisecond
	require.NoError(t, env.auth.ForgotPassword(ctx, "alice@x"))
	token := resetTokenFromMail(t, env.mailer)
	time.Sleep(60 * time.Millisecond)

	errExpired := env.auth.ResetPassword(ctx, token, "newpw")
	errUnknown := env.auth.ResetPassword(ctx, "definitely-not-a-token", "newpw")
	require.ErrorIs(t, errExpired, ErrInvalidOrExpiredToken)
	require.ErrorIs(t, errUnknown, ErrInvalidOrExpiredToken)
	assert.Equal(t, errUnknown.Error(), errExpired.Error())

	require.ErrorIs(t, env.auth.ResetPassword(ctx, "", "x"), ErrValidation)
	require.ErrorIs(t, env.auth.ResetPassword(ctx, "x", ""), ErrValidation)
}

func TestAuthService_ForgotPassword_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.ErrorIs(t, env.auth.ForgotPassword(ctx, ""), ErrValidation)
	require.ErrorIs(t, env.auth.ForgotPassword(ctx, "ghost@x"), ErrNotFound)

	_, err := env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)

	env.mailer.err = errors.New("smtp: connection refused")
	err = env.auth.ForgotPassword(ctx, "alice@x")
	require.ErrorIs(t, err, ErrDelivery)
}

func TestNewResetToken(t *testing.T) {
	a, err := NewResetToken()
	require.NoError(t, err)
	b, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.Contains(t, resetTokenAlphabet, string(r))
	}
}

func TestAuthService_Profile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.auth.Register(ctx, "alice", "alice@x", "pw1")
	require.NoError(t, err)

	got, err := env.auth.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x", got.Email)

	_, err = env.auth.Profile(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}
