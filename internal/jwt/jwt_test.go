package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateCookie_Flags(t *testing.T) {
	c := CreateCookie(AccessCookie, "v", "/", 5*time.Minute)

	assert.Equal(t, "access_token", c.Name)
	assert.Equal(t, 300, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestDeleteCookie_Expires(t *testing.T) {
	c := DeleteCookie(RefreshCookie, "/")

	assert.Equal(t, -1, c.MaxAge)
	assert.Empty(t, c.Value)
	assert.True(t, c.Expires.Before(time.Now()))
}

func TestSha256Hex_Stable(t *testing.T) {
	assert.Equal(t, Sha256Hex("abc"), Sha256Hex("abc"))
	assert.Len(t, Sha256Hex("abc"), 64)
	assert.NotEqual(t, NewJTI(), NewJTI())
}
