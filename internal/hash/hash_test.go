package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", h)

	assert.True(t, CheckPassword(h, "pw1"))
	assert.False(t, CheckPassword(h, "pw2"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = HashPassword(strings.Repeat("a", 72))
	require.NoError(t, err)
}

func TestCheckPassword_EmptyHashNeverMatches(t *testing.T) {
	assert.False(t, CheckPassword("", ""))
	assert.False(t, CheckPassword("", "anything"))
}
