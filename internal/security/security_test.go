package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := signer.Sign("user:abc", "a@example.com", time.Now())
		require.NoError(t, err)

		claims, err := signer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "user:abc", claims.Subject)
		assert.Equal(t, "a@example.com", claims.Email)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := signer.Sign("user:abc", "", time.Now().Add(-2*time.Hour))
		require.NoError(t, err)
		_, err = signer.Parse(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenSigner("other", time.Hour).Sign("user:abc", "", time.Now())
		require.NoError(t, err)
		_, err = signer.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := signer.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty subject", func(t *testing.T) {
		_, err := signer.Sign("", "", time.Now())
		assert.ErrorIs(t, err, ErrInvalidSubject)
	})
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, ComparePassword(hash, "correct horse"))
	assert.False(t, ComparePassword(hash, "wrong horse"))
}
