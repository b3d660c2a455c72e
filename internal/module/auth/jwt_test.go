package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_ValidateToken(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{Secret: "test-secret", Issuer: "easystream"})

	t.Run("round trip", func(t *testing.T) {
		userID := uuid.New()
		token, err := manager.SignToken(userID, true, time.Hour)
		require.NoError(t, err)

		claims, err := manager.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.True(t, claims.IsAdmin)
		assert.Equal(t, "easystream", claims.Issuer)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager(&JWTConfig{Secret: "other-secret", Issuer: "easystream"})
		token, err := other.SignToken(uuid.New(), false, time.Hour)
		require.NoError(t, err)

		_, err = manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTManager(&JWTConfig{Secret: "test-secret", Issuer: "someone-else"})
		token, err := other.SignToken(uuid.New(), true, time.Hour)
		require.NoError(t, err)

		_, err = manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := manager.SignToken(uuid.New(), true, -time.Minute)
		require.NoError(t, err)

		_, err = manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := manager.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
