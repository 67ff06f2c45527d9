package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketsale/internal/auth"
)

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func TestTokenManager(t *testing.T) {
	clock := now
	manager := auth.NewTokenManager("s3cret", time.Hour).WithClock(func() time.Time { return clock })

	token, expiresAt, err := manager.Issue("DNCV-1234", "super-admin")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "DNCV-1234", claims.AdminID)
	assert.Equal(t, "super-admin", claims.Role)

	t.Run("expired", func(t *testing.T) {
		clock = now.Add(2 * time.Hour)
		defer func() { clock = now }()

		_, err := manager.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		other := auth.NewTokenManager("different", time.Hour).WithClock(func() time.Time { return now })

		_, err := other.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{AdminID: "DNCV-1234"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.Parse(unsigned)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("no secret configured", func(t *testing.T) {
		empty := auth.NewTokenManager("", 0)

		_, _, err := empty.Issue("DNCV-1234", "admin")
		assert.Error(t, err)
		_, err = empty.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
