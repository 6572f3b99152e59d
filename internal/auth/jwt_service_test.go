package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "todohub/internal/errors"
)

func testTTL() TTL {
	return TTL{
		Access:  15 * time.Minute,
		Refresh: 7 * 24 * time.Hour,
		Email:   24 * time.Hour,
		Reset:   time.Hour,
	}
}

func TestJWTService_ValidateToken(t *testing.T) {
	svc := NewJWTService("test-secret", testTTL())

	t.Run("access token round trip", func(t *testing.T) {
		tokenID, token, err := svc.GenerateAccessToken(42, "u1@example.com", "user")
		assert.NoError(t, err)
		assert.NotEmpty(t, tokenID)

		claims, err := svc.ValidateToken(token, ScopeAccess)
		assert.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "u1@example.com", claims.Email)
		assert.Equal(t, "user", claims.Role)
		assert.Equal(t, tokenID, claims.ID)
	})

	t.Run("refresh token round trip", func(t *testing.T) {
		tokenID, token, err := svc.GenerateRefreshToken(42, "u1@example.com")
		assert.NoError(t, err)

		claims, err := svc.ValidateToken(token, ScopeRefresh)
		assert.NoError(t, err)
		assert.Equal(t, tokenID, claims.ID)
	})

	t.Run("access token rejected as refresh", func(t *testing.T) {
		_, token, err := svc.GenerateAccessToken(42, "u1@example.com", "user")
		assert.NoError(t, err)

		_, err = svc.ValidateToken(token, ScopeRefresh)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("refresh token rejected as access", func(t *testing.T) {
		_, token, err := svc.GenerateRefreshToken(42, "u1@example.com")
		assert.NoError(t, err)

		_, err = svc.ValidateToken(token, ScopeAccess)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredSvc := NewJWTService("test-secret", TTL{
			Access:  -time.Minute,
			Refresh: -time.Minute,
			Email:   -time.Minute,
			Reset:   -time.Minute,
		})
		_, token, err := expiredSvc.GenerateAccessToken(42, "u1@example.com", "user")
		assert.NoError(t, err)

		_, err = expiredSvc.ValidateToken(token, ScopeAccess)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, token, err := svc.GenerateAccessToken(42, "u1@example.com", "user")
		assert.NoError(t, err)

		other := NewJWTService("other-secret", testTTL())
		_, err = other.ValidateToken(token, ScopeAccess)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt", ScopeAccess)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func TestJWTService_EmailTokens(t *testing.T) {
	svc := NewJWTService("test-secret", testTTL())

	t.Run("verification token", func(t *testing.T) {
		token, err := svc.GenerateEmailToken(7, "u1@example.com", ScopeEmailVerification)
		assert.NoError(t, err)

		claims, err := svc.ValidateToken(token, ScopeEmailVerification)
		assert.NoError(t, err)
		assert.Equal(t, "u1@example.com", claims.Email)
	})

	t.Run("reset token not accepted for verification", func(t *testing.T) {
		token, err := svc.GenerateEmailToken(7, "u1@example.com", ScopePasswordReset)
		assert.NoError(t, err)

		_, err = svc.ValidateToken(token, ScopeEmailVerification)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}
