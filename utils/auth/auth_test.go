package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-0123456789",
		Expiry:        expiry,
		RefreshExpiry: time.Hour,
		Issuer:        "el-pensum-test",
	})
}

func TestJWT_RoundTrip(t *testing.T) {
	m := newManager(time.Minute)

	token, jti, err := m.GenerateAccessToken(7, "admin@elpensum.do", "admin", 3)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)

	refresh, _, err := m.GenerateRefreshToken(7, "admin@elpensum.do", "admin", 3)
	require.NoError(t, err)
	claims, err = m.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestJWT_Expired(t *testing.T) {
	m := newManager(-time.Minute)

	token, _, err := m.GenerateAccessToken(1, "a@b.do", "admin", 0)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWT_WrongSecretOrIssuer(t *testing.T) {
	token, _, err := newManager(time.Minute).GenerateAccessToken(1, "a@b.do", "admin", 0)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "another-secret-0123456789", Expiry: time.Minute, Issuer: "el-pensum-test"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherIssuer := NewJWTManager(JWTConfig{Secret: "test-secret-0123456789", Expiry: time.Minute, Issuer: "someone-else"})
	_, err = otherIssuer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("correct-horse-1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword(hash, "correct-horse-1"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong-horse-1"), ErrPasswordMismatch)

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
