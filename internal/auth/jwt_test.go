package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret")

	token, err := manager.GenerateAccessJWT("user-1", time.Minute)
	require.NoError(t, err)

	userID, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = NewJWTManager("other-secret").ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	_, err = manager.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestAccessToken_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret")

	token, err := manager.GenerateAccessJWT("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestRefreshToken_BoundToHashToken(t *testing.T) {
	manager := NewJWTManager("test-secret")

	token, err := manager.GenerateRefreshJWT("user-1", "hash-token", time.Hour)
	require.NoError(t, err)

	userID, err := manager.ExtractUserIDFromRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	assert.NoError(t, manager.ValidateRefreshToken(token, "hash-token"))
	assert.ErrorIs(t, manager.ValidateRefreshToken(token, "rotated-hash-token"), ErrInvalidJWTRefreshToken)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	manager := NewJWTManager("test-secret")

	refresh, err := manager.GenerateRefreshJWT("user-1", "hash-token", time.Hour)
	require.NoError(t, err)
	_, err = manager.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	access, err := manager.GenerateAccessJWT("user-1", time.Hour)
	require.NoError(t, err)
	_, err = manager.ExtractUserIDFromRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidJWTRefreshToken)
}
