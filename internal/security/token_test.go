package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-123"

func TestTokenManager_RoundTrip(t *testing.T) {
	mgr := NewTokenManager(testSecret)
	siteID := int64(3)

	token, err := mgr.GenerateToken(7, 1, &siteID, []string{"operator"}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, int64(1), claims.TenantID)
	require.NotNil(t, claims.SiteID)
	assert.Equal(t, int64(3), *claims.SiteID)
	assert.True(t, claims.HasRole("operator"))
	assert.False(t, claims.HasRole("manager"))
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	mgr := NewTokenManager(testSecret)

	token, err := mgr.GenerateToken(7, 1, nil, nil, -time.Minute)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager(testSecret).GenerateToken(7, 1, nil, nil, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("another-secret-key-of-sufficient-length").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	_, err := NewTokenManager(testSecret).ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
