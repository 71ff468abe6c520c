package utils

import (
	"testing"
	"time"

	"elearning/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := models.User{Model: models.Model{ID: 7}, Role: models.RoleAdmin}

	token, issued, err := tm.GenerateJWT(user)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := tm.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	user := models.User{Model: models.Model{ID: 1}, Role: models.RoleUser}

	other := NewTokenManager("other", time.Hour)
	token, _, err := other.GenerateJWT(user)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", time.Hour).ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = expired.GenerateJWT(user)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", time.Hour).ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("secret", time.Hour).ParseJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
