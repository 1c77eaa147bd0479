package auth_test

import (
	"testing"
	"time"

	"github.com/askeland/riskgate/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-at-least-16-chars", 15*time.Minute)

	token, err := tm.GenerateToken("alice", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-at-least-16-chars", 15*time.Minute)
	other := auth.NewTokenManager("a-different-secret-entirely!", 15*time.Minute)

	token, err := tm.GenerateToken("alice", "alice@example.com")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-at-least-16-chars", -1*time.Minute)

	token, err := tm.GenerateToken("alice", "alice@example.com")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-at-least-16-chars", 15*time.Minute)

	_, err := tm.ValidateToken("not.a.token")
	assert.Error(t, err)
}
