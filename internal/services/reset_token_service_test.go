package services

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/askeland/riskgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tokenStore backs MockResetTokenRepository with a map for round trips.
func tokenStore() (map[string]*models.ResetToken, *MockResetTokenRepository) {
	store := make(map[string]*models.ResetToken)
	repo := &MockResetTokenRepository{
		UpsertFunc: func(ctx context.Context, token *models.ResetToken) error {
			copied := *token
			store[token.Username] = &copied
			return nil
		},
		GetFunc: func(ctx context.Context, username string) (*models.ResetToken, error) {
			token, ok := store[username]
			if !ok {
				return nil, models.ErrNotFound
			}
			return token, nil
		},
		DeleteFunc: func(ctx context.Context, username string) error {
			delete(store, username)
			return nil
		},
	}
	return store, repo
}

func TestResetTokenService_IssueAndVerify(t *testing.T) {
	store, repo := tokenStore()
	svc := NewResetTokenService(repo, testLogger())

	urlToken, err := svc.Issue(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, urlToken)

	// The URL token is never stored verbatim.
	stored := store["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, urlToken, stored.SecretHex)
	assert.NotEmpty(t, stored.HashSHA256)
	assert.NotEmpty(t, stored.HashSHA512)

	require.NoError(t, svc.Verify(context.Background(), "alice", urlToken))
}

func TestResetTokenService_VerifyRejectsWrongUser(t *testing.T) {
	_, repo := tokenStore()
	svc := NewResetTokenService(repo, testLogger())

	aliceToken, err := svc.Issue(context.Background(), "alice")
	require.NoError(t, err)
	bobToken, err := svc.Issue(context.Background(), "bob")
	require.NoError(t, err)

	// Each token is bound to the user it was issued for.
	assert.ErrorIs(t, svc.Verify(context.Background(), "bob", aliceToken), models.ErrUnauthorized)
	assert.ErrorIs(t, svc.Verify(context.Background(), "alice", bobToken), models.ErrUnauthorized)
}

func TestResetTokenService_VerifyRejectsMutatedToken(t *testing.T) {
	_, repo := tokenStore()
	svc := NewResetTokenService(repo, testLogger())

	urlToken, err := svc.Issue(context.Background(), "alice")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(urlToken)
	require.NoError(t, err)
	raw[0] ^= 0x01
	mutated := base64.RawURLEncoding.EncodeToString(raw)

	assert.ErrorIs(t, svc.Verify(context.Background(), "alice", mutated), models.ErrUnauthorized)
}

func TestResetTokenService_VerifyRejectsTamperedRow(t *testing.T) {
	store, repo := tokenStore()
	svc := NewResetTokenService(repo, testLogger())

	urlToken, err := svc.Issue(context.Background(), "alice")
	require.NoError(t, err)

	// A row whose chained hashes no longer match its secret is dead.
	store["alice"].HashSHA512 = "tampered"
	assert.ErrorIs(t, svc.Verify(context.Background(), "alice", urlToken), models.ErrUnauthorized)
}

func TestResetTokenService_ExpiredTokenRevokedOnSight(t *testing.T) {
	store, repo := tokenStore()
	svc := NewResetTokenService(repo, testLogger())

	urlToken, err := svc.Issue(context.Background(), "alice")
	require.NoError(t, err)
	store["alice"].IssuedAt = time.Now().Add(-models.ArtifactLifetime - time.Minute)

	assert.ErrorIs(t, svc.Verify(context.Background(), "alice", urlToken), models.ErrExpired)
	assert.NotContains(t, store, "alice")
}

func TestResetTokenService_MissingTokenUnauthorized(t *testing.T) {
	_, repo := tokenStore()
	svc := NewResetTokenService(repo, testLogger())

	err := svc.Verify(context.Background(), "alice", "anything")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestResetTokenService_ReissueInvalidatesPriorToken(t *testing.T) {
	_, repo := tokenStore()
	svc := NewResetTokenService(repo, testLogger())

	first, err := svc.Issue(context.Background(), "alice")
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), "alice")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(context.Background(), "alice", first), models.ErrUnauthorized)
	assert.NoError(t, svc.Verify(context.Background(), "alice", second))
}
