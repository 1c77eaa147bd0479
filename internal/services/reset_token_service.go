package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/askeland/riskgate/internal/models"
)

const resetSecretLength = 32 // bytes of entropy behind each reset link

// ResetTokenRepository defines the interface for reset token persistence
type ResetTokenRepository interface {
	Upsert(ctx context.Context, token *models.ResetToken) error
	Get(ctx context.Context, username string) (*models.ResetToken, error)
	Delete(ctx context.Context, username string) error
}

// ResetTokenService issues and verifies the single-use password reset
// tokens handed out after a passed challenge. The stored artifact binds the
// secret to the username through two chained hashes; verification requires
// the URL token, the stored secret and both hashes to agree, so a tampered
// row or a token replayed against another user both fail.
type ResetTokenService struct {
	tokens ResetTokenRepository
	logger *slog.Logger
}

func NewResetTokenService(tokens ResetTokenRepository, logger *slog.Logger) *ResetTokenService {
	return &ResetTokenService{
		tokens: tokens,
		logger: logger,
	}
}

// Issue mints a fresh token for the user and returns the URL-safe form to
// embed in the reset link. Any prior token for the user is overwritten.
func (s *ResetTokenService) Issue(ctx context.Context, username string) (string, error) {
	secret := make([]byte, resetSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate reset secret: %w", err)
	}

	secretHex := hex.EncodeToString(secret)
	h1, h2 := chainedHashes(secretHex, username)

	token := &models.ResetToken{
		Username:   username,
		SecretHex:  secretHex,
		HashSHA256: h1,
		HashSHA512: h2,
		IssuedAt:   time.Now().UTC(),
	}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(secret), nil
}

// Verify checks a URL token against the user's stored artifact. All checks
// must pass: a live row, an exact re-encoding of the stored secret and both
// recomputed hashes. An expired row is revoked on sight.
func (s *ResetTokenService) Verify(ctx context.Context, username, urlToken string) error {
	stored, err := s.tokens.Get(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		return fmt.Errorf("failed to load reset token: %w", err)
	}

	if stored.IsExpired() {
		if err := s.Revoke(ctx, username); err != nil {
			s.logger.Error("failed to revoke expired reset token", slog.Any("error", err))
		}
		return models.ErrExpired
	}

	secret, err := hex.DecodeString(stored.SecretHex)
	if err != nil {
		s.logger.Error("stored reset secret is not valid hex")
		return models.ErrUnauthorized
	}

	expected := base64.RawURLEncoding.EncodeToString(secret)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(urlToken)) != 1 {
		return models.ErrUnauthorized
	}

	h1, h2 := chainedHashes(stored.SecretHex, username)
	if subtle.ConstantTimeCompare([]byte(h1), []byte(stored.HashSHA256)) != 1 ||
		subtle.ConstantTimeCompare([]byte(h2), []byte(stored.HashSHA512)) != 1 {
		return models.ErrUnauthorized
	}

	return nil
}

// Revoke discards the user's token. Called after a successful password
// update and whenever expiry is detected.
func (s *ResetTokenService) Revoke(ctx context.Context, username string) error {
	if err := s.tokens.Delete(ctx, username); err != nil {
		return fmt.Errorf("failed to revoke reset token: %w", err)
	}
	return nil
}

// chainedHashes derives the two stored verification hashes. The second hash
// folds in the first, so both must match together or not at all.
func chainedHashes(secretHex, username string) (string, string) {
	first := sha256.Sum256([]byte(secretHex + username))
	h1 := hex.EncodeToString(first[:])

	second := sha512.Sum512([]byte(secretHex + h1 + username))
	return h1, hex.EncodeToString(second[:])
}
