package challenge

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/pkg/auth"
)

// One-time codes are uniform over [100000, 999999] so they always print as
// six digits.
const (
	otpMin  = 100000
	otpSpan = 900000
)

// CodeStore persists the single live one-time-code artifact per user.
type CodeStore interface {
	Upsert(ctx context.Context, code *models.RecoveryCode) error
	Get(ctx context.Context, username string) (*models.RecoveryCode, error)
	Delete(ctx context.Context, username string) error
}

// CodeMailer delivers a plaintext one-time code to the account's address.
type CodeMailer interface {
	SendOneTimeCode(ctx context.Context, email, code string) error
}

// EmailOTP is the medium-risk strategy: a short-lived six-digit code sent to
// the account's email address. Only the salted hash of the code is stored;
// the plaintext exists solely in the mail body.
type EmailOTP struct {
	codes  CodeStore
	mailer CodeMailer
	logger *slog.Logger
}

func NewEmailOTP(codes CodeStore, mailer CodeMailer, logger *slog.Logger) *EmailOTP {
	return &EmailOTP{
		codes:  codes,
		mailer: mailer,
		logger: logger,
	}
}

func (e *EmailOTP) Type() models.ChallengeType {
	return models.ChallengeTypeEmailOTP
}

// Render generates a fresh code, stores its salted hash and mails the
// plaintext. A re-render overwrites any earlier live code, so only the most
// recently mailed code can validate. A mail failure is an error: silently
// succeeding would strand the user with a challenge they can never answer.
func (e *EmailOTP) Render(ctx context.Context, req Request) (*models.ChallengePayload, error) {
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate one-time code: %w", err)
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code salt: %w", err)
	}

	artifact := &models.RecoveryCode{
		Username: req.Username,
		CodeHash: hashCode(code, salt),
		Salt:     salt,
		IssuedAt: time.Now().UTC(),
	}

	if err := e.codes.Upsert(ctx, artifact); err != nil {
		return nil, fmt.Errorf("failed to store one-time code: %w", err)
	}

	if err := e.mailer.SendOneTimeCode(ctx, req.Email, code); err != nil {
		e.logger.Error("failed to deliver one-time code", slog.Any("error", err))
		return nil, models.ErrMailDelivery
	}

	return &models.ChallengePayload{
		Type:     models.ChallengeTypeEmailOTP,
		Message:  messageEmailOTP,
		Username: req.Username,
	}, nil
}

// Validate checks the submitted code against the stored artifact. The
// artifact is purged after any comparison, matched or not, so every code is
// single-use and a failed guess forces a fresh issuance.
func (e *EmailOTP) Validate(ctx context.Context, resp Response) (bool, error) {
	artifact, err := e.codes.Get(ctx, resp.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load one-time code: %w", err)
	}

	if artifact.IsExpired() {
		e.purge(ctx, resp.Username)
		return false, nil
	}

	submitted := hashCode(resp.Answer, artifact.Salt)
	match := subtle.ConstantTimeCompare([]byte(submitted), []byte(artifact.CodeHash)) == 1

	e.purge(ctx, resp.Username)
	return match, nil
}

func (e *EmailOTP) purge(ctx context.Context, username string) {
	if err := e.codes.Delete(ctx, username); err != nil {
		e.logger.Error("failed to purge one-time code", slog.Any("error", err))
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

func hashCode(code, salt string) string {
	sum := sha256.Sum256([]byte(code + salt))
	return hex.EncodeToString(sum[:])
}
