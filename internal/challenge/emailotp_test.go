package challenge_test

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/askeland/riskgate/internal/challenge"
	"github.com/askeland/riskgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCodeStore implements challenge.CodeStore for testing
type MockCodeStore struct {
	UpsertFunc func(ctx context.Context, code *models.RecoveryCode) error
	GetFunc    func(ctx context.Context, username string) (*models.RecoveryCode, error)
	DeleteFunc func(ctx context.Context, username string) error
}

func (m *MockCodeStore) Upsert(ctx context.Context, code *models.RecoveryCode) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, code)
	}
	return nil
}

func (m *MockCodeStore) Get(ctx context.Context, username string) (*models.RecoveryCode, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockCodeStore) Delete(ctx context.Context, username string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, username)
	}
	return nil
}

// MockCodeMailer implements challenge.CodeMailer for testing
type MockCodeMailer struct {
	SendOneTimeCodeFunc func(ctx context.Context, email, code string) error
}

func (m *MockCodeMailer) SendOneTimeCode(ctx context.Context, email, code string) error {
	if m.SendOneTimeCodeFunc != nil {
		return m.SendOneTimeCodeFunc(ctx, email, code)
	}
	return nil
}

// memoryCodeStore backs the mock funcs with a map for round-trip tests.
type memoryCodeStore struct {
	codes map[string]*models.RecoveryCode
}

func newMemoryCodeStore() (*memoryCodeStore, *MockCodeStore) {
	mem := &memoryCodeStore{codes: make(map[string]*models.RecoveryCode)}
	return mem, &MockCodeStore{
		UpsertFunc: func(ctx context.Context, code *models.RecoveryCode) error {
			copied := *code
			mem.codes[code.Username] = &copied
			return nil
		},
		GetFunc: func(ctx context.Context, username string) (*models.RecoveryCode, error) {
			code, ok := mem.codes[username]
			if !ok {
				return nil, models.ErrNotFound
			}
			return code, nil
		},
		DeleteFunc: func(ctx context.Context, username string) error {
			delete(mem.codes, username)
			return nil
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestEmailOTP_RenderAndValidate(t *testing.T) {
	mem, store := newMemoryCodeStore()

	var mailedCode string
	mailer := &MockCodeMailer{
		SendOneTimeCodeFunc: func(ctx context.Context, email, code string) error {
			assert.Equal(t, "alice@example.com", email)
			mailedCode = code
			return nil
		},
	}

	otp := challenge.NewEmailOTP(store, mailer, testLogger())

	payload, err := otp.Render(context.Background(), challenge.Request{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeTypeEmailOTP, payload.Type)
	assert.Equal(t, "alice", payload.Username)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), mailedCode)

	// Only a salted hash is persisted, never the plaintext code.
	stored := mem.codes["alice"]
	require.NotNil(t, stored)
	assert.NotContains(t, stored.CodeHash, mailedCode)
	assert.Len(t, stored.Salt, 32)

	ok, err := otp.Validate(context.Background(), challenge.Response{
		Username: "alice",
		Answer:   mailedCode,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// Single use: replaying the same code fails because the artifact is gone.
	ok, err = otp.Validate(context.Background(), challenge.Response{
		Username: "alice",
		Answer:   mailedCode,
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmailOTP_WrongCodePurgesArtifact(t *testing.T) {
	mem, store := newMemoryCodeStore()
	var mailedCode string
	mailer := &MockCodeMailer{
		SendOneTimeCodeFunc: func(ctx context.Context, email, code string) error {
			mailedCode = code
			return nil
		},
	}

	otp := challenge.NewEmailOTP(store, mailer, testLogger())
	_, err := otp.Render(context.Background(), challenge.Request{Username: "alice", Email: "a@b.com"})
	require.NoError(t, err)

	ok, err := otp.Validate(context.Background(), challenge.Response{Username: "alice", Answer: "000000"})
	require.NoError(t, err)
	assert.False(t, ok)

	// A failed guess burns the code; even the real one no longer works.
	assert.NotContains(t, mem.codes, "alice")
	ok, err = otp.Validate(context.Background(), challenge.Response{Username: "alice", Answer: mailedCode})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmailOTP_ExpiredCodeFailsAndPurges(t *testing.T) {
	deleted := false
	store := &MockCodeStore{
		GetFunc: func(ctx context.Context, username string) (*models.RecoveryCode, error) {
			return &models.RecoveryCode{
				Username: username,
				CodeHash: "irrelevant",
				Salt:     "salt",
				IssuedAt: time.Now().Add(-models.ArtifactLifetime - time.Minute),
			}, nil
		},
		DeleteFunc: func(ctx context.Context, username string) error {
			deleted = true
			return nil
		},
	}

	otp := challenge.NewEmailOTP(store, &MockCodeMailer{}, testLogger())
	ok, err := otp.Validate(context.Background(), challenge.Response{Username: "alice", Answer: "123456"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, deleted)
}

func TestEmailOTP_NoArtifactFailsClosed(t *testing.T) {
	otp := challenge.NewEmailOTP(&MockCodeStore{}, &MockCodeMailer{}, testLogger())

	ok, err := otp.Validate(context.Background(), challenge.Response{Username: "ghost", Answer: "123456"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmailOTP_MailFailureIsAnError(t *testing.T) {
	_, store := newMemoryCodeStore()
	mailer := &MockCodeMailer{
		SendOneTimeCodeFunc: func(ctx context.Context, email, code string) error {
			return errors.New("ses unavailable")
		},
	}

	otp := challenge.NewEmailOTP(store, mailer, testLogger())
	_, err := otp.Render(context.Background(), challenge.Request{Username: "alice", Email: "a@b.com"})
	assert.ErrorIs(t, err, models.ErrMailDelivery)
}

func TestEmailOTP_RenderOverwritesPriorCode(t *testing.T) {
	mem, store := newMemoryCodeStore()
	var codes []string
	mailer := &MockCodeMailer{
		SendOneTimeCodeFunc: func(ctx context.Context, email, code string) error {
			codes = append(codes, code)
			return nil
		},
	}

	otp := challenge.NewEmailOTP(store, mailer, testLogger())
	req := challenge.Request{Username: "alice", Email: "a@b.com"}
	_, err := otp.Render(context.Background(), req)
	require.NoError(t, err)
	_, err = otp.Render(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	require.Len(t, mem.codes, 1)

	// Only the most recent code can ever validate.
	if codes[0] != codes[1] {
		ok, err := otp.Validate(context.Background(), challenge.Response{Username: "alice", Answer: codes[0]})
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
