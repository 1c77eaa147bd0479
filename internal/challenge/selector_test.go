package challenge_test

import (
	"context"
	"testing"

	"github.com/askeland/riskgate/internal/challenge"
	"github.com/askeland/riskgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAnswerCounter implements challenge.AnswerCounter for testing
type MockAnswerCounter struct {
	CountForUserFunc func(ctx context.Context, username string) (int, error)
}

func (m *MockAnswerCounter) CountForUser(ctx context.Context, username string) (int, error) {
	if m.CountForUserFunc != nil {
		return m.CountForUserFunc(ctx, username)
	}
	return 0, nil
}

func newSelector(counts challenge.AnswerCounter) *challenge.Selector {
	logger := testLogger()
	none := challenge.NewNoChallenge()
	otp := challenge.NewEmailOTP(&MockCodeStore{}, &MockCodeMailer{}, logger)
	questions := challenge.NewSecurityQuestion(&MockAnswerStore{}, logger)
	return challenge.NewSelector(none, otp, questions, counts, logger)
}

func TestSelector_Select(t *testing.T) {
	counts := &MockAnswerCounter{
		CountForUserFunc: func(ctx context.Context, username string) (int, error) {
			if username == "prepared" {
				return models.RequiredSecurityQuestions, nil
			}
			return 1, nil
		},
	}
	selector := newSelector(counts)

	tests := []struct {
		name     string
		level    models.RiskLevel
		username string
		wantType models.ChallengeType
	}{
		{"low risk passes through", models.RiskLevelLow, "alice", models.ChallengeTypeNone},
		{"medium risk gets email code", models.RiskLevelMedium, "alice", models.ChallengeTypeEmailOTP},
		{"high risk with questions", models.RiskLevelHigh, "prepared", models.ChallengeTypeSecurityQuestion},
		{"high risk without questions falls back", models.RiskLevelHigh, "alice", models.ChallengeTypeEmailOTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := selector.Select(context.Background(), tt.level, tt.username)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, strategy.Type())
		})
	}
}

func TestSelector_UnknownTierRejected(t *testing.T) {
	selector := newSelector(&MockAnswerCounter{})

	_, err := selector.Select(context.Background(), models.RiskLevel("Extreme Risk"), "alice")
	assert.ErrorIs(t, err, models.ErrMalformed)
}

func TestSelector_NoChallengeAcceptsAnything(t *testing.T) {
	selector := newSelector(&MockAnswerCounter{})

	strategy, err := selector.Select(context.Background(), models.RiskLevelLow, "alice")
	require.NoError(t, err)

	ok, err := strategy.Validate(context.Background(), challenge.Response{Username: "alice"})
	require.NoError(t, err)
	assert.True(t, ok)
}
