package challenge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/askeland/riskgate/internal/models"
)

// AnswerCounter reports how many security-question records a user has
// configured.
type AnswerCounter interface {
	CountForUser(ctx context.Context, username string) (int, error)
}

// Selector maps a risk tier to the strategy that guards it. The mapping is
// fixed; the only per-user variation is the high-risk fallback for users who
// never configured security questions.
type Selector struct {
	none      *NoChallenge
	otp       *EmailOTP
	questions *SecurityQuestion
	counts    AnswerCounter
	logger    *slog.Logger
}

func NewSelector(none *NoChallenge, otp *EmailOTP, questions *SecurityQuestion, counts AnswerCounter, logger *slog.Logger) *Selector {
	return &Selector{
		none:      none,
		otp:       otp,
		questions: questions,
		counts:    counts,
		logger:    logger,
	}
}

// Select picks the strategy for a risk tier. High risk requires the
// security-question challenge, but a user without a full set of configured
// answers falls back to the email code rather than being locked out. An
// unrecognized tier is rejected outright instead of defaulting to a weaker
// challenge.
func (s *Selector) Select(ctx context.Context, level models.RiskLevel, username string) (Strategy, error) {
	switch level {
	case models.RiskLevelLow:
		return s.none, nil
	case models.RiskLevelMedium:
		return s.otp, nil
	case models.RiskLevelHigh:
		count, err := s.counts.CountForUser(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to count security questions: %w", err)
		}
		if count >= models.RequiredSecurityQuestions {
			return s.questions, nil
		}
		s.logger.Debug("high risk without configured questions, falling back to email code")
		return s.otp, nil
	default:
		return nil, models.ErrMalformed
	}
}
