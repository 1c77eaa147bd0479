package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/pkg/auth"
)

// AnswerStore exposes the per-user security-question records needed to issue
// and validate the knowledge challenge.
type AnswerStore interface {
	QuestionsForUser(ctx context.Context, username string) ([]models.SecurityQuestion, error)
	GetRecord(ctx context.Context, username string, questionID int64) (*models.SecurityQuestionRecord, error)
}

// SecurityQuestion is the high-risk strategy: the user must answer one of
// the questions they configured ahead of time. Render exposes question texts
// only, never anything about the stored answers.
type SecurityQuestion struct {
	answers AnswerStore
	logger  *slog.Logger
}

func NewSecurityQuestion(answers AnswerStore, logger *slog.Logger) *SecurityQuestion {
	return &SecurityQuestion{
		answers: answers,
		logger:  logger,
	}
}

func (s *SecurityQuestion) Type() models.ChallengeType {
	return models.ChallengeTypeSecurityQuestion
}

func (s *SecurityQuestion) Render(ctx context.Context, req Request) (*models.ChallengePayload, error) {
	questions, err := s.answers.QuestionsForUser(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to load security questions: %w", err)
	}

	return &models.ChallengePayload{
		Type:      models.ChallengeTypeSecurityQuestion,
		Message:   messageSecurityQuestion,
		Username:  req.Username,
		Questions: questions,
	}, nil
}

// Validate compares the normalized answer against the stored salted hash for
// the named question. Missing question id, empty answer or no matching
// record all fail closed.
func (s *SecurityQuestion) Validate(ctx context.Context, resp Response) (bool, error) {
	answer := NormalizeAnswer(resp.Answer)
	if resp.QuestionID == 0 || answer == "" {
		return false, nil
	}

	record, err := s.answers.GetRecord(ctx, resp.Username, resp.QuestionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load security question record: %w", err)
	}

	if err := auth.CompareSecurityAnswer(record.AnswerHash, record.Salt, answer); err != nil {
		return false, nil
	}
	return true, nil
}
