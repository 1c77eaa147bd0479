package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/askeland/riskgate/internal/challenge"
	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/pkg/auth"
)

// SecurityQuestionRepository defines the interface for question persistence
type SecurityQuestionRepository interface {
	Bank(ctx context.Context) ([]models.SecurityQuestion, error)
	QuestionsForUser(ctx context.Context, username string) ([]models.SecurityQuestion, error)
	CountForUser(ctx context.Context, username string) (int, error)
	ReplaceForUser(ctx context.Context, username string, records []models.SecurityQuestionRecord) error
}

// AnswerInput is one question/answer pair submitted during setup.
type AnswerInput struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
}

// SecurityQuestionsService manages a user's configured security questions.
type SecurityQuestionsService struct {
	questions SecurityQuestionRepository
	logger    *slog.Logger
}

func NewSecurityQuestionsService(questions SecurityQuestionRepository, logger *slog.Logger) *SecurityQuestionsService {
	return &SecurityQuestionsService{
		questions: questions,
		logger:    logger,
	}
}

// Setup replaces the user's configured questions with a full new set. The
// submission must contain exactly the required number of pairs, each with a
// known bank question and a non-empty answer, and no question may appear
// twice. Answers are normalized before hashing so validation later tolerates
// casing and whitespace differences.
func (s *SecurityQuestionsService) Setup(ctx context.Context, username string, answers []AnswerInput) error {
	if len(answers) != models.RequiredSecurityQuestions {
		return fmt.Errorf("%w: exactly %d questions are required", models.ErrBadRequest, models.RequiredSecurityQuestions)
	}

	bank, err := s.questions.Bank(ctx)
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}
	known := make(map[int64]bool, len(bank))
	for _, q := range bank {
		known[q.ID] = true
	}

	seen := make(map[int64]bool, len(answers))
	records := make([]models.SecurityQuestionRecord, 0, len(answers))
	for _, input := range answers {
		normalized := challenge.NormalizeAnswer(input.Answer)
		if input.QuestionID == 0 || normalized == "" {
			return fmt.Errorf("%w: every question needs an id and an answer", models.ErrBadRequest)
		}
		if !known[input.QuestionID] {
			return fmt.Errorf("%w: unknown question", models.ErrBadRequest)
		}
		if seen[input.QuestionID] {
			return fmt.Errorf("%w: the same question cannot be answered twice", models.ErrConflict)
		}
		seen[input.QuestionID] = true

		salt, err := auth.NewSalt()
		if err != nil {
			return fmt.Errorf("failed to generate answer salt: %w", err)
		}
		hash, err := auth.HashSecurityAnswer(salt, normalized)
		if err != nil {
			return fmt.Errorf("failed to hash answer: %w", err)
		}

		records = append(records, models.SecurityQuestionRecord{
			Username:   username,
			QuestionID: input.QuestionID,
			AnswerHash: hash,
			Salt:       salt,
		})
	}

	if err := s.questions.ReplaceForUser(ctx, username, records); err != nil {
		return fmt.Errorf("failed to store security questions: %w", err)
	}

	s.logger.Info("security questions configured", slog.Int("count", len(records)))
	return nil
}

// Questions lists the question texts the user has configured, never answers.
func (s *SecurityQuestionsService) Questions(ctx context.Context, username string) ([]models.SecurityQuestion, error) {
	return s.questions.QuestionsForUser(ctx, username)
}

// Bank lists every question available for setup.
func (s *SecurityQuestionsService) Bank(ctx context.Context) ([]models.SecurityQuestion, error) {
	return s.questions.Bank(ctx)
}

// HasQuestions reports whether the user has a full set configured.
func (s *SecurityQuestionsService) HasQuestions(ctx context.Context, username string) (bool, error) {
	count, err := s.questions.CountForUser(ctx, username)
	if err != nil {
		return false, err
	}
	return count >= models.RequiredSecurityQuestions, nil
}
