package handlers

import (
	"context"

	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/internal/services"
)

// MockRecoveryService implements RecoveryServiceInterface for testing
type MockRecoveryService struct {
	StartRecoveryFunc     func(ctx context.Context, identifier string, reqCtx services.RequestContext) (*models.ChallengePayload, error)
	ValidateChallengeFunc func(ctx context.Context, username string, level models.RiskLevel, answer string, questionID int64) (*services.ValidationResult, error)
	UpdatePasswordFunc    func(ctx context.Context, username, urlToken, newPassword string) error
}

func (m *MockRecoveryService) StartRecovery(ctx context.Context, identifier string, reqCtx services.RequestContext) (*models.ChallengePayload, error) {
	if m.StartRecoveryFunc != nil {
		return m.StartRecoveryFunc(ctx, identifier, reqCtx)
	}
	return &models.ChallengePayload{Type: models.ChallengeTypeNone}, nil
}

func (m *MockRecoveryService) ValidateChallenge(ctx context.Context, username string, level models.RiskLevel, answer string, questionID int64) (*services.ValidationResult, error) {
	if m.ValidateChallengeFunc != nil {
		return m.ValidateChallengeFunc(ctx, username, level, answer, questionID)
	}
	return &services.ValidationResult{Verified: false}, nil
}

func (m *MockRecoveryService) UpdatePassword(ctx context.Context, username, urlToken, newPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, username, urlToken, newPassword)
	}
	return nil
}

// MockSecurityQuestionsService implements SecurityQuestionsServiceInterface for testing
type MockSecurityQuestionsService struct {
	SetupFunc     func(ctx context.Context, username string, answers []services.AnswerInput) error
	QuestionsFunc func(ctx context.Context, username string) ([]models.SecurityQuestion, error)
	BankFunc      func(ctx context.Context) ([]models.SecurityQuestion, error)
}

func (m *MockSecurityQuestionsService) Setup(ctx context.Context, username string, answers []services.AnswerInput) error {
	if m.SetupFunc != nil {
		return m.SetupFunc(ctx, username, answers)
	}
	return nil
}

func (m *MockSecurityQuestionsService) Questions(ctx context.Context, username string) ([]models.SecurityQuestion, error) {
	if m.QuestionsFunc != nil {
		return m.QuestionsFunc(ctx, username)
	}
	return []models.SecurityQuestion{}, nil
}

func (m *MockSecurityQuestionsService) Bank(ctx context.Context) ([]models.SecurityQuestion, error) {
	if m.BankFunc != nil {
		return m.BankFunc(ctx)
	}
	return []models.SecurityQuestion{}, nil
}

// MockLoginRecorder implements LoginRecorder for testing
type MockLoginRecorder struct {
	RecordLoginFunc func(ctx context.Context, username string, reqCtx services.RequestContext) error
}

func (m *MockLoginRecorder) RecordLogin(ctx context.Context, username string, reqCtx services.RequestContext) error {
	if m.RecordLoginFunc != nil {
		return m.RecordLoginFunc(ctx, username, reqCtx)
	}
	return nil
}
