package services

import (
	"context"

	"github.com/askeland/riskgate/internal/challenge"
	"github.com/askeland/riskgate/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByUsernameFunc  func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, username, passwordHash string) error
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, username, passwordHash)
	}
	return nil
}

// MockLoginHistoryRepository implements LoginHistoryRepository for testing
type MockLoginHistoryRepository struct {
	AppendFunc    func(ctx context.Context, record *models.LoginRecord) error
	GetRecentFunc func(ctx context.Context, username string, limit int) ([]models.LoginRecord, error)
}

func (m *MockLoginHistoryRepository) Append(ctx context.Context, record *models.LoginRecord) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, record)
	}
	return nil
}

func (m *MockLoginHistoryRepository) GetRecent(ctx context.Context, username string, limit int) ([]models.LoginRecord, error) {
	if m.GetRecentFunc != nil {
		return m.GetRecentFunc(ctx, username, limit)
	}
	return []models.LoginRecord{}, nil
}

// MockResetTokenRepository implements ResetTokenRepository for testing
type MockResetTokenRepository struct {
	UpsertFunc func(ctx context.Context, token *models.ResetToken) error
	GetFunc    func(ctx context.Context, username string) (*models.ResetToken, error)
	DeleteFunc func(ctx context.Context, username string) error
}

func (m *MockResetTokenRepository) Upsert(ctx context.Context, token *models.ResetToken) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, token)
	}
	return nil
}

func (m *MockResetTokenRepository) Get(ctx context.Context, username string) (*models.ResetToken, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockResetTokenRepository) Delete(ctx context.Context, username string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, username)
	}
	return nil
}

// MockSecurityQuestionRepository implements SecurityQuestionRepository for testing
type MockSecurityQuestionRepository struct {
	BankFunc             func(ctx context.Context) ([]models.SecurityQuestion, error)
	QuestionsForUserFunc func(ctx context.Context, username string) ([]models.SecurityQuestion, error)
	CountForUserFunc     func(ctx context.Context, username string) (int, error)
	ReplaceForUserFunc   func(ctx context.Context, username string, records []models.SecurityQuestionRecord) error
}

func (m *MockSecurityQuestionRepository) Bank(ctx context.Context) ([]models.SecurityQuestion, error) {
	if m.BankFunc != nil {
		return m.BankFunc(ctx)
	}
	return []models.SecurityQuestion{}, nil
}

func (m *MockSecurityQuestionRepository) QuestionsForUser(ctx context.Context, username string) ([]models.SecurityQuestion, error) {
	if m.QuestionsForUserFunc != nil {
		return m.QuestionsForUserFunc(ctx, username)
	}
	return []models.SecurityQuestion{}, nil
}

func (m *MockSecurityQuestionRepository) CountForUser(ctx context.Context, username string) (int, error) {
	if m.CountForUserFunc != nil {
		return m.CountForUserFunc(ctx, username)
	}
	return 0, nil
}

func (m *MockSecurityQuestionRepository) ReplaceForUser(ctx context.Context, username string, records []models.SecurityQuestionRecord) error {
	if m.ReplaceForUserFunc != nil {
		return m.ReplaceForUserFunc(ctx, username, records)
	}
	return nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendOneTimeCodeFunc func(ctx context.Context, email, code string) error
	SendResetLinkFunc   func(ctx context.Context, email, link string) error
}

func (m *MockEmailService) SendOneTimeCode(ctx context.Context, email, code string) error {
	if m.SendOneTimeCodeFunc != nil {
		return m.SendOneTimeCodeFunc(ctx, email, code)
	}
	return nil
}

func (m *MockEmailService) SendResetLink(ctx context.Context, email, link string) error {
	if m.SendResetLinkFunc != nil {
		return m.SendResetLinkFunc(ctx, email, link)
	}
	return nil
}

// MockTokenService implements TokenService for testing
type MockTokenService struct {
	IssueFunc  func(ctx context.Context, username string) (string, error)
	VerifyFunc func(ctx context.Context, username, urlToken string) error
	RevokeFunc func(ctx context.Context, username string) error
}

func (m *MockTokenService) Issue(ctx context.Context, username string) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, username)
	}
	return "mock-token", nil
}

func (m *MockTokenService) Verify(ctx context.Context, username, urlToken string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, username, urlToken)
	}
	return nil
}

func (m *MockTokenService) Revoke(ctx context.Context, username string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, username)
	}
	return nil
}

// MockGeoResolver implements GeoResolver for testing
type MockGeoResolver struct {
	CountryForIPFunc func(ctx context.Context, ip string) string
}

func (m *MockGeoResolver) CountryForIP(ctx context.Context, ip string) string {
	if m.CountryForIPFunc != nil {
		return m.CountryForIPFunc(ctx, ip)
	}
	return ""
}

// MockSelector implements ChallengeSelector for testing
type MockSelector struct {
	SelectFunc func(ctx context.Context, level models.RiskLevel, username string) (challenge.Strategy, error)
}

func (m *MockSelector) Select(ctx context.Context, level models.RiskLevel, username string) (challenge.Strategy, error) {
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, level, username)
	}
	return challenge.NewNoChallenge(), nil
}

// MockAssessor implements RiskAssessor for testing
type MockAssessor struct {
	AssessFunc func(history []models.LoginRecord, attempt models.RecoveryAttempt) models.RiskAssessment
}

func (m *MockAssessor) Assess(history []models.LoginRecord, attempt models.RecoveryAttempt) models.RiskAssessment {
	if m.AssessFunc != nil {
		return m.AssessFunc(history, attempt)
	}
	return models.RiskAssessment{Level: models.RiskLevelLow}
}
