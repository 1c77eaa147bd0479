package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/askeland/riskgate/internal/challenge"
	"github.com/askeland/riskgate/internal/device"
	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/pkg/auth"
	pkglogger "github.com/askeland/riskgate/pkg/logger"
)

// UserRepository defines the interface for user lookups and updates
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// LoginHistoryRepository defines the interface for login history access
type LoginHistoryRepository interface {
	Append(ctx context.Context, record *models.LoginRecord) error
	GetRecent(ctx context.Context, username string, limit int) ([]models.LoginRecord, error)
}

// RiskAssessor scores one recovery attempt against a login history.
type RiskAssessor interface {
	Assess(history []models.LoginRecord, attempt models.RecoveryAttempt) models.RiskAssessment
}

// ChallengeSelector maps a risk tier to its challenge strategy.
type ChallengeSelector interface {
	Select(ctx context.Context, level models.RiskLevel, username string) (challenge.Strategy, error)
}

// TokenService issues and verifies single-use reset tokens.
type TokenService interface {
	Issue(ctx context.Context, username string) (string, error)
	Verify(ctx context.Context, username, urlToken string) error
	Revoke(ctx context.Context, username string) error
}

// GeoResolver maps an IP address to a country name, empty when unknown.
type GeoResolver interface {
	CountryForIP(ctx context.Context, ip string) string
}

// RequestContext is the per-request client fingerprint the risk engine
// scores against.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

// ValidationResult is the outcome of a challenge validation attempt.
type ValidationResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// RecoveryService orchestrates the recovery flow: identity resolution, risk
// assessment, challenge selection and the reset token lifecycle.
type RecoveryService struct {
	users        UserRepository
	history      LoginHistoryRepository
	engine       RiskAssessor
	selector     ChallengeSelector
	tokens       TokenService
	mailer       EmailService
	geo          GeoResolver
	historyLimit int
	resetURLBase string
	logger       *slog.Logger
}

func NewRecoveryService(
	users UserRepository,
	history LoginHistoryRepository,
	engine RiskAssessor,
	selector ChallengeSelector,
	tokens TokenService,
	mailer EmailService,
	geo GeoResolver,
	historyLimit int,
	resetURLBase string,
	logger *slog.Logger,
) *RecoveryService {
	return &RecoveryService{
		users:        users,
		history:      history,
		engine:       engine,
		selector:     selector,
		tokens:       tokens,
		mailer:       mailer,
		geo:          geo,
		historyLimit: historyLimit,
		resetURLBase: resetURLBase,
		logger:       logger,
	}
}

// StartRecovery resolves the identifier, scores the attempt and returns the
// challenge the client must pass. An unknown identifier gets a synthesized
// guest identity and a decoy payload, so the response shape and timing never
// reveal whether the account exists.
func (s *RecoveryService) StartRecovery(ctx context.Context, identifier string, reqCtx RequestContext) (*models.ChallengePayload, error) {
	user, guest, err := s.resolveIdentity(ctx, identifier)
	if err != nil {
		return nil, err
	}

	attempt := s.buildAttempt(ctx, user.Username, reqCtx)

	// A history read failure is scored like an empty history: the attempt
	// lands in the highest tier instead of erroring out.
	history, err := s.history.GetRecent(ctx, user.Username, s.historyLimit)
	if err != nil {
		s.logger.Error("failed to load login history", slog.Any("error", err))
		history = nil
	}

	assessment := s.engine.Assess(history, attempt)
	s.logger.Info("recovery attempt assessed",
		slog.Float64("score", assessment.Score),
		slog.String("level", assessment.Level.String()))

	strategy, err := s.selector.Select(ctx, assessment.Level, user.Username)
	if err != nil {
		return nil, err
	}

	if guest {
		payload := challenge.DecoyPayload(strategy.Type(), user.Username)
		payload.RiskLevel = assessment.Level
		return payload, nil
	}

	payload, err := strategy.Render(ctx, challenge.Request{
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return nil, err
	}
	payload.RiskLevel = assessment.Level
	return payload, nil
}

// ValidateChallenge dispatches the submitted answer to the tier's strategy.
// On success it issues a reset token and mails the reset link. A wrong
// answer and an unknown user produce the same result, not distinct errors.
func (s *RecoveryService) ValidateChallenge(ctx context.Context, username string, level models.RiskLevel, answer string, questionID int64) (*ValidationResult, error) {
	if !level.Valid() {
		return nil, models.ErrMalformed
	}

	failed := &ValidationResult{
		Verified: false,
		Message:  "Verification failed.",
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return failed, nil
		}
		s.logger.Error("failed to load user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	strategy, err := s.selector.Select(ctx, level, username)
	if err != nil {
		return nil, err
	}

	ok, err := strategy.Validate(ctx, challenge.Response{
		Username:   username,
		Answer:     answer,
		QuestionID: questionID,
	})
	if err != nil {
		s.logger.Error("challenge validation failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !ok {
		s.logger.Info("challenge answer rejected", slog.String("level", level.String()))
		return failed, nil
	}

	urlToken, err := s.tokens.Issue(ctx, username)
	if err != nil {
		s.logger.Error("failed to issue reset token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	link := fmt.Sprintf("%s?token=%s&username=%s", s.resetURLBase, urlToken, url.QueryEscape(username))
	if err := s.mailer.SendResetLink(ctx, user.Email, link); err != nil {
		return nil, models.ErrMailDelivery
	}

	s.logger.Info("challenge passed, reset link sent",
		slog.String("email", pkglogger.SanitizedEmail(user.Email)))
	return &ValidationResult{
		Verified: true,
		Message:  "A password reset link has been sent to your email address.",
	}, nil
}

// UpdatePassword consumes a reset token and stores the new password. The
// token is revoked only after the update succeeds, so a failed write leaves
// it usable for a retry within its lifetime.
func (s *RecoveryService) UpdatePassword(ctx context.Context, username, urlToken, newPassword string) error {
	if err := s.tokens.Verify(ctx, username, urlToken); err != nil {
		return err
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, username, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to update password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.tokens.Revoke(ctx, username); err != nil {
		s.logger.Error("failed to revoke consumed reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password updated through recovery flow")
	return nil
}

// RecordLogin appends one contextual login event to the user's history.
// Called by the login hook on every successful authentication.
func (s *RecoveryService) RecordLogin(ctx context.Context, username string, reqCtx RequestContext) error {
	info := device.Parse(reqCtx.UserAgent)
	record := &models.LoginRecord{
		Username:        username,
		IPAddress:       reqCtx.IPAddress,
		Country:         s.geo.CountryForIP(ctx, reqCtx.IPAddress),
		Browser:         info.Browser,
		OperatingSystem: info.OperatingSystem,
		LoginTime:       time.Now().UTC(),
	}

	if err := s.history.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// resolveIdentity maps an identifier to a user. Identifiers containing "@"
// are treated as email addresses. Unknown identifiers yield a synthesized
// guest identity instead of an error.
func (s *RecoveryService) resolveIdentity(ctx context.Context, identifier string) (*models.User, bool, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, false, models.ErrBadRequest
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			guest, gerr := guestIdentity()
			if gerr != nil {
				return nil, false, models.ErrInternalServer
			}
			return guest, true, nil
		}
		s.logger.Error("failed to resolve identity", slog.Any("error", err))
		return nil, false, models.ErrInternalServer
	}
	return user, false, nil
}

func (s *RecoveryService) buildAttempt(ctx context.Context, username string, reqCtx RequestContext) models.RecoveryAttempt {
	info := device.Parse(reqCtx.UserAgent)
	return models.RecoveryAttempt{
		Username:        username,
		IPAddress:       reqCtx.IPAddress,
		Country:         s.geo.CountryForIP(ctx, reqCtx.IPAddress),
		Browser:         info.Browser,
		OperatingSystem: info.OperatingSystem,
		RecoveryTime:    time.Now().UTC(),
	}
}

// guestIdentity synthesizes a placeholder user for unknown identifiers. The
// random suffix keeps repeated probes from correlating responses.
func guestIdentity() (*models.User, error) {
	suffix := make([]byte, 5)
	if _, err := rand.Read(suffix); err != nil {
		return nil, err
	}
	username := "guest_" + hex.EncodeToString(suffix)
	return &models.User{
		Username: username,
		Email:    username + "@placeholder.invalid",
	}, nil
}
