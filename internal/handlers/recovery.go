package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/askeland/riskgate/internal/auth"
	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/internal/services"
	pkghttp "github.com/askeland/riskgate/pkg/http"
)

// RecoveryServiceInterface defines the interface for recovery business logic
type RecoveryServiceInterface interface {
	StartRecovery(ctx context.Context, identifier string, reqCtx services.RequestContext) (*models.ChallengePayload, error)
	ValidateChallenge(ctx context.Context, username string, level models.RiskLevel, answer string, questionID int64) (*services.ValidationResult, error)
	UpdatePassword(ctx context.Context, username, urlToken, newPassword string) error
}

// RecoveryHandler handles the public account-recovery endpoints
type RecoveryHandler struct {
	service  RecoveryServiceInterface
	timing   *auth.TimingDelay
	ipConfig *pkghttp.IPConfig
}

// NewRecoveryHandler creates a new RecoveryHandler
func NewRecoveryHandler(service RecoveryServiceInterface, timing *auth.TimingDelay, ipConfig *pkghttp.IPConfig) *RecoveryHandler {
	return &RecoveryHandler{
		service:  service,
		timing:   timing,
		ipConfig: ipConfig,
	}
}

// Request DTOs

// StartRecoveryRequest represents the request body for starting recovery
type StartRecoveryRequest struct {
	Identifier string `json:"identifier" validate:"required,min=1,max=255"`
}

// ValidateChallengeRequest represents the request body for answering a challenge
type ValidateChallengeRequest struct {
	Username   string `json:"username" validate:"required,max=255"`
	RiskLevel  string `json:"risk_level" validate:"required"`
	Answer     string `json:"answer"`
	QuestionID int64  `json:"question_id"`
}

// UpdatePasswordRequest represents the request body for the final password reset
type UpdatePasswordRequest struct {
	Username    string `json:"username" validate:"required,max=255"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Start begins a recovery flow: risk assessment plus challenge issuance.
// Every outcome is padded to the same response time; combined with the guest
// identity synthesis this keeps unknown identifiers indistinguishable.
func (h *RecoveryHandler) Start(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req StartRecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	reqCtx := services.RequestContext{
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.Header.Get("User-Agent"),
	}

	payload, err := h.service.StartRecovery(r.Context(), strings.TrimSpace(req.Identifier), reqCtx)
	h.timing.WaitFrom(startTime, false)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrMalformed):
			pkghttp.WriteBadRequest(w, "Invalid request")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, payload)
}

// Validate checks a challenge answer. A wrong answer is a 200 with
// verified=false, not an error status, so the body shape is constant.
func (h *RecoveryHandler) Validate(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req ValidateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.ValidateChallenge(
		r.Context(),
		req.Username,
		models.RiskLevel(req.RiskLevel),
		req.Answer,
		req.QuestionID,
	)
	h.timing.WaitFrom(startTime, false)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMalformed), errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid request")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// UpdatePassword consumes a reset token and sets the new password.
func (h *RecoveryHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err := h.service.UpdatePassword(r.Context(), req.Username, req.Token, req.NewPassword)
	h.timing.WaitFrom(startTime, false)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrExpired):
			pkghttp.WriteUnauthorized(w, "Invalid or expired reset token")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully.",
	})
}
