package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askeland/riskgate/internal/auth"
	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/internal/services"
	pkghttp "github.com/askeland/riskgate/pkg/http"
)

// SecurityQuestionsServiceInterface defines the interface for question management
type SecurityQuestionsServiceInterface interface {
	Setup(ctx context.Context, username string, answers []services.AnswerInput) error
	Questions(ctx context.Context, username string) ([]models.SecurityQuestion, error)
	Bank(ctx context.Context) ([]models.SecurityQuestion, error)
}

// SecurityQuestionsHandler handles security question setup and listing
type SecurityQuestionsHandler struct {
	service SecurityQuestionsServiceInterface
}

// NewSecurityQuestionsHandler creates a new SecurityQuestionsHandler
func NewSecurityQuestionsHandler(service SecurityQuestionsServiceInterface) *SecurityQuestionsHandler {
	return &SecurityQuestionsHandler{
		service: service,
	}
}

// SetupRequest represents the request body for configuring security questions
type SetupRequest struct {
	Questions []services.AnswerInput `json:"questions" validate:"required"`
}

// QuestionsResponse wraps a list of questions
type QuestionsResponse struct {
	Questions []models.SecurityQuestion `json:"questions"`
}

// Setup replaces the authenticated user's configured questions.
func (h *SecurityQuestionsHandler) Setup(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Setup(r.Context(), claims.Username, req.Questions); err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteError(w, http.StatusConflict, "CONFLICT", err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Security questions configured.",
	})
}

// List returns the authenticated user's configured question texts.
func (h *SecurityQuestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	questions, err := h.service.Questions(r.Context(), claims.Username)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, QuestionsResponse{Questions: questions})
}

// BankList returns the shared question bank. Public: the bank contains no
// per-user data.
func (h *SecurityQuestionsHandler) BankList(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Bank(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, QuestionsResponse{Questions: questions})
}
