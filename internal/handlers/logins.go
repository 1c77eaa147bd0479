package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/askeland/riskgate/internal/services"
	pkghttp "github.com/askeland/riskgate/pkg/http"
)

// LoginRecorder defines the interface for appending login events
type LoginRecorder interface {
	RecordLogin(ctx context.Context, username string, reqCtx services.RequestContext) error
}

// LoginsHandler receives login events from the authentication system and
// feeds the history the risk engine scores against.
type LoginsHandler struct {
	recorder LoginRecorder
}

// NewLoginsHandler creates a new LoginsHandler
func NewLoginsHandler(recorder LoginRecorder) *LoginsHandler {
	return &LoginsHandler{
		recorder: recorder,
	}
}

// RecordLoginRequest represents one login event. The caller forwards the
// client's IP and user agent, not its own.
type RecordLoginRequest struct {
	Username  string `json:"username" validate:"required,max=255"`
	IPAddress string `json:"ip_address" validate:"required,ip"`
	UserAgent string `json:"user_agent" validate:"required"`
}

// Record appends one login event to the user's history.
func (h *LoginsHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err := h.recorder.RecordLogin(r.Context(), req.Username, services.RequestContext{
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Login recorded.",
	})
}
