package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/handler/http/response"
)

type TokenHandler interface {
	Rotate(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
}

type tokenHandlerImpl struct {
	tokenManager policy.TokenManager
}

func NewTokenHandler(tokenManager policy.TokenManager) TokenHandler {
	return &tokenHandlerImpl{
		tokenManager: tokenManager,
	}
}

// Rotate implements TokenHandler. An empty department rotates the global code.
func (h *tokenHandlerImpl) Rotate(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")

	token, err := h.tokenManager.Rotate(r.Context(), department)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, token)
}

type validateTokenRequest struct {
	Code       string `json:"code"`
	Department string `json:"department,omitempty"`
}

// Validate implements TokenHandler. Dry-run of the check-in acceptance rule,
// used by kiosks to give feedback before the actual mark request.
func (h *tokenHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.Code == "" {
		response.BadRequest(w, "Field 'code' is required", nil)
		return
	}

	match, err := h.tokenManager.CheckAdditive(r.Context(), req.Code, req.Department, nil, time.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, match)
}
