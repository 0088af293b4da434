package http

import (
	"encoding/json"
	"net/http"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SettingsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	GetTeam(w http.ResponseWriter, r *http.Request)
	UpdateTeam(w http.ResponseWriter, r *http.Request)
	RenameTeam(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	policyService policy.Service
}

func NewSettingsHandler(policyService policy.Service) SettingsHandler {
	return &settingsHandlerImpl{
		policyService: policyService,
	}
}

// Get implements SettingsHandler.
func (h *settingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.policyService.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, settings)
}

// Update implements SettingsHandler.
func (h *settingsHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req policy.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	saved, err := h.policyService.UpdateSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settings updated", saved)
}

// GetTeam implements SettingsHandler.
func (h *settingsHandlerImpl) GetTeam(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")

	tp, err := h.policyService.GetTeamPolicy(r.Context(), department)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, tp)
}

// UpdateTeam implements SettingsHandler.
func (h *settingsHandlerImpl) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req policy.TeamPolicy
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Department = chi.URLParam(r, "department")

	saved, err := h.policyService.UpdateTeamPolicy(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Team policy updated", saved)
}

type renameTeamRequest struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// RenameTeam implements SettingsHandler.
func (h *settingsHandlerImpl) RenameTeam(w http.ResponseWriter, r *http.Request) {
	var req renameTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.policyService.RenameTeam(r.Context(), req.OldName, req.NewName); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Team renamed", map[string]string{
		"old_name": req.OldName,
		"new_name": req.NewName,
	})
}
