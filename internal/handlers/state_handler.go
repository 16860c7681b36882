package handlers

import (
	"net/http"

	"balagh/internal/guard"
	"balagh/internal/locale"
	"balagh/internal/models"
	"balagh/internal/security"
)

// StateHandler serves the device state and the navigation guard
type StateHandler struct {
	csrf *security.CSRFGenerator
}

// NewStateHandler creates a new state handler
func NewStateHandler(csrf *security.CSRFGenerator) *StateHandler {
	return &StateHandler{csrf: csrf}
}

// GetState returns the whole device state along with a CSRF token
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state := GetStateFromContext(r.Context())

	resp := newStateResponse(state.Snapshot())
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		resp.SuggestedLanguage = locale.Negotiate(accept)
	}
	token, err := h.csrf.GenerateToken(GetDeviceIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate CSRF token", err)
		return
	}
	resp.CSRFToken = token

	respondJSON(w, http.StatusOK, resp)
}

// Guard answers whether the device may open a client route
func (h *StateHandler) Guard(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondWithError(w, http.StatusBadRequest, "path is required", "", nil)
		return
	}
	state := GetStateFromContext(r.Context())
	respondJSON(w, http.StatusOK, guard.Decide(state, path))
}

// SetLanguage switches the UI language
func (h *StateHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state := GetStateFromContext(r.Context())
	if err := state.SetLanguage(r.Context(), req.Language); err != nil {
		respondWithServiceError(w, "Failed to set language", err)
		return
	}

	lang := state.Language()
	respondJSON(w, http.StatusOK, LanguageResponse{Language: lang, Dir: lang.Direction()})
}

// SetExperience records the chosen experience and returns where to go next
func (h *StateHandler) SetExperience(w http.ResponseWriter, r *http.Request) {
	var req ExperienceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	exp, ok := models.ParseExperience(string(req.Experience))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid experience", "", nil)
		return
	}

	state := GetStateFromContext(r.Context())
	if err := state.SetExperience(r.Context(), exp); err != nil {
		respondWithServiceError(w, "Failed to set experience", err)
		return
	}

	respondJSON(w, http.StatusOK, RedirectResponse{Redirect: guard.EnterExperience(state, exp)})
}
