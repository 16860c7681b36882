package handlers

import (
	"net/http"

	"balagh/internal/guard"
	"balagh/internal/models"
)

// SetupHandler handles the first-run setup steps
type SetupHandler struct{}

// NewSetupHandler creates a new setup handler
func NewSetupHandler() *SetupHandler {
	return &SetupHandler{}
}

// ConfirmLanguage stores the language chosen on the first setup step
func (h *SetupHandler) ConfirmLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state := GetStateFromContext(r.Context())
	if err := state.ConfirmLanguage(r.Context(), req.Language); err != nil {
		respondWithServiceError(w, "Failed to confirm language", err)
		return
	}
	respondJSON(w, http.StatusOK, RedirectResponse{Redirect: guard.PathSetupAccountType})
}

// SelectAccountType sets the role from the chosen account type
func (h *SetupHandler) SelectAccountType(w http.ResponseWriter, r *http.Request) {
	var req AccountTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state := GetStateFromContext(r.Context())
	user, err := state.SelectAccountType(r.Context(), req.UserType)
	if err != nil {
		respondWithServiceError(w, "Failed to set account type", err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{User: newUserView(user), Redirect: guard.AfterAccountType(user)})
}

// SavePreferences stores the parent preferences chosen during setup. Missing
// fields take their defaults.
func (h *SetupHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	prefs := models.DefaultParentPreferences()
	if !decodeJSON(w, r, &prefs) {
		return
	}

	state := GetStateFromContext(r.Context())
	if err := state.SetParentPreferences(r.Context(), prefs); err != nil {
		respondWithServiceError(w, "Failed to save preferences", err)
		return
	}
	respondJSON(w, http.StatusOK, RedirectResponse{Redirect: "/auth/setup/confirmation"})
}

// Complete ends the first-run flow
func (h *SetupHandler) Complete(w http.ResponseWriter, r *http.Request) {
	state := GetStateFromContext(r.Context())
	user, err := state.CompleteSetup(r.Context())
	if err != nil {
		respondWithServiceError(w, "Failed to complete setup", err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{User: newUserView(user), Redirect: guard.PathSelectExperience})
}
