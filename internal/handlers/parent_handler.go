package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"balagh/internal/guard"
	"balagh/internal/models"
	"balagh/internal/validation"
)

// ParentHandler handles child profiles and parent preferences
type ParentHandler struct{}

// NewParentHandler creates a new parent handler
func NewParentHandler() *ParentHandler {
	return &ParentHandler{}
}

// ListChildren returns the child profiles and the current selection
func (h *ParentHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	state := GetStateFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"childProfiles":        state.ChildProfiles(),
		"selectedChildProfile": state.SelectedChildProfile(),
	})
}

// AddChild creates a child profile from the add-child step
func (h *ParentHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	var p models.ChildProfile
	if !decodeJSON(w, r, &p) {
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := validation.ValidateChildProfile(p); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	state := GetStateFromContext(r.Context())
	created, err := state.AddChildProfile(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, "Failed to add child profile", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// RemoveChild deletes a child profile
func (h *ParentHandler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state := GetStateFromContext(r.Context())
	if err := state.RemoveChildProfile(r.Context(), id); err != nil {
		respondWithServiceError(w, "Failed to remove child profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectChild selects the child playing the kids experience. A null id
// clears the selection.
func (h *ParentHandler) SelectChild(w http.ResponseWriter, r *http.Request) {
	var req SelectChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state := GetStateFromContext(r.Context())
	var target *models.ChildProfile
	if req.ID != nil {
		target = &models.ChildProfile{ID: *req.ID}
	}
	if err := state.SetSelectedChildProfile(r.Context(), target); err != nil {
		respondWithServiceError(w, "Failed to select child profile", err)
		return
	}

	selected := state.SelectedChildProfile()
	redirect := guard.PathKids
	if selected == nil {
		redirect = guard.PathSelectExperience
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"selectedChildProfile": selected,
		"redirect":             redirect,
	})
}

// GetPreferences returns the parent preferences, or the defaults if none were saved
func (h *ParentHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	state := GetStateFromContext(r.Context())
	prefs := state.ParentPreferences()
	if prefs == nil {
		d := models.DefaultParentPreferences()
		prefs = &d
	}
	respondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences replaces the parent preferences from the parents area
func (h *ParentHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	state := GetStateFromContext(r.Context())
	prefs := models.DefaultParentPreferences()
	if current := state.ParentPreferences(); current != nil {
		prefs = *current
	}
	if !decodeJSON(w, r, &prefs) {
		return
	}

	if err := state.SetParentPreferences(r.Context(), prefs); err != nil {
		respondWithServiceError(w, "Failed to save preferences", err)
		return
	}
	respondJSON(w, http.StatusOK, state.ParentPreferences())
}
