package handlers

import (
	"net/http"

	"balagh/internal/models"
	"balagh/internal/progress"
)

// KidHandler handles the kids experience progress
type KidHandler struct{}

// NewKidHandler creates a new kid handler
func NewKidHandler() *KidHandler {
	return &KidHandler{}
}

// GetProgress returns the kids progress
func (h *KidHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	state := GetStateFromContext(r.Context())
	respondJSON(w, http.StatusOK, state.KidsProgress())
}

// UpdateProgress merges a partial progress update
func (h *KidHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var update models.ProgressUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	state := GetStateFromContext(r.Context())
	kp, err := state.UpdateKidsProgress(r.Context(), update)
	if err != nil {
		respondWithServiceError(w, "Failed to update progress", err)
		return
	}
	respondJSON(w, http.StatusOK, kp)
}

// RecordGame awards the stars of a finished game or quiz. Either stars or
// correctAnswers must be given.
func (h *KidHandler) RecordGame(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var earned int
	switch {
	case req.Stars != nil && *req.Stars >= 0:
		earned = *req.Stars
	case req.CorrectAnswers != nil && *req.CorrectAnswers >= 0:
		earned = progress.QuizStars(*req.CorrectAnswers)
	default:
		respondWithError(w, http.StatusBadRequest, "stars or correctAnswers is required", "", nil)
		return
	}

	state := GetStateFromContext(r.Context())
	kp, err := state.AwardGame(r.Context(), earned)
	if err != nil {
		respondWithServiceError(w, "Failed to record game", err)
		return
	}
	respondJSON(w, http.StatusOK, kp)
}

// AwardBadge records an earned badge
func (h *KidHandler) AwardBadge(w http.ResponseWriter, r *http.Request) {
	var req BadgeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Badge == "" {
		respondWithError(w, http.StatusBadRequest, "badge is required", "", nil)
		return
	}

	state := GetStateFromContext(r.Context())
	kp, err := state.AwardBadge(r.Context(), req.Badge)
	if err != nil {
		respondWithServiceError(w, "Failed to award badge", err)
		return
	}
	respondJSON(w, http.StatusOK, kp)
}

// EnterCategory records the category being played; an empty one clears it
func (h *KidHandler) EnterCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state := GetStateFromContext(r.Context())
	kp, err := state.EnterCategory(r.Context(), req.Category)
	if err != nil {
		respondWithServiceError(w, "Failed to enter category", err)
		return
	}
	respondJSON(w, http.StatusOK, kp)
}
