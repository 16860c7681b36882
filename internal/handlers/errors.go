package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"balagh/internal/service"
	"balagh/internal/validation"
)

type errorResponse struct {
	Error    string `json:"error"`
	Field    string `json:"field,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithRedirect tells the client to navigate elsewhere
func respondWithRedirect(w http.ResponseWriter, status int, userMsg, redirect string) {
	respondJSON(w, status, errorResponse{Error: userMsg, Redirect: redirect})
}

// respondWithServiceError maps errors returned by AppState to responses
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, service.ErrNotAuthenticated):
		respondWithRedirect(w, http.StatusUnauthorized, ErrNotSignedIn, "/auth")
	case errors.Is(err, service.ErrChildProfileNotFound):
		respondWithError(w, http.StatusNotFound, ErrChildNotFound, "", nil)
	case errors.Is(err, service.ErrDuplicateChildProfile):
		respondWithError(w, http.StatusConflict, "Child profile already exists", "", nil)
	case errors.Is(err, service.ErrUnsupportedLanguage):
		respondWithError(w, http.StatusBadRequest, ErrUnsupportedLanguage, "", nil)
	case errors.Is(err, service.ErrInvalidAccountType):
		respondWithError(w, http.StatusBadRequest, "Invalid account type", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeJSON reads a single JSON object from the request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return false
	}
	return true
}
