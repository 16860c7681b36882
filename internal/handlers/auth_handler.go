package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"balagh/internal/guard"
	"balagh/internal/locale"
	"balagh/internal/validation"
)

// PasswordResetSender delivers the forgot-password email
type PasswordResetSender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail string, lang locale.Language) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	emailService         PasswordResetSender
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(emailService PasswordResetSender, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	if oauthProviders == nil {
		oauthProviders = map[string]OAuthProvider{}
	}
	return &AuthHandler{
		emailService:         emailService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// Login signs the device in and tells the client where to go next
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state := GetStateFromContext(r.Context())
	user, err := state.Login(r.Context(), req.Email, req.Password, "")
	if err != nil {
		respondWithServiceError(w, "Login failed", err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{
		User:     newUserView(user),
		Redirect: guard.AfterLogin(user, req.From),
	})
}

// Signup creates a new account on the device
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidatePasswordConfirmation(req.Password, req.ConfirmPassword); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	state := GetStateFromContext(r.Context())
	user, err := state.Signup(r.Context(), req.Name, req.Email, req.Password, req.IsParent)
	if err != nil {
		respondWithServiceError(w, "Signup failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{
		User:     newUserView(user),
		Redirect: guard.AfterSignup(user),
	})
}

// Logout signs the device out. Progress and language are kept.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	state := GetStateFromContext(r.Context())
	if err := state.Logout(r.Context()); err != nil {
		respondWithServiceError(w, "Logout failed", err)
		return
	}
	respondJSON(w, http.StatusOK, RedirectResponse{Redirect: guard.PathAuth})
}

// ForgotPassword sends the reset email. The response is the same whether or
// not the address is known.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	state := GetStateFromContext(r.Context())
	if h.emailService != nil {
		if err := h.emailService.SendPasswordResetEmail(r.Context(), email, state.Language()); err != nil {
			log.Printf("Failed to send password reset email: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"sent": true})
}
