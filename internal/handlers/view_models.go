package handlers

import (
	"balagh/internal/locale"
	"balagh/internal/models"
	"balagh/internal/service"
)

// UserView is a user as the client sees it, with the derived account type
type UserView struct {
	models.User
	UserType models.UserType `json:"userType"`
}

func newUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{User: *u, UserType: u.UserType()}
}

// StateResponse is the full device state returned by GET /api/state
type StateResponse struct {
	IsAuthenticated      bool                      `json:"isAuthenticated"`
	User                 *UserView                 `json:"user"`
	Experience           models.Experience         `json:"experience,omitempty"`
	ChildProfiles        []models.ChildProfile     `json:"childProfiles"`
	SelectedChildProfile *models.ChildProfile      `json:"selectedChildProfile"`
	ParentPreferences    *models.ParentPreferences `json:"parentPreferences"`
	KidsProgress         models.KidsProgress       `json:"kidsProgress"`
	AdultsProfile        models.AdultsProfile      `json:"adultsProfile"`
	Language             locale.Language           `json:"language"`
	Dir                  locale.Direction          `json:"dir"`
	SuggestedLanguage    locale.Language           `json:"suggestedLanguage,omitempty"`
	CSRFToken            string                    `json:"csrfToken,omitempty"`
}

func newStateResponse(snap service.Snapshot) StateResponse {
	return StateResponse{
		IsAuthenticated:      snap.Authenticated,
		User:                 newUserView(snap.User),
		Experience:           snap.Experience,
		ChildProfiles:        snap.ChildProfiles,
		SelectedChildProfile: snap.SelectedChild,
		ParentPreferences:    snap.ParentPreferences,
		KidsProgress:         snap.KidsProgress,
		AdultsProfile:        snap.AdultsProfile,
		Language:             snap.Language,
		Dir:                  snap.Language.Direction(),
	}
}

// AuthResponse is returned by the sign-in endpoints
type AuthResponse struct {
	User     *UserView `json:"user"`
	Redirect string    `json:"redirect"`
}

// RedirectResponse tells the client where to navigate next
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}

// LanguageResponse is returned after the UI language changes
type LanguageResponse struct {
	Language locale.Language  `json:"language"`
	Dir      locale.Direction `json:"dir"`
}

// OAuthProviderView lists a configured sign-in provider
type OAuthProviderView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
	From       string `json:"from"`
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	IsParent        bool   `json:"isParent"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type LanguageRequest struct {
	Language string `json:"language"`
}

type ExperienceRequest struct {
	Experience models.Experience `json:"experience"`
}

type AccountTypeRequest struct {
	UserType models.UserType `json:"userType"`
}

type SelectChildRequest struct {
	ID *string `json:"id"`
}

type GameRequest struct {
	Stars          *int `json:"stars"`
	CorrectAnswers *int `json:"correctAnswers"`
}

type BadgeRequest struct {
	Badge string `json:"badge"`
}

type CategoryRequest struct {
	Category string `json:"category"`
}
