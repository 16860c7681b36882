// Package guard decides whether a viewer may open a client route and where
// to send them instead.
package guard

import (
	"strings"

	"balagh/internal/models"
)

// Client routes the guard redirects to
const (
	PathAuth             = "/auth"
	PathLogin            = "/auth/login"
	PathSetupLanguage    = "/auth/setup/language"
	PathSetupAccountType = "/auth/setup/account-type"
	PathSetupAddChild    = "/auth/setup/add-child"
	PathSelectExperience = "/select-experience"
	PathKids             = "/kids"
	PathAdults           = "/adults"
	PathParentsArea      = "/kids/parents-area"
)

// Requirement describes what a route needs from the viewer
type Requirement int

const (
	// Public routes are open to everyone
	Public Requirement = iota
	// Guest routes are the sign-in screens; signed-in viewers are sent on
	Guest
	// Setup routes are the first-run screens under /auth/setup
	Setup
	// Authenticated routes need a signed-in viewer
	Authenticated
	// ParentOnly routes need a signed-in Parent
	ParentOnly
)

func (r Requirement) String() string {
	switch r {
	case Guest:
		return "guest"
	case Setup:
		return "setup"
	case Authenticated:
		return "authenticated"
	case ParentOnly:
		return "parent"
	default:
		return "public"
	}
}

var protectedPrefixes = []string{PathSelectExperience, PathKids, PathAdults, "/profile"}

var parentPrefixes = []string{PathParentsArea}

// Viewer is the read side of the session state the guard needs
type Viewer interface {
	IsAuthenticated() bool
	Role() models.Role
	IsFirstTime() bool
	ChildProfiles() []models.ChildProfile
}

// Decision is the outcome of a navigation check. From carries the requested
// path when the viewer is sent to sign in so they can be returned there.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirect,omitempty"`
	From       string `json:"from,omitempty"`
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// RequirementFor returns what path needs from the viewer
func RequirementFor(path string) Requirement {
	path = cleanPath(path)
	switch {
	case hasPrefix(path, parentPrefixes):
		return ParentOnly
	case hasPrefix(path, protectedPrefixes):
		return Authenticated
	case hasPrefix(path, []string{"/auth/setup"}):
		return Setup
	case hasPrefix(path, []string{PathAuth}):
		return Guest
	default:
		return Public
	}
}

// Decide checks whether v may open path. It only reads from v.
func Decide(v Viewer, path string) Decision {
	path = cleanPath(path)
	authed := v.IsAuthenticated()

	switch RequirementFor(path) {
	case Authenticated:
		if !authed {
			return Decision{RedirectTo: PathAuth, From: path}
		}
	case ParentOnly:
		if !authed {
			return Decision{RedirectTo: PathAuth, From: path}
		}
		if v.Role() != models.RoleParent {
			return Decision{RedirectTo: PathSelectExperience}
		}
	case Guest:
		if authed {
			return Decision{RedirectTo: PathSelectExperience}
		}
	case Setup:
		if authed && !v.IsFirstTime() {
			return Decision{RedirectTo: PathSelectExperience}
		}
	}
	return Decision{Allow: true}
}

// EnterExperience returns where a viewer choosing e lands. A parent entering
// kids mode without any child profile is sent to add one first.
func EnterExperience(v Viewer, e models.Experience) string {
	if !v.IsAuthenticated() {
		return PathAuth
	}
	switch e {
	case models.ExperienceKids:
		if v.Role() == models.RoleParent && len(v.ChildProfiles()) == 0 {
			return PathSetupAddChild
		}
		return PathKids
	case models.ExperienceAdults:
		return PathAdults
	default:
		return PathSelectExperience
	}
}

// AfterLogin returns where to go once u has signed in. First-time users start
// setup; returning users go back to from when it is a real destination.
func AfterLogin(u *models.User, from string) string {
	if u == nil {
		return PathAuth
	}
	if u.IsFirstTime {
		return PathSetupLanguage
	}
	if from != "" {
		from = cleanPath(from)
		if from != PathAuth && from != PathLogin && RequirementFor(from) != Guest {
			return from
		}
	}
	return PathSelectExperience
}

// AfterSignup returns where a new account continues: parents add a child
// first, everyone else confirms the language.
func AfterSignup(u *models.User) string {
	if u == nil {
		return PathAuth
	}
	if u.IsParent() {
		return PathSetupAddChild
	}
	return PathSetupLanguage
}

// AfterAccountType returns the next setup step once the account type is chosen
func AfterAccountType(u *models.User) string {
	if u != nil && u.IsParent() {
		return PathSetupAddChild
	}
	return PathSelectExperience
}
