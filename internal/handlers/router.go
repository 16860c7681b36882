package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterDeps groups what NewRouter needs
type RouterDeps struct {
	Middleware     *Middleware
	State          *StateHandler
	Auth           *AuthHandler
	Setup          *SetupHandler
	Parent         *ParentHandler
	Kid            *KidHandler
	Startup        *StartupStatus
	MetricsHandler http.Handler
}

// NewRouter wires every endpoint. Everything under /api and /auth runs with
// the device state loaded; mutating /api requests also need the CSRF token.
func NewRouter(deps *RouterDeps) http.Handler {
	m := deps.Middleware
	r := chi.NewRouter()
	r.Use(m.Logging)

	r.Get("/healthz", Healthz)
	if deps.Startup != nil {
		r.Get("/readyz", deps.Startup.Readiness)
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// OAuth redirects come from the provider and cannot carry a CSRF header
	r.Route("/auth", func(r chi.Router) {
		r.Use(m.Device)
		r.Get("/providers", deps.Auth.Providers)
		r.With(m.RateLimit).Get("/{provider}/start", deps.Auth.StartOAuth)
		r.With(m.RateLimit).Get("/{provider}/callback", deps.Auth.OAuthCallback)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(m.Device)
		r.Use(m.CSRFProtect)

		r.Get("/state", deps.State.GetState)
		r.Get("/guard", deps.State.Guard)
		r.Put("/language", deps.State.SetLanguage)

		r.Route("/auth", func(r chi.Router) {
			r.With(m.RateLimit).Post("/login", deps.Auth.Login)
			r.With(m.RateLimit).Post("/signup", deps.Auth.Signup)
			r.With(m.RateLimit).Post("/forgot-password", deps.Auth.ForgotPassword)
			r.Post("/logout", deps.Auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.RequireAuth)

			r.Put("/experience", deps.State.SetExperience)

			r.Route("/setup", func(r chi.Router) {
				r.Put("/language", deps.Setup.ConfirmLanguage)
				r.Put("/account-type", deps.Setup.SelectAccountType)
				r.Put("/preferences", deps.Setup.SavePreferences)
				r.Post("/complete", deps.Setup.Complete)
			})

			r.Route("/children", func(r chi.Router) {
				r.Get("/", deps.Parent.ListChildren)
				r.Post("/", deps.Parent.AddChild)
				r.Put("/selected", deps.Parent.SelectChild)
				r.Delete("/{id}", deps.Parent.RemoveChild)
			})

			r.Route("/kids", func(r chi.Router) {
				r.Get("/progress", deps.Kid.GetProgress)
				r.Patch("/progress", deps.Kid.UpdateProgress)
				r.Post("/games", deps.Kid.RecordGame)
				r.Post("/badges", deps.Kid.AwardBadge)
				r.Put("/category", deps.Kid.EnterCategory)
			})

			r.Route("/parent", func(r chi.Router) {
				r.Use(m.RequireParent)
				r.Get("/preferences", deps.Parent.GetPreferences)
				r.Put("/preferences", deps.Parent.UpdatePreferences)
			})
		})
	})

	return r
}
