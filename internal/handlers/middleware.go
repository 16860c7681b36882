package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"balagh/internal/guard"
	"balagh/internal/metrics"
	"balagh/internal/security"
	"balagh/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	DeviceContextKey ContextKey = "device"
	StateContextKey  ContextKey = "state"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	registry    *service.Registry
	signer      *security.DeviceSigner
	csrf        *security.CSRFGenerator
	rateLimiter *security.RateLimiter
	metrics     metrics.Recorder
	debug       bool
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(registry *service.Registry, signer *security.DeviceSigner, csrf *security.CSRFGenerator, rateLimiter *security.RateLimiter, recorder metrics.Recorder, debug bool) *Middleware {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Middleware{
		registry:    registry,
		signer:      signer,
		csrf:        csrf,
		rateLimiter: rateLimiter,
		metrics:     recorder,
		debug:       debug,
	}
}

// Device identifies the device from its signed cookie, issuing a new one on
// first visit, and puts the device's state into the request context.
func (m *Middleware) Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := ""
		if cookie, err := r.Cookie(security.DeviceCookieName); err == nil {
			id, err := m.signer.Parse(cookie.Value)
			if err != nil {
				if m.debug {
					log.Printf("[DEBUG] Discarding device cookie: %v", err)
				}
			} else {
				deviceID = id
			}
		}

		var state *service.AppState
		var err error
		if deviceID == "" {
			deviceID = security.GenerateDeviceID()
			token, issueErr := m.signer.Issue(deviceID)
			if issueErr != nil {
				respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to issue device token", issueErr)
				return
			}
			http.SetCookie(w, security.CreateDeviceCookie(r, token, time.Now().Add(security.DeviceTokenTTL)))

			// Nothing is stored for a new device; it joins the registry once it
			// comes back with its cookie
			state, err = m.registry.Transient(r.Context(), deviceID)
		} else {
			var release func()
			state, release, err = m.registry.Acquire(r.Context(), deviceID)
			if err == nil {
				defer release()
			}
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load device state", err)
			return
		}

		ctx := context.WithValue(r.Context(), DeviceContextKey, deviceID)
		ctx = context.WithValue(ctx, StateContextKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests from signed-out devices
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return m.requireRoute(guard.PathSelectExperience, next)
}

// RequireParent rejects requests unless a Parent is signed in
func (m *Middleware) RequireParent(next http.Handler) http.Handler {
	return m.requireRoute(guard.PathParentsArea, next)
}

// requireRoute applies the navigation guard of a client route to an API route
func (m *Middleware) requireRoute(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := GetStateFromContext(r.Context())
		if state == nil {
			respondWithRedirect(w, http.StatusUnauthorized, ErrUnauthorized, guard.PathAuth)
			return
		}

		d := guard.Decide(state, path)
		if !d.Allow {
			status := http.StatusForbidden
			msg := ErrForbidden
			if !state.IsAuthenticated() {
				status = http.StatusUnauthorized
				msg = ErrUnauthorized
			}
			respondWithRedirect(w, status, msg, d.RedirectTo)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CSRFProtect requires a valid CSRF token on state-changing requests
func (m *Middleware) CSRFProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		deviceID := GetDeviceIDFromContext(r.Context())
		if !m.csrf.ValidateToken(deviceID, r.Header.Get(security.CSRFHeader)) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRFToken, "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			log.Printf("Rate limit exceeded for %s on %s", ip, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs HTTP requests and counts response codes
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.metrics.RecordHTTPStatus(rec.status)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// GetStateFromContext retrieves the device state from the request context
func GetStateFromContext(ctx context.Context) *service.AppState {
	state, ok := ctx.Value(StateContextKey).(*service.AppState)
	if !ok {
		return nil
	}
	return state
}

// GetDeviceIDFromContext retrieves the device id from the request context
func GetDeviceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(DeviceContextKey).(string)
	return id
}
