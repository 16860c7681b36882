package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInvalidCSRFToken    = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests, please try again later"
	ErrInternalServerError = "Internal server error"
	ErrNotSignedIn         = "Please sign in first"
	ErrChildNotFound       = "Child profile not found"
	ErrUnsupportedLanguage = "Unsupported language"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20
