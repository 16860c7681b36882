package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"balagh/internal/models"
)

// MinSignupPasswordLength is the shortest password accepted on signup
const MinSignupPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateLoginPassword only requires a password to be present
func ValidateLoginPassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidateSignupPassword checks the length rule for new accounts
func ValidateSignupPassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if utf8.RuneCountInString(password) < MinSignupPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinSignupPasswordLength)}
	}
	return nil
}

// ValidatePasswordConfirmation checks that both entries match
func ValidatePasswordConfirmation(password, confirm string) error {
	if password != confirm {
		return ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	if utf8.RuneCountInString(name) > 50 {
		return ValidationError{Field: "name", Message: "name must be at most 50 characters"}
	}
	return nil
}

// ValidateChildProfile checks a profile submitted from the add-child step
func ValidateChildProfile(p models.ChildProfile) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if !p.Age.Valid() {
		return ValidationError{Field: "age", Message: "choose an age group"}
	}
	if !models.IsAvatar(p.Avatar) {
		return ValidationError{Field: "avatar", Message: "choose an avatar"}
	}
	return nil
}
