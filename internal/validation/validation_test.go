package validation

import (
	"errors"
	"testing"

	"balagh/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "John Doe", false},
		{"arabic name", "سارة", false},
		{"two letters", "Al", false},
		{"single arabic letter", "س", true},
		{"empty name", "", true},
		{"only spaces", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePasswords(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		input    string
		wantErr  bool
	}{
		{"login accepts one character", ValidateLoginPassword, "x", false},
		{"login rejects empty", ValidateLoginPassword, "", true},
		{"signup accepts six", ValidateSignupPassword, "secret", false},
		{"signup rejects five", ValidateSignupPassword, "short", true},
		{"signup rejects empty", ValidateSignupPassword, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePasswordConfirmation(t *testing.T) {
	if err := ValidatePasswordConfirmation("secret1", "secret1"); err != nil {
		t.Errorf("matching passwords error = %v", err)
	}
	err := ValidatePasswordConfirmation("secret1", "secret2")
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "confirmPassword" {
		t.Errorf("mismatch error = %v, want confirmPassword ValidationError", err)
	}
}

func TestValidateChildProfile(t *testing.T) {
	valid := models.ChildProfile{Name: "Omar", Age: models.AgeEightToTen, Avatar: models.Avatars[3]}

	tests := []struct {
		name      string
		mutate    func(p *models.ChildProfile)
		wantField string
	}{
		{"valid", func(p *models.ChildProfile) {}, ""},
		{"short name", func(p *models.ChildProfile) { p.Name = "O" }, "name"},
		{"unknown age", func(p *models.ChildProfile) { p.Age = "3-4" }, "age"},
		{"avatar outside palette", func(p *models.ChildProfile) { p.Avatar = "🦄" }, "avatar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := ValidateChildProfile(p)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateChildProfile() error = %v", err)
				}
				return
			}
			var ve ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantField {
				t.Errorf("ValidateChildProfile() error = %v, want field %s", err, tt.wantField)
			}
		})
	}
}
