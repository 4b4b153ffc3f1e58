package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/inkbase/inkbase/pkg/errors"
)

var (
	// Username: 3-20 alphanumeric characters and underscores
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

	// Email: basic email validation
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateUsername checks if username is valid
func (v *Validator) ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return errors.ErrInvalidUsername
	}

	if !usernameRegex.MatchString(username) {
		return errors.ErrInvalidUsername
	}

	return nil
}

// ValidateEmail checks if email format is valid
func (v *Validator) ValidateEmail(email string) error {
	if len(email) == 0 || len(email) > 255 {
		return errors.ErrInvalidEmail
	}

	if !emailRegex.MatchString(email) {
		return errors.ErrInvalidEmail
	}

	return nil
}

// ValidatePassword checks password strength
func (v *Validator) ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.ErrWeakPassword
	}

	if len(password) > 128 {
		return errors.ErrWeakPassword
	}

	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber || !hasSpecial {
		return errors.ErrWeakPassword
	}

	return nil
}

// SanitizeString removes dangerous characters and null bytes
func (v *Validator) SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}

// ValidateTitle validates a note or post title
func (v *Validator) ValidateTitle(title string) error {
	title = strings.TrimSpace(title)

	if len(title) == 0 {
		return errors.Validation("title cannot be empty")
	}

	if len(title) > 255 {
		return errors.Validation("title too long (max 255 characters)")
	}

	return nil
}

// ValidateContent validates note or post content
func (v *Validator) ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.Validation("content cannot be empty")
	}

	if len(content) > 1048576 { // 1MB max
		return errors.Validation("content too long (max 1MB)")
	}

	return nil
}

// ValidateName validates a note-type or flag name
func (v *Validator) ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 {
		return errors.Validation("name cannot be empty")
	}

	if len(name) > 100 {
		return errors.Validation("name too long (max 100 characters)")
	}

	return nil
}
