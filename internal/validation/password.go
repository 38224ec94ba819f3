package validation

import (
	"errors"
	"strings"
)

const (
	MinPasswordLength = 8
	// bcrypt silently truncates anything longer
	MaxPasswordLength = 72
)

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true,
	"12345678": true, "123456789": true, "1234567890": true,
	"qwertyui": true, "qwerty123": true, "11111111": true,
	"iloveyou": true, "letmein1": true, "sunshine": true,
	"abc12345": true, "baseball": true, "football": true,
}

// ValidatePassword checks length and rejects the most common passwords
// outright. Substrings are not checked.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > MaxPasswordLength {
		return errors.New("password must not exceed 72 characters")
	}

	if commonPasswords[strings.ToLower(password)] {
		return errors.New("password is too common, please choose a stronger one")
	}

	return nil
}
