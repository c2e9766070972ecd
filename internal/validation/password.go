package validation

import (
	"errors"
	"strings"
)

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < 7 {
		return errors.New("password must be at least 7 characters")
	}

	// Maximum length: 72 bytes (bcrypt limitation)
	// bcrypt silently truncates passwords longer than 72 bytes, which is a security risk
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	if strings.Contains(strings.ToLower(password), "password") {
		return errors.New(`password cannot contain "password"`)
	}

	return nil
}
