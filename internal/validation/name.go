package validation

import (
	"errors"
	"strings"
)

// ValidateName validates the user's display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if len(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// ValidateAge rejects negative ages. Zero is the "unset" default.
func ValidateAge(age int) error {
	if age < 0 {
		return errors.New("age must be a positive number")
	}
	return nil
}
