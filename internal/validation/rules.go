// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	timeOfDay     = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// ValidatePassword checks if a password meets the minimum requirements
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}

	// Prevent unreasonable inputs
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}

// ValidateOverallRating checks the 1-5 range and rounds to one decimal place.
func ValidateOverallRating(value float64) (float64, error) {
	if value < 1 || value > 5 {
		return 0, fmt.Errorf("overall rating must be between 1 and 5")
	}
	rounded := float64(int(value*10+0.5)) / 10
	return rounded, nil
}

// ValidateCrowdLevel checks the optional 1-5 crowd level.
func ValidateCrowdLevel(level *int) error {
	if level == nil {
		return nil
	}
	if *level < 1 || *level > 5 {
		return fmt.Errorf("crowd level must be between 1 and 5")
	}
	return nil
}

// ValidateTimeOfDay checks an optional HH:MM 24-hour clock value.
func ValidateTimeOfDay(value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if !timeOfDay.MatchString(*value) {
		return fmt.Errorf("time must be in HH:MM format")
	}
	return nil
}
