// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// MaxTweetLength bounds tweet content length in characters.
const MaxTweetLength = 2800

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username must be 3-50 characters long and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks if an email address is plausibly well-formed
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must be less than 128 characters")
	}

	var hasDigit, hasLower, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}
	if !hasDigit || !hasLower || !hasUpper {
		return fmt.Errorf("password must contain at least one digit, one lowercase and one uppercase letter")
	}
	return nil
}

// ValidateTweetContent checks tweet content for presence and length bounds.
func ValidateTweetContent(content string) error {
	if content == "" {
		return fmt.Errorf("tweet content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxTweetLength {
		return fmt.Errorf("tweet content is too long (max %d characters)", MaxTweetLength)
	}
	return nil
}

// ProfileFieldLimits maps updatable profile fields to their maximum lengths.
var ProfileFieldLimits = map[string]int{
	"display_name": 100,
	"bio":          500,
	"location":     100,
	"website":      200,
}

// ValidateProfileField checks a profile field value against its length limit.
func ValidateProfileField(field, value string) error {
	limit, ok := ProfileFieldLimits[field]
	if !ok {
		return fmt.Errorf("unknown profile field %q", field)
	}
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%s must be less than %d characters", field, limit)
	}
	return nil
}
