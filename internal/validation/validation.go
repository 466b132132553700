package validation

import (
	"fmt"
	"regexp"
	"strings"
)

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

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateScore checks that a turn score is within the 0-100 range
func ValidateScore(score int) error {
	if score < 0 || score > 100 {
		return ValidationError{Field: "score", Message: "score must be between 0 and 100"}
	}
	return nil
}

// ValidateSessionID checks that a session identifier is present
func ValidateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ValidationError{Field: "sessionId", Message: "sessionId is required"}
	}
	return nil
}

// ValidateUserID checks that a user identifier is present
func ValidateUserID(userID int64) error {
	if userID <= 0 {
		return ValidationError{Field: "userId", Message: "userId is required"}
	}
	return nil
}

// ValidateWord checks a vocabulary word
func ValidateWord(word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ValidationError{Field: "word", Message: "word is required"}
	}
	if len(word) > 100 {
		return ValidationError{Field: "word", Message: "word must be at most 100 characters"}
	}
	return nil
}
