package security

import (
	"github.com/google/uuid"
)

// GenerateSessionID creates a new UUID for chat session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

// GenerateResetToken creates a new UUID token for password reset links
func GenerateResetToken() string {
	return uuid.New().String()
}
