package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)
)

// ValidateEmail validates an email address.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateUsername validates a normalized username: lowercase letters,
// digits, underscore, dot, 3-30 characters.
func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// Normalize lowercases and trims an identifier (username or email) before
// lookup or storage, keeping the uniqueness check case-insensitive.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsBlank reports whether a required field is empty or whitespace-only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
