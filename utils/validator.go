package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether the address looks deliverable. It guards
// what gets handed to the mailer; the mail server stays authoritative.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword checks password strength.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	return true, ""
}

// SanitizeInput trims whitespace and strips null bytes from free-text input.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.ReplaceAll(input, "\x00", "")
}
