package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@example.com", "first.last+tag@sub.domain.org"}
	invalid := []string{"", "user", "user@", "@example.com", "user@example"}

	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, _ := ValidatePassword("short"); ok {
		t.Error("short password should fail")
	}
	if ok, reason := ValidatePassword("longenough"); !ok {
		t.Errorf("valid password rejected: %s", reason)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  hello \x00world  "); got != "hello world" {
		t.Errorf("SanitizeInput() = %q, want %q", got, "hello world")
	}
}
