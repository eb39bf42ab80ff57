package inputval

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name+tag@example.co.uk", true},
		{"a@b.co", true},
		{"dev_user_1@dev.local", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},
		{"a@b@example.com", false},
		{"User <user@example.com>", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsHTTPURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://developer.mozilla.org/en-US/docs/Web/HTML", true},
		{"http://example.com", true},
		{"  https://go.dev/doc/  ", true},
		{"ftp://example.com/file", false},
		{"/relative/path", false},
		{"MDN docs", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsHTTPURL(tt.in); got != tt.want {
				t.Errorf("IsHTTPURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTooLong(t *testing.T) {
	if TooLong("héllo", 5) {
		t.Error("5 runes should not exceed a limit of 5")
	}
	if !TooLong(strings.Repeat("x", 6), 5) {
		t.Error("6 runes should exceed a limit of 5")
	}
}
