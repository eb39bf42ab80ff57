package status

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"active", true},
		{"archived", true},
		{"disabled", false},
		{"Active", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.in); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOrDefault(t *testing.T) {
	if got := OrDefault(""); got != Active {
		t.Errorf("OrDefault(\"\") = %q, want %q", got, Active)
	}
	if got := OrDefault(Archived); got != Archived {
		t.Errorf("OrDefault(archived) = %q, want %q", got, Archived)
	}
}
