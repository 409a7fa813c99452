package utils

import "testing"

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "alice_42", false},
		{"minimum length", "abc", false},
		{"maximum length", "abcdefghijklmnopqrstuvwxyz1234", false},
		{"too short", "ab", true},
		{"too long", "abcdefghijklmnopqrstuvwxyz12345", true},
		{"empty", "", true},
		{"spaces", "alice smith", true},
		{"special characters", "alice!", true},
		{"hyphen rejected", "alice-42", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  Alice_42 "); got != "alice_42" {
		t.Errorf("NormalizeUsername() = %q, want %q", got, "alice_42")
	}
}
