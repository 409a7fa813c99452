package services

import (
	"errors"
	"testing"
)

func TestThreadID(t *testing.T) {
	tests := []struct {
		name         string
		postID       string
		responderUID string
		want         string
	}{
		{"basic", "post-1", "user-a", "post-1_user-a"},
		{"uuid responder", "p42", "0b3e9c2d-1f00-4a52-9f51-0c7a9d6a1b2e", "p42_0b3e9c2d-1f00-4a52-9f51-0c7a9d6a1b2e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ThreadID(tt.postID, tt.responderUID)
			if got != tt.want {
				t.Errorf("ThreadID(%q, %q) = %q, want %q", tt.postID, tt.responderUID, got, tt.want)
			}
			// Deterministic: recomputing yields the same ID.
			if again := ThreadID(tt.postID, tt.responderUID); again != got {
				t.Errorf("ThreadID not deterministic: %q != %q", again, got)
			}
		})
	}
}

func TestResponderUIDFromThreadID(t *testing.T) {
	tests := []struct {
		name     string
		threadID string
		want     string
	}{
		{"simple", "post-1_user-a", "user-a"},
		{"post id with underscores", "post_with_underscores_user-b", "user-b"},
		{"no separator", "nopunderscore", ""},
		{"trailing separator", "post-1_", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResponderUIDFromThreadID(tt.threadID); got != tt.want {
				t.Errorf("ResponderUIDFromThreadID(%q) = %q, want %q", tt.threadID, got, tt.want)
			}
		})
	}
}

func TestResolveRoles(t *testing.T) {
	tests := []struct {
		name      string
		ownerUID  string
		actingUID string
		explicit  string
		want      string
		wantErr   error
	}{
		{"responder messaging owner", "owner", "visitor", "", "visitor", nil},
		{"responder explicit ignored", "owner", "visitor", "someone-else", "visitor", nil},
		{"owner replying to responder", "owner", "owner", "visitor", "visitor", nil},
		{"owner with no recipient", "owner", "owner", "", "", ErrNoRecipient},
		{"owner addressing themselves", "owner", "owner", "owner", "", ErrInvalidRecipient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRoles(tt.ownerUID, tt.actingUID, tt.explicit)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolveRoles() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveRoles() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveRoles() = %q, want %q", got, tt.want)
			}
		})
	}
}
