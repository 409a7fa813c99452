package services

import (
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/models"
)

func TestNewMessageID(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	id := NewMessageID("user-a", at)
	if !strings.HasPrefix(id, "user-a_1748779200000_") {
		t.Errorf("NewMessageID prefix = %q, want sender and millis prefix", id)
	}

	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		t.Fatalf("NewMessageID parts = %d, want 3 (%q)", len(parts), id)
	}
	if len(parts[2]) != 12 {
		t.Errorf("entropy suffix length = %d, want 12", len(parts[2]))
	}

	// Two IDs in the same millisecond must differ.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		next := NewMessageID("user-a", at)
		if seen[next] {
			t.Fatalf("duplicate message ID within one millisecond: %q", next)
		}
		seen[next] = true
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than cap", "hello", 10, "hello"},
		{"exactly at cap", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello"},
		{"zero cap", "hello", 0, ""},
		{"negative cap", "hello", -1, ""},
		{"multibyte not split", "héllo wörld", 7, "héllo w"},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.in, tt.n); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestThreadSummaryUpdate(t *testing.T) {
	thread := &models.Thread{
		ID:           "post-1_responder",
		OwnerUID:     "owner",
		ResponderUID: "responder",
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		senderUID  string
		wantMarker string
		mustOmit   string
	}{
		{"owner send moves owner marker", "owner", "owner_last_read_at", "responder_last_read_at"},
		{"responder send moves responder marker", "responder", "responder_last_read_at", "owner_last_read_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := threadSummaryUpdate(thread, tt.senderUID, "hello", now)

			if got, ok := update[tt.wantMarker]; !ok || got != now {
				t.Errorf("update[%q] = %v, want %v", tt.wantMarker, got, now)
			}
			if _, ok := update[tt.mustOmit]; ok {
				t.Errorf("update contains %q; the counterpart's marker must never move on send", tt.mustOmit)
			}
			if update["last_sender_uid"] != tt.senderUID {
				t.Errorf("last_sender_uid = %v, want %q", update["last_sender_uid"], tt.senderUID)
			}
			if update["last_message_preview"] != "hello" {
				t.Errorf("last_message_preview = %v, want %q", update["last_message_preview"], "hello")
			}
			if update["last_message_at"] != now || update["updated_at"] != now {
				t.Errorf("summary timestamps = %v/%v, want %v", update["last_message_at"], update["updated_at"], now)
			}
		})
	}
}

func TestBuildPreview(t *testing.T) {
	short := "see you at the fountain"
	if got := BuildPreview(short); got != short {
		t.Errorf("BuildPreview(%q) = %q, want unchanged", short, got)
	}

	long := strings.Repeat("a", models.MessagePreviewLen+50)
	got := BuildPreview(long)
	if len([]rune(got)) != models.MessagePreviewLen {
		t.Errorf("BuildPreview length = %d, want %d", len([]rune(got)), models.MessagePreviewLen)
	}
}
