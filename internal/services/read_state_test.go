package services

import (
	"testing"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/models"
)

func TestIsUnreadFor(t *testing.T) {
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		thread models.Thread
		uid    string
		want   bool
	}{
		{
			name: "owner behind last message",
			thread: models.Thread{
				OwnerUID: "owner", ResponderUID: "visitor",
				LastMessageAt:   base.Add(time.Minute),
				OwnerLastReadAt: base,
			},
			uid:  "owner",
			want: true,
		},
		{
			name: "owner caught up",
			thread: models.Thread{
				OwnerUID: "owner", ResponderUID: "visitor",
				LastMessageAt:   base,
				OwnerLastReadAt: base.Add(time.Minute),
			},
			uid:  "owner",
			want: false,
		},
		{
			// The commit bumps the sender's own marker, so sending never
			// makes the sender's thread unread.
			name: "sender own message not unread",
			thread: models.Thread{
				OwnerUID: "owner", ResponderUID: "visitor",
				LastMessageAt:       base,
				OwnerLastReadAt:     base,
				ResponderLastReadAt: base.Add(-time.Hour),
			},
			uid:  "owner",
			want: false,
		},
		{
			name: "responder behind",
			thread: models.Thread{
				OwnerUID: "owner", ResponderUID: "visitor",
				LastMessageAt:       base,
				ResponderLastReadAt: base.Add(-time.Second),
			},
			uid:  "visitor",
			want: true,
		},
		{
			name: "non-participant never unread",
			thread: models.Thread{
				OwnerUID: "owner", ResponderUID: "visitor",
				LastMessageAt: base,
			},
			uid:  "stranger",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnreadFor(&tt.thread, tt.uid); got != tt.want {
				t.Errorf("IsUnreadFor() = %v, want %v", got, tt.want)
			}
		})
	}
}
