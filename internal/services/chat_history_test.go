package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/models"
)

func cachedWindow(n int) []models.Message {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := make([]models.Message, n)
	for i := range msgs {
		msgs[i] = models.Message{
			ID:        "m" + strconv.Itoa(i),
			Content:   "msg " + strconv.Itoa(i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return msgs
}

func TestServeFromRecentCache(t *testing.T) {
	tests := []struct {
		name   string
		cached int
		limit  int64
		served bool
		wantN  int
	}{
		{"window longer than request", 50, 20, true, 20},
		{"window exactly the request", 20, 20, true, 20},
		{"window shorter than request", 1, 50, false, 0},
		{"empty window", 0, 50, false, 0},
		{"zero limit", 50, 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, served := serveFromRecentCache(cachedWindow(tt.cached), tt.limit)
			if served != tt.served {
				t.Fatalf("served = %v, want %v", served, tt.served)
			}
			if len(out) != tt.wantN {
				t.Fatalf("len(out) = %d, want %d", len(out), tt.wantN)
			}
			if !served {
				return
			}
			// The newest limit messages, still oldest-first.
			wantFirst := "m" + strconv.Itoa(tt.cached-int(tt.limit))
			if out[0].ID != wantFirst {
				t.Errorf("out[0].ID = %q, want %q (newest window of the cache)", out[0].ID, wantFirst)
			}
			if out[len(out)-1].ID != "m"+strconv.Itoa(tt.cached-1) {
				t.Errorf("out ends at %q, want the newest cached message", out[len(out)-1].ID)
			}
		})
	}
}
