package services

import (
	"testing"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/models"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "KILL", "kil"},
		{"leet substitution", "k!ll y0u", "kil you"},
		{"repeated letters collapse", "kiiillll", "kil"},
		{"punctuation stripped", "k.i.l.l", "k i l"},
		{"whitespace collapsed", "wire   transfer", "wire transfer"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContainsConfirmedWord(t *testing.T) {
	words := []string{"kill", "wire transfer"}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact single word", "kill", true},
		{"word in sentence", "i will kill it", true},
		{"substring does not match whole word", "great skill", false},
		{"phrase containment", "send a wire transfer today", true},
		{"no match", "hello there", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ContainsConfirmedWord(CleanText(tt.text), words)
			if got != tt.want {
				t.Errorf("ContainsConfirmedWord(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCheckContent(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		wantThreat bool
		wantScam   bool
	}{
		{"clean message", "is the bike still available?", false, false},
		{"threat", "i will kill you", true, false},
		{"obfuscated threat", "i will k!ll you", true, false},
		{"scam", "please use western union", false, true},
		{"skill is not a threat", "what a great skill", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasThreat, hasScam, _ := CheckContent(tt.message)
			if hasThreat != tt.wantThreat || hasScam != tt.wantScam {
				t.Errorf("CheckContent(%q) = (%v, %v), want (%v, %v)",
					tt.message, hasThreat, hasScam, tt.wantThreat, tt.wantScam)
			}
		})
	}
}

func TestSuspensionGating(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	active := &models.User{UID: "u1"}
	suspended := &models.User{UID: "u1", IsSuspended: true}
	expired := &models.User{UID: "u1", IsSuspended: true, SuspendedUntil: now.Add(-time.Hour)}
	timed := &models.User{UID: "u1", IsSuspended: true, SuspendedUntil: now.Add(time.Hour)}
	probation := &models.User{UID: "u1", ReviewStatus: models.ReviewStatusPending}

	if IsSuspendedNow(active, now) {
		t.Error("active user reported suspended")
	}
	if !IsSuspendedNow(suspended, now) {
		t.Error("indefinite suspension not reported")
	}
	if IsSuspendedNow(expired, now) {
		t.Error("expired suspension still reported")
	}
	if !IsSuspendedNow(timed, now) {
		t.Error("timed suspension not reported")
	}
	if IsSuspendedNow(nil, now) {
		t.Error("nil user reported suspended")
	}

	if !CanStartThread(active, now) {
		t.Error("active user cannot start thread")
	}
	if CanStartThread(suspended, now) {
		t.Error("suspended user can start thread")
	}
	if CanStartThread(probation, now) {
		t.Error("probation user can start thread")
	}
}

func TestCanSendInThread(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	suspended := &models.User{UID: "visitor", IsSuspended: true}
	asResponder := &models.Thread{OwnerUID: "owner", ResponderUID: "visitor"}
	asOwner := &models.Thread{OwnerUID: "visitor", ResponderUID: "someone"}

	if !CanSendInThread(&models.User{UID: "visitor"}, asResponder, now) {
		t.Error("active user blocked from sending")
	}
	// Suspended users may continue a conversation they respond in, but
	// nowhere else.
	if !CanSendInThread(suspended, asResponder, now) {
		t.Error("suspended responder blocked from continuing their thread")
	}
	if CanSendInThread(suspended, asOwner, now) {
		t.Error("suspended owner allowed to send")
	}
	if CanSendInThread(suspended, nil, now) {
		t.Error("suspended user allowed to send into missing thread")
	}
}
