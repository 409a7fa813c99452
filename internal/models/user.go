package models

import "time"

// ReviewStatus marks whether a user's recent content is awaiting admin
// review. A pending review puts the user on probation: they may continue
// existing conversations but cannot open new ones.
type ReviewStatus string

const (
	ReviewStatusNone    ReviewStatus = ""
	ReviewStatusPending ReviewStatus = "pending"
	ReviewStatusCleared ReviewStatus = "cleared"
)

// User is the chat and moderation profile stored in MongoDB, keyed by the
// same UID as the PostgreSQL account row. Account credentials never live
// here; this document carries only the state the messaging core reads on
// every send: block lists, suspension, and review flags.
type User struct {
	UID             string            `bson:"_id" json:"uid"`
	Email           string            `bson:"email" json:"email"`
	BlockedUIDs     []string          `bson:"blocked_uids,omitempty" json:"blocked_uids,omitempty"`
	Nicknames       map[string]string `bson:"nicknames,omitempty" json:"nicknames,omitempty"`
	IsSuspended     bool              `bson:"is_suspended" json:"is_suspended"`
	SuspendedUntil  time.Time         `bson:"suspended_until,omitempty" json:"suspended_until,omitempty"`
	ReviewStatus    ReviewStatus      `bson:"review_status,omitempty" json:"review_status,omitempty"`
	ReviewExpiresAt time.Time         `bson:"review_expires_at,omitempty" json:"review_expires_at,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updated_at"`
}

// HasBlocked reports whether this user has blocked the given UID.
func (u *User) HasBlocked(uid string) bool {
	for _, b := range u.BlockedUIDs {
		if b == uid {
			return true
		}
	}
	return false
}
