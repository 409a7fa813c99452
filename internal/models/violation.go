package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ViolationType categorizes why a message was flagged.
type ViolationType string

const (
	ViolationTypeThreat ViolationType = "threat"
	ViolationTypeScam   ViolationType = "scam"
)

// Violation records a flagged message for admin review.
type Violation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UserUID     string             `bson:"user_uid,omitempty" json:"user_uid,omitempty"`
	IPAddress   string             `bson:"ip_address" json:"ip_address"`
	Type        ViolationType      `bson:"type" json:"type"`
	Message     string             `bson:"message" json:"message"`
	ThreadID    string             `bson:"thread_id,omitempty" json:"thread_id,omitempty"`
	ActionTaken string             `bson:"action_taken" json:"action_taken"`
}

// BlockedIP is an IP-level block applied after repeated violations.
type BlockedIP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	IPAddress string             `bson:"ip_address" json:"ip_address"`
	Reason    string             `bson:"reason" json:"reason"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
}
