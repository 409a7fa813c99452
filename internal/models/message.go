package models

import "time"

// MaxMessageContentLen caps message content (runes, after trimming).
const MaxMessageContentLen = 2000

// MessagePreviewLen caps the thread summary preview.
const MessagePreviewLen = 80

// Message is stored in MongoDB in a flat collection (one document per
// message) keyed by a client-built ID: senderUID + "_" + millis + "_" +
// entropy. Participants are denormalized from the thread so a per-document
// authorization check never needs a cross-document lookup.
type Message struct {
	ID           string    `bson:"_id" json:"id"`
	ThreadID     string    `bson:"thread_id" json:"thread_id"`
	SenderUID    string    `bson:"sender_uid" json:"sender_uid"`
	SenderEmail  string    `bson:"sender_email" json:"sender_email"`
	Content      string    `bson:"content" json:"content"`
	Participants []string  `bson:"participants" json:"participants"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
