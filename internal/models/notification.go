package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType distinguishes what produced a notification.
type NotificationType string

const (
	NotificationTypeMessage NotificationType = "message"
	NotificationTypeSystem  NotificationType = "system"
	NotificationTypeRating  NotificationType = "rating"
)

// Notification is a fire-and-forget side record. The push dispatcher and the
// in-app bell both consume these; nothing in the messaging core depends on
// whether an insert succeeded.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TargetUID string             `bson:"target_uid" json:"target_uid"`
	Message   string             `bson:"message" json:"message"`
	Type      NotificationType   `bson:"type" json:"type"`
	Read      bool               `bson:"read" json:"read"`
	ThreadID  string             `bson:"thread_id,omitempty" json:"thread_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Rating is one entry of the global ratings feed.
type Rating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromUID   string             `bson:"from_uid" json:"from_uid"`
	TargetUID string             `bson:"target_uid" json:"target_uid"`
	Stars     int                `bson:"stars" json:"stars"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
