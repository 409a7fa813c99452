package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
)

// Event types carried over Redis Pub/Sub. Writers publish after a successful
// commit; the subscription manager treats every event as an invalidation and
// re-queries MongoDB, so payloads only need to say what changed, not carry
// authoritative state.
const (
	EventTypeMessage      = "message"
	EventTypeThreadChange = "thread_change"
	EventTypePostChange   = "post_change"
	EventTypeNotification = "notification"
	EventTypeRating       = "rating"
	EventTypeTypingStart  = "typing_start"
	EventTypeTypingStop   = "typing_stop"
)

// ChatEvent is the payload broadcast over Redis and WebSocket.
type ChatEvent struct {
	Type      string    `json:"type"`
	ThreadID  string    `json:"thread_id,omitempty"`
	PostID    string    `json:"post_id,omitempty"`
	SenderUID string    `json:"sender_uid,omitempty"`
	TargetUID string    `json:"target_uid,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Channel naming. One channel per thread, one per user (thread-list and
// notification invalidations), plus two broadcast channels.
func threadChannel(threadID string) string { return "chat:thread:" + threadID }
func userChannel(uid string) string        { return "chat:user:" + uid }

const (
	postsChannel   = "posts:events"
	ratingsChannel = "ratings:events"
)

// PublishTyping broadcasts a typing indicator on the thread channel. Typing
// is ephemeral: it is never persisted and carries no snapshot, subscribers
// forward it as-is.
func PublishTyping(ctx context.Context, threadID, uid string, typing bool) error {
	evtType := EventTypeTypingStart
	if !typing {
		evtType = EventTypeTypingStop
	}
	return publishEvent(ctx, threadChannel(threadID), ChatEvent{
		Type:      evtType,
		ThreadID:  threadID,
		SenderUID: uid,
	})
}

// publishEvent publishes an event to a Redis channel. Best-effort: live
// delivery is a cache on top of MongoDB, so a failed publish only delays
// subscribers until their next re-query.
func publishEvent(ctx context.Context, channel string, event ChatEvent) error {
	if database.RedisClient == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return database.RedisClient.Publish(ctx, channel, data).Err()
}
