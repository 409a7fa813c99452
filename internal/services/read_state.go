package services

import (
	"context"
	"log"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MarkThreadRead moves the caller's own read marker to now. Only the
// caller's marker is ever written; the counterpart's unread state is theirs
// alone.
//
// The caller's role (owner vs responder) is resolved by reading the thread
// document, not by parsing the thread ID. The suffix inference is kept only
// as a fallback when the point read itself fails. Either way the whole
// operation is best-effort: a caller who turns out not to be a participant
// is logged and ignored, never surfaced as an error.
func MarkThreadRead(ctx context.Context, threadID, uid string) {
	if threadID == "" || uid == "" {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	threads := database.DB.Collection("threads")

	var field string
	var thread models.Thread
	err := threads.FindOne(opCtx, bson.M{"_id": threadID}).Decode(&thread)
	switch {
	case err == mongo.ErrNoDocuments:
		return
	case err != nil:
		// Point read failed; fall back to inferring the role from the
		// thread ID suffix and let the guarded update decide.
		if ResponderUIDFromThreadID(threadID) == uid {
			field = "responder_last_read_at"
		} else {
			field = "owner_last_read_at"
		}
	case thread.ResponderUID == uid:
		field = "responder_last_read_at"
	case thread.OwnerUID == uid:
		field = "owner_last_read_at"
	default:
		log.Printf("mark read ignored: %s is not a participant of %s", uid, threadID)
		return
	}

	// The filter re-states the participant requirement so the fallback path
	// cannot move a marker on someone else's thread.
	filter := bson.M{"_id": threadID, "participants": uid}
	res, err := threads.UpdateOne(opCtx, filter, bson.M{"$set": bson.M{field: time.Now().UTC()}})
	if err != nil {
		log.Printf("mark read failed for thread %s: %v", threadID, err)
		return
	}
	if res.MatchedCount == 0 {
		log.Printf("mark read rejected for thread %s (caller %s not authorized)", threadID, uid)
	}

	if err := publishEvent(ctx, userChannel(uid), ChatEvent{Type: EventTypeThreadChange, ThreadID: threadID}); err != nil {
		log.Printf("publish read event failed for %s: %v", threadID, err)
	}
}

// IsUnreadFor reports whether the thread has activity the given participant
// has not seen. The commit protocol bumps the sender's own marker on every
// send, so a user's own messages never make their thread unread.
func IsUnreadFor(t *models.Thread, uid string) bool {
	switch uid {
	case t.ResponderUID:
		return t.LastMessageAt.After(t.ResponderLastReadAt)
	case t.OwnerUID:
		return t.LastMessageAt.After(t.OwnerLastReadAt)
	default:
		return false
	}
}
