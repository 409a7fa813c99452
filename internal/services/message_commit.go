package services

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewMessageID builds the client-side message ID: sender + send time +
// random entropy. The entropy suffix keeps IDs collision-free even when the
// same sender commits twice within one millisecond.
func NewMessageID(senderUID string, at time.Time) string {
	entropy := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return senderUID + "_" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + entropy
}

// TruncateRunes caps s at n runes without splitting a character.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// BuildPreview derives the thread summary preview from message content.
func BuildPreview(content string) string {
	return TruncateRunes(content, models.MessagePreviewLen)
}

// threadSummaryUpdate builds the $set applied to an existing thread when a
// message lands in it. Summary fields are refreshed; of the two read markers
// only the sender's own is included, the counterpart's unread state must
// never be touched from the send path.
func threadSummaryUpdate(t *models.Thread, senderUID, content string, now time.Time) bson.M {
	update := bson.M{
		"last_message_at":      now,
		"last_message_preview": BuildPreview(content),
		"last_sender_uid":      senderUID,
		"updated_at":           now,
	}
	if senderUID == t.OwnerUID {
		update["owner_last_read_at"] = now
	} else {
		update["responder_last_read_at"] = now
	}
	return update
}

// SendMessage atomically persists one message and its parent thread's
// summary update, or persists nothing. The thread is created lazily on the
// first message from either side; on later sends only the summary fields and
// the sender's own read marker are touched, so the counterpart's unread
// state stays independent.
//
// Everything runs in one MongoDB transaction. If any check fails (the post
// changed owner since identity was resolved, or the sender is not a declared
// participant) the transaction aborts and no partial state is observable.
func SendMessage(ctx context.Context, ident *ThreadIdentity, senderUID, senderEmail, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrValidation
	}
	content = TruncateRunes(content, models.MaxMessageContentLen)

	if senderUID != ident.OwnerUID && senderUID != ident.ResponderUID {
		return "", ErrPermissionDenied
	}

	session, err := database.Client.StartSession()
	if err != nil {
		return "", ErrStorageUnavailable
	}
	defer session.EndSession(ctx)

	txnCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var committed models.Message
	_, err = session.WithTransaction(txnCtx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now().UTC()

		// Re-check ownership against the live post inside the transaction.
		// This is the server-side authorization rule: any claim about who
		// owns the post must match the current stored value, not whatever
		// the caller resolved earlier.
		var post models.Post
		if err := database.DB.Collection("posts").FindOne(sc, bson.M{"_id": ident.PostID}).Decode(&post); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrPostNotFound
			}
			return nil, err
		}
		if post.OwnerUID != ident.OwnerUID {
			return nil, ErrPermissionDenied
		}

		threads := database.DB.Collection("threads")
		participants := []string{ident.OwnerUID, ident.ResponderUID}

		var thread models.Thread
		err := threads.FindOne(sc, bson.M{"_id": ident.ThreadID}).Decode(&thread)
		switch {
		case err == mongo.ErrNoDocuments:
			// First message: stage the full thread document. Both read
			// markers start at the commit time: the conversation begins
			// read for both sides until the next message arrives.
			doc := models.Thread{
				ID:                  ident.ThreadID,
				PostID:              ident.PostID,
				OwnerUID:            ident.OwnerUID,
				OwnerEmail:          ident.OwnerEmail,
				ResponderUID:        ident.ResponderUID,
				ResponderEmail:      lookupUserEmail(sc, ident.ResponderUID, senderUID, senderEmail),
				Participants:        participants,
				LastMessageAt:       now,
				LastMessagePreview:  BuildPreview(content),
				LastSenderUID:       senderUID,
				OwnerLastReadAt:     now,
				ResponderLastReadAt: now,
				UpdatedAt:           now,
			}
			if _, err := threads.InsertOne(sc, doc); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			// Existing thread: the sender must be one of its declared
			// participants, and the pairing must match the resolved identity.
			if !thread.HasParticipant(senderUID) || thread.OwnerUID != ident.OwnerUID {
				return nil, ErrPermissionDenied
			}
			update := threadSummaryUpdate(&thread, senderUID, content, now)
			if _, err := threads.UpdateOne(sc, bson.M{"_id": ident.ThreadID}, bson.M{"$set": update}); err != nil {
				return nil, err
			}
			participants = thread.Participants
		}

		msg := models.Message{
			ID:           NewMessageID(senderUID, now),
			ThreadID:     ident.ThreadID,
			SenderUID:    senderUID,
			SenderEmail:  senderEmail,
			Content:      content,
			Participants: participants,
			CreatedAt:    now,
		}
		if _, err := database.DB.Collection("messages").InsertOne(sc, msg); err != nil {
			return nil, err
		}
		committed = msg
		return nil, nil
	})
	if err != nil {
		switch err {
		case ErrPostNotFound, ErrPermissionDenied:
			return "", err
		default:
			log.Printf("message commit failed for thread %s: %v", ident.ThreadID, err)
			return "", ErrStorageUnavailable
		}
	}

	afterCommit(ctx, ident, committed)
	return committed.ID, nil
}

// lookupUserEmail fetches the responder's email for the thread document. If
// the sender is the responder their own email is authoritative; otherwise we
// read the responder's profile, tolerating absence (empty email).
func lookupUserEmail(ctx context.Context, responderUID, senderUID, senderEmail string) string {
	if responderUID == senderUID {
		return senderEmail
	}
	var u models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": responderUID}).Decode(&u)
	if err != nil {
		return ""
	}
	return u.Email
}

// afterCommit runs the best-effort fan-out once the transaction is durable:
// Redis events for live subscribers, the recent-message cache, and a
// notification for the counterpart. None of these affect the commit's
// outcome. msg is the document as inserted; the cache must receive it
// verbatim so cache-served history never diverges from the store.
func afterCommit(ctx context.Context, ident *ThreadIdentity, msg models.Message) {
	evt := ChatEvent{
		Type:      EventTypeMessage,
		ThreadID:  ident.ThreadID,
		PostID:    ident.PostID,
		SenderUID: msg.SenderUID,
		MessageID: msg.ID,
	}
	if err := publishEvent(ctx, threadChannel(ident.ThreadID), evt); err != nil {
		log.Printf("publish thread event failed for %s: %v", ident.ThreadID, err)
	}
	for _, uid := range []string{ident.OwnerUID, ident.ResponderUID} {
		if err := publishEvent(ctx, userChannel(uid), ChatEvent{Type: EventTypeThreadChange, ThreadID: ident.ThreadID}); err != nil {
			log.Printf("publish user event failed for %s: %v", uid, err)
		}
	}

	PushMessageToRecentCache(msg)

	counterpart := ident.OwnerUID
	if msg.SenderUID == ident.OwnerUID {
		counterpart = ident.ResponderUID
	}
	go InsertNotification(models.Notification{
		TargetUID: counterpart,
		Message:   BuildPreview(msg.Content),
		Type:      models.NotificationTypeMessage,
		ThreadID:  ident.ThreadID,
	})
}

// EditMessage updates the content of a previously sent message. Only the
// original sender may edit; the message keeps its ID and creation time.
func EditMessage(ctx context.Context, messageID, editorUID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrValidation
	}
	content = TruncateRunes(content, models.MaxMessageContentLen)

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	messages := database.DB.Collection("messages")

	var msg models.Message
	err := messages.FindOne(opCtx, bson.M{"_id": messageID}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return ErrStorageUnavailable
	}
	if msg.SenderUID != editorUID {
		return ErrPermissionDenied
	}

	_, err = messages.UpdateOne(opCtx, bson.M{"_id": messageID}, bson.M{"$set": bson.M{
		"content":    content,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return ErrStorageUnavailable
	}

	InvalidateRecentCache(msg.ThreadID)
	if err := publishEvent(ctx, threadChannel(msg.ThreadID), ChatEvent{
		Type:      EventTypeMessage,
		ThreadID:  msg.ThreadID,
		SenderUID: editorUID,
		MessageID: messageID,
	}); err != nil {
		log.Printf("publish edit event failed for %s: %v", msg.ThreadID, err)
	}
	return nil
}
