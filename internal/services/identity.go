package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ThreadIdentity is the resolved (owner, responder, thread) triple for one
// post conversation.
type ThreadIdentity struct {
	PostID       string
	OwnerUID     string
	OwnerEmail   string
	ResponderUID string
	ThreadID     string
}

// ThreadID derives the deterministic conversation ID for a post/responder
// pair. Recomputing it for the same inputs always yields the same value,
// which is what allows lazy thread creation without a coordinator.
func ThreadID(postID, responderUID string) string {
	return postID + "_" + responderUID
}

// ResponderUIDFromThreadID recovers the responder's UID from a thread ID.
// UIDs never contain underscores, so the suffix after the last "_" is the
// responder. Only used as a fallback when the thread document cannot be
// read; role decisions normally come from the document itself.
func ResponderUIDFromThreadID(threadID string) string {
	idx := strings.LastIndex(threadID, "_")
	if idx < 0 || idx == len(threadID)-1 {
		return ""
	}
	return threadID[idx+1:]
}

// resolveRoles decides which side of the conversation the acting user is on.
// Pure function over already-read values; the live post read happens in
// ResolveThreadIdentity.
func resolveRoles(ownerUID, actingUID, explicitResponderUID string) (responderUID string, err error) {
	if actingUID != ownerUID {
		responderUID = actingUID
	} else {
		if explicitResponderUID == "" {
			// An owner with no prior conversation has no one to address.
			return "", ErrNoRecipient
		}
		responderUID = explicitResponderUID
	}
	if responderUID == ownerUID {
		return "", ErrInvalidRecipient
	}
	return responderUID, nil
}

// ResolveThreadIdentity resolves who owns the post and who is responding,
// and derives the thread ID. The post's owner is read fresh from MongoDB
// every time: the write-time authorization check evaluates against the
// current stored owner_uid, and a stale local belief about ownership would
// make the commit fail. Never resolve identity from a cached post.
func ResolveThreadIdentity(ctx context.Context, postID, actingUID, explicitResponderUID string) (*ThreadIdentity, error) {
	if actingUID == "" {
		return nil, ErrUnauthenticated
	}
	if postID == "" {
		return nil, ErrValidation
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var post models.Post
	err := database.DB.Collection("posts").FindOne(readCtx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, ErrStorageUnavailable
	}

	responderUID, err := resolveRoles(post.OwnerUID, actingUID, explicitResponderUID)
	if err != nil {
		return nil, err
	}

	return &ThreadIdentity{
		PostID:       postID,
		OwnerUID:     post.OwnerUID,
		OwnerEmail:   post.OwnerEmail,
		ResponderUID: responderUID,
		ThreadID:     ThreadID(postID, responderUID),
	}, nil
}
