package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureChatIndexes configures indexes for the messaging collections.
// Called on startup from main after Mongo has connected.
func EnsureChatIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"messages": {
			{
				Keys:    bson.D{{Key: "thread_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_thread_created"),
			},
		},
		"threads": {
			{
				Keys:    bson.D{{Key: "owner_uid", Value: 1}},
				Options: options.Index().SetName("idx_owner"),
			},
			{
				Keys:    bson.D{{Key: "responder_uid", Value: 1}},
				Options: options.Index().SetName("idx_responder"),
			},
			{
				Keys:    bson.D{{Key: "participants", Value: 1}},
				Options: options.Index().SetName("idx_participants"),
			},
		},
		"notifications": {
			{
				Keys:    bson.D{{Key: "target_uid", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_target_created"),
			},
		},
	}

	for col, colIndexes := range indexes {
		for _, m := range colIndexes {
			if _, err := database.DB.Collection(col).Indexes().CreateOne(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadChatMessages returns paginated history for a thread. Pagination is
// based on created_at + limit (newest-first scrolling, returned oldest-first
// for the UI).
func LoadChatMessages(ctx context.Context, threadID string, before *time.Time, limit int64) ([]models.Message, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	filter := bson.M{"thread_id": threadID}
	if before != nil {
		filter["created_at"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := database.DB.Collection("messages").Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(len(msgs)) > limit
	if hasMore {
		msgs = msgs[:len(msgs)-1]
	}

	// Reverse to oldest-first for the UI.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, hasMore, nil
}

// serveFromRecentCache decides whether a cached window (oldest-first) can
// satisfy an initial-load request, and slices out the newest limit messages
// if so. A window shorter than the request is rejected: it may be a partial
// list (warmed with a smaller limit) and serving it would silently truncate
// the history, so the caller must fall through to Mongo.
func serveFromRecentCache(cached []models.Message, limit int64) ([]models.Message, bool) {
	if limit <= 0 || int64(len(cached)) < limit {
		return nil, false
	}
	return cached[int64(len(cached))-limit:], true
}

// LoadChatMessagesWithCache returns history for a thread. For the initial
// load (before==nil) it tries the Redis recent cache first; on a miss or a
// too-short window it fetches from Mongo and warms the cache.
func LoadChatMessagesWithCache(ctx context.Context, threadID string, before *time.Time, limit int64) ([]models.Message, bool, error) {
	if before == nil && limit > 0 && limit <= chatRecentMaxLen {
		if cached, ok := GetRecentMessagesFromCache(ctx, threadID); ok {
			if out, served := serveFromRecentCache(cached, limit); served {
				// The window held at least limit messages; whether older
				// ones exist beyond it is unknown, so report more. A false
				// positive costs one empty page, a false negative loses
				// history.
				return out, true, nil
			}
		}
	}

	msgs, hasMore, err := LoadChatMessages(ctx, threadID, before, limit)
	if err != nil {
		return nil, false, err
	}
	if before == nil && len(msgs) > 0 {
		WarmRecentCache(ctx, threadID, msgs)
	}
	return msgs, hasMore, nil
}
