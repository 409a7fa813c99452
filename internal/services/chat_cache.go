package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
)

const (
	chatRecentKeyPrefix = "chat:thread:"
	chatRecentKeySuffix = ":recent"
	chatRecentMaxLen    = 50
	chatRecentTTL       = 1 * time.Hour
)

func chatRecentKey(threadID string) string {
	return chatRecentKeyPrefix + threadID + chatRecentKeySuffix
}

// PushMessageToRecentCache adds a message to the Redis recent cache (newest
// at head). Called after the commit succeeds. LPUSHX + LTRIM keeps last 50.
// LPUSHX so a send never creates the list: only WarmRecentCache may create
// it, from a Mongo read, which keeps the cached window a true suffix of the
// stored history rather than whatever arrived since the key expired.
func PushMessageToRecentCache(msg models.Message) {
	if database.RedisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := chatRecentKey(msg.ThreadID)
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	pipe := database.RedisClient.Pipeline()
	pipe.LPushX(ctx, key, data)
	pipe.LTrim(ctx, key, 0, chatRecentMaxLen-1)
	pipe.Expire(ctx, key, chatRecentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("chat_cache: push failed for thread %s: %v", msg.ThreadID, err)
	}
}

// GetRecentMessagesFromCache returns the most recent messages for a thread
// (oldest-first). Returns (messages, true) on hit, (nil, false) on miss.
func GetRecentMessagesFromCache(ctx context.Context, threadID string) ([]models.Message, bool) {
	if database.RedisClient == nil {
		return nil, false
	}

	raw, err := database.RedisClient.LRange(ctx, chatRecentKey(threadID), 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}

	var msgs []models.Message
	for i := len(raw) - 1; i >= 0; i-- {
		var m models.Message
		if json.Unmarshal([]byte(raw[i]), &m) != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, true
}

// WarmRecentCache stores messages in Redis (msgs oldest-first, list ends up
// newest at head). Called on a Mongo fetch for the initial load. The key is
// replaced wholesale: a stale or partial list must never absorb the warm.
func WarmRecentCache(ctx context.Context, threadID string, msgs []models.Message) {
	if database.RedisClient == nil || len(msgs) == 0 {
		return
	}

	key := chatRecentKey(threadID)
	pipe := database.RedisClient.Pipeline()
	pipe.Del(ctx, key)
	for i := len(msgs) - 1; i >= 0; i-- {
		data, err := json.Marshal(msgs[i])
		if err != nil {
			continue
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.LTrim(ctx, key, 0, chatRecentMaxLen-1)
	pipe.Expire(ctx, key, chatRecentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("chat_cache: warm failed for thread %s: %v", threadID, err)
	}
}

// InvalidateRecentCache drops the recent cache for a thread. Used after an
// edit so the cached copy never serves the stale content.
func InvalidateRecentCache(threadID string) {
	if database.RedisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := database.RedisClient.Del(ctx, chatRecentKey(threadID)).Err(); err != nil {
		log.Printf("chat_cache: invalidate failed for thread %s: %v", threadID, err)
	}
}
