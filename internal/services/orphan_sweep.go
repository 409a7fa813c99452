package services

import (
	"context"
	"log"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson"
)

// Blocking teardown deletes thread documents but leaves their messages
// behind (the store has no cascade). The sweep reclaims those orphans in
// the background so the interactive block path stays cheap.

// SweepOrphanMessages deletes messages whose thread no longer exists.
// Returns the number of messages removed.
func SweepOrphanMessages(ctx context.Context) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	messages := database.DB.Collection("messages")
	threads := database.DB.Collection("threads")

	rawIDs, err := messages.Distinct(opCtx, "thread_id", bson.M{})
	if err != nil {
		return 0, err
	}

	threadIDs := make([]string, 0, len(rawIDs))
	for _, v := range rawIDs {
		if s, ok := v.(string); ok {
			threadIDs = append(threadIDs, s)
		}
	}
	if len(threadIDs) == 0 {
		return 0, nil
	}

	cur, err := threads.Find(opCtx, bson.M{"_id": bson.M{"$in": threadIDs}})
	if err != nil {
		return 0, err
	}
	defer cur.Close(opCtx)

	alive := make(map[string]bool, len(threadIDs))
	for cur.Next(opCtx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		alive[doc.ID] = true
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}

	var orphaned []string
	for _, id := range threadIDs {
		if !alive[id] {
			orphaned = append(orphaned, id)
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	res, err := messages.DeleteMany(opCtx, bson.M{"thread_id": bson.M{"$in": orphaned}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// StartOrphanSweep runs SweepOrphanMessages on a fixed interval.
// Default: every 6 hours.
func StartOrphanSweep(intervalHours int) {
	if intervalHours <= 0 {
		intervalHours = 6
	}

	go func() {
		ticker := time.NewTicker(time.Duration(intervalHours) * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			n, err := SweepOrphanMessages(context.Background())
			if err != nil {
				log.Printf("orphan message sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("orphan message sweep removed %d messages", n)
			}
		}
	}()
}
