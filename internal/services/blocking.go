package services

import (
	"context"
	"log"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlockUser makes the block reciprocal and tears down every conversation
// between the two users. Steps:
//
//  1. Add each UID to the other's block list (two profile updates).
//  2. Delete every thread whose participants contain both UIDs.
//  3. Append one audit record with actor, target and reason.
//
// Message documents under the deleted threads are intentionally not removed
// here; the periodic orphan sweep (orphan_sweep.go) reclaims them. Keeping
// the interactive path small bounds how long a block takes regardless of
// conversation size.
func BlockUser(ctx context.Context, actorUID, targetUID, reason string) (int64, error) {
	if actorUID == "" {
		return 0, ErrUnauthenticated
	}
	if targetUID == "" || targetUID == actorUID {
		return 0, ErrValidation
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")
	now := time.Now().UTC()
	upsert := options.Update().SetUpsert(true)

	if _, err := users.UpdateOne(opCtx, bson.M{"_id": actorUID}, bson.M{
		"$addToSet": bson.M{"blocked_uids": targetUID},
		"$set":      bson.M{"updated_at": now},
	}, upsert); err != nil {
		return 0, ErrStorageUnavailable
	}
	if _, err := users.UpdateOne(opCtx, bson.M{"_id": targetUID}, bson.M{
		"$addToSet": bson.M{"blocked_uids": actorUID},
		"$set":      bson.M{"updated_at": now},
	}, upsert); err != nil {
		return 0, ErrStorageUnavailable
	}

	res, err := database.DB.Collection("threads").DeleteMany(opCtx, bson.M{
		"participants": bson.M{"$all": []string{actorUID, targetUID}},
	})
	if err != nil {
		return 0, ErrStorageUnavailable
	}

	audit := bson.M{
		"actor_uid":  actorUID,
		"target_uid": targetUID,
		"action":     "block",
		"reason":     reason,
		"created_at": now,
	}
	if _, err := database.DB.Collection("moderation_audit").InsertOne(opCtx, audit); err != nil {
		log.Printf("audit insert failed for block %s -> %s: %v", actorUID, targetUID, err)
	}

	for _, uid := range []string{actorUID, targetUID} {
		if err := publishEvent(ctx, userChannel(uid), ChatEvent{Type: EventTypeThreadChange, TargetUID: uid}); err != nil {
			log.Printf("publish block event failed for %s: %v", uid, err)
		}
	}

	return res.DeletedCount, nil
}

// IsBlockedEitherWay reports whether either user has blocked the other.
// Consulted before identity resolution so blocked pairs cannot open new
// conversations.
func IsBlockedEitherWay(ctx context.Context, uidA, uidB string) bool {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := database.DB.Collection("users").CountDocuments(opCtx, bson.M{
		"$or": []bson.M{
			{"_id": uidA, "blocked_uids": uidB},
			{"_id": uidB, "blocked_uids": uidA},
		},
	})
	if err != nil {
		log.Printf("block check failed for %s/%s: %v", uidA, uidB, err)
		return false
	}
	return n > 0
}

// ListAuditRecords returns recent moderation audit entries, newest first.
func ListAuditRecords(ctx context.Context, limit int64) ([]bson.M, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := database.DB.Collection("moderation_audit").Find(opCtx, bson.M{}, opts)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	defer cur.Close(opCtx)

	var records []bson.M
	if err := cur.All(opCtx, &records); err != nil {
		return nil, ErrStorageUnavailable
	}
	return records, nil
}
