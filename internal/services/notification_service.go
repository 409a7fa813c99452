package services

import (
	"context"
	"log"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertNotification persists a notification and wakes the target's feed.
// Fire-and-forget: callers run this in a goroutine and nothing downstream
// depends on it succeeding. The push dispatcher consumes the same records.
func InsertNotification(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if _, err := database.DB.Collection("notifications").InsertOne(ctx, n); err != nil {
		log.Printf("notification insert failed for %s: %v", n.TargetUID, err)
		return
	}

	if err := publishEvent(ctx, userChannel(n.TargetUID), ChatEvent{
		Type:      EventTypeNotification,
		TargetUID: n.TargetUID,
	}); err != nil {
		log.Printf("publish notification event failed for %s: %v", n.TargetUID, err)
	}
}

// MarkNotificationRead marks one of the caller's notifications as read.
// The target filter keeps users from flipping someone else's records.
func MarkNotificationRead(ctx context.Context, uid, notificationID string) error {
	if uid == "" {
		return ErrUnauthenticated
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return ErrValidation
	}

	res, err := database.DB.Collection("notifications").UpdateOne(opCtx,
		bson.M{"_id": oid, "target_uid": uid},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return ErrStorageUnavailable
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetNotifications returns the user's notifications, newest first.
func GetNotifications(ctx context.Context, uid string, limit int64) ([]models.Notification, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := database.DB.Collection("notifications").Find(opCtx, bson.M{"target_uid": uid}, opts)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	defer cur.Close(opCtx)

	var notifications []models.Notification
	if err := cur.All(opCtx, &notifications); err != nil {
		return nil, ErrStorageUnavailable
	}
	return notifications, nil
}

// GetRatings returns the most recent entries of the global ratings feed.
func GetRatings(ctx context.Context, limit int64) ([]models.Rating, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := database.DB.Collection("ratings").Find(opCtx, bson.M{}, opts)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	defer cur.Close(opCtx)

	var ratings []models.Rating
	if err := cur.All(opCtx, &ratings); err != nil {
		return nil, ErrStorageUnavailable
	}
	return ratings, nil
}

// SubmitRating appends one entry to the global ratings feed.
func SubmitRating(ctx context.Context, fromUID, targetUID string, stars int, comment string) error {
	if fromUID == "" {
		return ErrUnauthenticated
	}
	if targetUID == "" || targetUID == fromUID || stars < 1 || stars > 5 {
		return ErrValidation
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rating := models.Rating{
		FromUID:   fromUID,
		TargetUID: targetUID,
		Stars:     stars,
		Comment:   TruncateRunes(comment, 500),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := database.DB.Collection("ratings").InsertOne(opCtx, rating); err != nil {
		return ErrStorageUnavailable
	}

	if err := publishEvent(ctx, ratingsChannel, ChatEvent{Type: EventTypeRating, TargetUID: targetUID}); err != nil {
		log.Printf("publish rating event failed: %v", err)
	}

	go InsertNotification(models.Notification{
		TargetUID: targetUID,
		Message:   "You received a new rating",
		Type:      models.NotificationTypeRating,
	})
	return nil
}
