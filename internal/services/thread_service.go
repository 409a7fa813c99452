package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetThread fetches one thread document.
func GetThread(ctx context.Context, threadID string) (*models.Thread, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.Thread
	err := database.DB.Collection("threads").FindOne(opCtx, bson.M{"_id": threadID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	return &t, nil
}

// GetThreadsForUser returns every conversation the user participates in,
// sorted by last activity descending.
func GetThreadsForUser(ctx context.Context, uid string) ([]models.Thread, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	return fetchThreadsForUser(ctx, uid), nil
}
