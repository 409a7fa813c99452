package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Accounts live in PostgreSQL; the chat/moderation profile lives in the
// MongoDB users collection keyed by the same UID.

// GetUsernameByID retrieves a username by user ID.
func GetUsernameByID(userID string) (string, error) {
	parsedID, err := uuid.Parse(userID)
	if err != nil {
		return "", err
	}

	var username string
	err = database.PostgresDB.QueryRow(`
		SELECT username FROM users WHERE id = $1 AND is_active = TRUE
	`, parsedID).Scan(&username)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil // User not found or inactive
		}
		return "", err
	}

	return username, nil
}

// GetUserIDByUsername retrieves a user ID by username.
func GetUserIDByUsername(username string) (string, error) {
	var userID uuid.UUID
	err := database.PostgresDB.QueryRow(`
		SELECT id FROM users WHERE LOWER(username) = $1 AND is_active = TRUE
	`, username).Scan(&userID)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}

	return userID.String(), nil
}

// GetUserDoc fetches the Mongo profile document for a UID.
func GetUserDoc(ctx context.Context, uid string) (*models.User, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u models.User
	err := database.DB.Collection("users").FindOne(opCtx, bson.M{"_id": uid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	return &u, nil
}

// EnsureUserDoc creates the profile document if it does not exist yet.
// Called on signup and on first signin after a migration.
func EnsureUserDoc(ctx context.Context, uid, email string) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	_, err := database.DB.Collection("users").UpdateOne(opCtx, bson.M{"_id": uid}, bson.M{
		"$setOnInsert": bson.M{
			"email":      email,
			"created_at": now,
		},
		"$set": bson.M{"updated_at": now},
	}, options.Update().SetUpsert(true))
	return err
}

// SetNickname stores the caller's private nickname for a thread. Nicknames
// are per-user display labels; the counterpart never sees them.
func SetNickname(ctx context.Context, uid, threadID, nickname string) error {
	if uid == "" {
		return ErrUnauthenticated
	}
	if threadID == "" {
		return ErrValidation
	}
	nickname = TruncateRunes(nickname, 40)

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"nicknames." + threadID: nickname,
		"updated_at":            time.Now().UTC(),
	}}
	if nickname == "" {
		update = bson.M{
			"$unset": bson.M{"nicknames." + threadID: ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		}
	}

	_, err := database.DB.Collection("users").UpdateOne(opCtx, bson.M{"_id": uid}, update, options.Update().SetUpsert(true))
	if err != nil {
		return ErrStorageUnavailable
	}
	return nil
}
