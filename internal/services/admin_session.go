package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/google/uuid"
)

// Admin sessions mirror user sessions but live under their own Redis key
// space, so moderation access can be revoked without touching the user pool.
// One active session per admin: signing in invalidates the previous token.
const (
	adminSessionTTL       = 7 * 24 * time.Hour
	adminSessionKeyPrefix = "admin:session:" // token -> admin ID
	adminOwnerKeyPrefix   = "admin:owner:"   // admin ID -> current token
)

// CreateAdminSession issues a fresh token for an admin and stores both
// directions of the mapping in Redis with the session TTL.
func CreateAdminSession(adminID uuid.UUID) (string, error) {
	_ = InvalidateAdminSessions(adminID)

	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	if err := database.RedisClient.Set(ctx, adminSessionKeyPrefix+token, adminID.String(), adminSessionTTL).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, adminOwnerKeyPrefix+adminID.String(), token, adminSessionTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateAdminSession resolves a token to an admin ID. An unknown or
// expired token is not an error, just not a session.
func ValidateAdminSession(token string) (uuid.UUID, bool, error) {
	if token == "" {
		return uuid.Nil, false, nil
	}

	idStr, err := database.RedisClient.Get(context.Background(), adminSessionKeyPrefix+token).Result()
	if err != nil {
		return uuid.Nil, false, nil
	}
	adminID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false, err
	}
	return adminID, true, nil
}

// InvalidateAdminSession revokes one token and its owner mapping.
func InvalidateAdminSession(token string) error {
	if token == "" {
		return nil
	}

	ctx := context.Background()
	idStr, err := database.RedisClient.Get(ctx, adminSessionKeyPrefix+token).Result()
	if err == nil && idStr != "" {
		_ = database.RedisClient.Del(ctx, adminOwnerKeyPrefix+idStr).Err()
	}
	return database.RedisClient.Del(ctx, adminSessionKeyPrefix+token).Err()
}

// InvalidateAdminSessions revokes whatever session the admin currently holds.
func InvalidateAdminSessions(adminID uuid.UUID) error {
	ctx := context.Background()
	ownerKey := adminOwnerKeyPrefix + adminID.String()

	token, err := database.RedisClient.Get(ctx, ownerKey).Result()
	if err == nil && token != "" {
		_ = database.RedisClient.Del(ctx, adminSessionKeyPrefix+token).Err()
	}
	return database.RedisClient.Del(ctx, ownerKey).Err()
}
