package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postBoardCacheKey = "posts:board"

// CreatePost publishes a new board entry owned by the caller.
func CreatePost(ctx context.Context, ownerUID, ownerEmail string, title, description string, loc models.Location, imageURL string) (*models.Post, error) {
	if ownerUID == "" {
		return nil, ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrValidation
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	post := models.Post{
		ID:          uuid.NewString(),
		OwnerUID:    ownerUID,
		OwnerEmail:  ownerEmail,
		Title:       TruncateRunes(title, 120),
		Description: TruncateRunes(strings.TrimSpace(description), 4000),
		Location:    loc,
		ImageURL:    imageURL,
		Status:      models.PostStatusPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := database.DB.Collection("posts").InsertOne(opCtx, post); err != nil {
		return nil, ErrStorageUnavailable
	}

	invalidatePostBoard(ctx)
	return &post, nil
}

// UpdatePost mutates a post's editable fields. Only the owner may update;
// ownership is checked in the update filter itself so a stale caller gets a
// permission error, not a silent no-op on someone else's post.
func UpdatePost(ctx context.Context, postID, actorUID string, title, description *string, loc *models.Location, status *models.PostStatus) error {
	if actorUID == "" {
		return ErrUnauthenticated
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return ErrValidation
		}
		set["title"] = TruncateRunes(t, 120)
	}
	if description != nil {
		set["description"] = TruncateRunes(strings.TrimSpace(*description), 4000)
	}
	if loc != nil {
		set["location"] = *loc
	}
	if status != nil {
		if *status != models.PostStatusPublic && *status != models.PostStatusHidden {
			return ErrValidation
		}
		set["status"] = *status
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := database.DB.Collection("posts").UpdateOne(opCtx,
		bson.M{"_id": postID, "owner_uid": actorUID},
		bson.M{"$set": set})
	if err != nil {
		return ErrStorageUnavailable
	}
	if res.MatchedCount == 0 {
		// Distinguish missing post from foreign post.
		n, countErr := database.DB.Collection("posts").CountDocuments(opCtx, bson.M{"_id": postID})
		if countErr == nil && n == 0 {
			return ErrPostNotFound
		}
		return ErrPermissionDenied
	}

	invalidatePostBoard(ctx)
	return nil
}

// ReportPost flags a post for moderation. Any authenticated user may report.
func ReportPost(ctx context.Context, postID, reporterUID, reason string) error {
	if reporterUID == "" {
		return ErrUnauthenticated
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := database.DB.Collection("posts").UpdateOne(opCtx,
		bson.M{"_id": postID},
		bson.M{"$set": bson.M{"is_reported": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return ErrStorageUnavailable
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}

	audit := bson.M{
		"actor_uid":  reporterUID,
		"target_uid": "",
		"post_id":    postID,
		"action":     "report_post",
		"reason":     reason,
		"created_at": time.Now().UTC(),
	}
	if _, err := database.DB.Collection("moderation_audit").InsertOne(opCtx, audit); err != nil {
		log.Printf("audit insert failed for report of %s: %v", postID, err)
	}

	invalidatePostBoard(ctx)
	return nil
}

// GetPost fetches one post by ID.
func GetPost(ctx context.Context, postID string) (*models.Post, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var post models.Post
	err := database.DB.Collection("posts").FindOne(opCtx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	return &post, nil
}

// GetPublicPosts returns the visible board, newest first. The Redis cache
// shields MongoDB from feed polling; writers invalidate it.
func GetPublicPosts(ctx context.Context) ([]models.Post, error) {
	var cached []models.Post
	if hit, err := Cache.Get(postBoardCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(500)
	cur, err := database.DB.Collection("posts").Find(opCtx, bson.M{"status": models.PostStatusPublic}, opts)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	defer cur.Close(opCtx)

	var posts []models.Post
	if err := cur.All(opCtx, &posts); err != nil {
		return nil, ErrStorageUnavailable
	}

	if err := Cache.Set(postBoardCacheKey, posts); err != nil {
		log.Printf("post board cache set failed: %v", err)
	}
	return posts, nil
}

func invalidatePostBoard(ctx context.Context) {
	if err := Cache.Delete(postBoardCacheKey); err != nil {
		log.Printf("post board cache invalidation failed: %v", err)
	}
	if err := publishEvent(ctx, postsChannel, ChatEvent{Type: EventTypePostChange}); err != nil {
		log.Printf("publish post event failed: %v", err)
	}
}
