package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"github.com/AnshRaj112/pinboard-backend/internal/services"
)

type CreatePostRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    models.Location `json:"location"`
	ImageURL    string          `json:"image_url,omitempty"`
}

type UpdatePostRequest struct {
	PostID      string             `json:"post_id"`
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Location    *models.Location   `json:"location,omitempty"`
	Status      *models.PostStatus `json:"status,omitempty"`
}

type ReportPostRequest struct {
	PostID string `json:"post_id"`
	Reason string `json:"reason"`
}

// CreatePost publishes a new board entry owned by the caller.
func CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := ""
	if doc, err := services.GetUserDoc(r.Context(), userID.String()); err == nil {
		email = doc.Email
	}

	post, err := services.CreatePost(r.Context(), userID.String(), email, req.Title, req.Description, req.Location, req.ImageURL)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"post":    post,
	})
}

// GetPosts returns the public board, newest first.
func GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := services.GetPublicPosts(r.Context())
	if err != nil {
		writeError(w, statusForError(err), "failed to load posts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"posts":   posts,
	})
}

// GetPostByID returns one post.
func GetPostByID(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("post_id")
	if postID == "" {
		writeError(w, http.StatusBadRequest, "post_id is required")
		return
	}

	post, err := services.GetPost(r.Context(), postID)
	if err != nil {
		writeError(w, statusForError(err), "post not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"post":    post,
	})
}

// UpdatePost mutates a post's editable fields (owner only).
func UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "post_id is required")
		return
	}

	err := services.UpdatePost(r.Context(), req.PostID, userID.String(), req.Title, req.Description, req.Location, req.Status)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ReportPost flags a post for moderation review.
func ReportPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ReportPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "post_id is required")
		return
	}

	if err := services.ReportPost(r.Context(), req.PostID, userID.String(), req.Reason); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
