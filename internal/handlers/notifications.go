package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/AnshRaj112/pinboard-backend/internal/services"
)

type MarkNotificationReadRequest struct {
	NotificationID string `json:"notification_id"`
}

type SubmitRatingRequest struct {
	TargetUID string `json:"target_uid"`
	Stars     int    `json:"stars"`
	Comment   string `json:"comment,omitempty"`
}

// GetNotifications returns the caller's notification feed, newest first.
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := int64(50)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := services.GetNotifications(r.Context(), userID.String(), limit)
	if err != nil {
		writeError(w, statusForError(err), "failed to load notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"notifications": notifications,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req MarkNotificationReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := services.MarkNotificationRead(r.Context(), userID.String(), req.NotificationID); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// SubmitRating records a rating for another user.
func SubmitRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := services.SubmitRating(r.Context(), userID.String(), req.TargetUID, req.Stars, req.Comment); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true})
}

// GetRatings returns the public ratings feed.
func GetRatings(w http.ResponseWriter, r *http.Request) {
	limit := int64(50)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ratings, err := services.GetRatings(r.Context(), limit)
	if err != nil {
		writeError(w, statusForError(err), "failed to load ratings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"ratings": ratings,
	})
}
