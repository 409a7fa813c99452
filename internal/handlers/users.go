package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/pinboard-backend/internal/services"
)

type BlockUserRequest struct {
	TargetUID string `json:"target_uid"`
	Reason    string `json:"reason,omitempty"`
}

type SetNicknameRequest struct {
	ThreadID string `json:"thread_id"`
	Nickname string `json:"nickname"`
}

// BlockUser makes a reciprocal block between the caller and the target and
// deletes every conversation between them.
func BlockUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req BlockUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deleted, err := services.BlockUser(r.Context(), userID.String(), req.TargetUID, req.Reason)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"threads_deleted": deleted,
	})
}

// SetNickname stores the caller's private label for a conversation.
func SetNickname(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SetNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := services.SetNickname(r.Context(), userID.String(), req.ThreadID, req.Nickname); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
