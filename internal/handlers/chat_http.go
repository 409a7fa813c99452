package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"github.com/AnshRaj112/pinboard-backend/internal/services"
	"github.com/AnshRaj112/pinboard-backend/pkg/clientip"
)

type ResolveChatRequest struct {
	PostID       string `json:"post_id"`
	ResponderUID string `json:"responder_uid,omitempty"` // required when the caller owns the post
}

type SendMessageRequest struct {
	PostID       string `json:"post_id"`
	ResponderUID string `json:"responder_uid,omitempty"`
	Content      string `json:"content"`
}

type EditMessageRequest struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

type MarkReadRequest struct {
	ThreadID string `json:"thread_id"`
}

// ResolveChat resolves who owns the post and who responds, and returns the
// deterministic thread ID. The client uses this to open a conversation view
// before any message exists.
func ResolveChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ResolveChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident, err := services.ResolveThreadIdentity(r.Context(), req.PostID, userID.String(), req.ResponderUID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"thread_id":     ident.ThreadID,
		"owner_uid":     ident.OwnerUID,
		"responder_uid": ident.ResponderUID,
	})
}

// SendChatMessage resolves identity and commits one message atomically with
// its thread summary update.
//
// The client clears its composer optimistically before this call returns; on
// any failure the submitted content is echoed back so the composer can be
// restored. Failures are never swallowed.
func SendChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	uid := userID.String()

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fail := func(status int, message string) {
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"message": message,
			"content": req.Content, // for composer restore
		})
	}

	ident, err := services.ResolveThreadIdentity(r.Context(), req.PostID, uid, req.ResponderUID)
	if err != nil {
		fail(statusForError(err), err.Error())
		return
	}

	// Blocked pairs cannot converse.
	other := ident.OwnerUID
	if uid == ident.OwnerUID {
		other = ident.ResponderUID
	}
	if services.IsBlockedEitherWay(r.Context(), uid, other) {
		fail(http.StatusForbidden, "You cannot message this user")
		return
	}

	// Moderation gating: suspended users may only continue an existing
	// thread where they respond; they never start new conversations.
	now := time.Now().UTC()
	userDoc, docErr := services.GetUserDoc(r.Context(), uid)
	if docErr == nil {
		thread, threadErr := services.GetThread(r.Context(), ident.ThreadID)
		if threadErr != nil {
			thread = nil
		}
		if thread == nil && !services.CanStartThread(userDoc, now) {
			fail(http.StatusForbidden, "Your account is restricted from starting new conversations")
			return
		}
		if !services.CanSendInThread(userDoc, thread, now) {
			fail(http.StatusForbidden, "Your account is currently suspended")
			return
		}
	}

	// Content screening. Confirmed hits are recorded for review but the
	// message still goes through; suspension is an admin decision.
	if hasThreat, hasScam, _ := services.CheckContent(req.Content); hasThreat || hasScam {
		vtype := models.ViolationTypeThreat
		if !hasThreat {
			vtype = models.ViolationTypeScam
		}
		if err := services.RecordViolation(uid, clientip.RealClientIP(r), vtype, services.BuildPreview(req.Content), ident.ThreadID, "flagged"); err != nil {
			log.Printf("violation record failed for %s: %v", uid, err)
		}
	}

	email := ""
	if userDoc != nil {
		email = userDoc.Email
	}

	messageID, err := services.SendMessage(r.Context(), ident, uid, email, req.Content)
	if err != nil {
		fail(statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"message_id": messageID,
		"thread_id":  ident.ThreadID,
	})
}

// GetThreads returns the caller's conversations sorted by last activity,
// with an unread flag computed from the caller's own read marker.
func GetThreads(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	uid := userID.String()

	threads, err := services.GetThreadsForUser(r.Context(), uid)
	if err != nil {
		writeError(w, statusForError(err), "failed to load conversations")
		return
	}

	type threadView struct {
		models.Thread
		Unread bool `json:"unread"`
	}
	views := make([]threadView, 0, len(threads))
	for _, t := range threads {
		views = append(views, threadView{Thread: t, Unread: services.IsUnreadFor(&t, uid)})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"threads": views,
	})
}

// LoadChatHistoryResponse is returned when loading historical messages.
type LoadChatHistoryResponse struct {
	Success  bool             `json:"success"`
	Messages []models.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

// LoadChatHistory loads paginated messages for a thread the caller
// participates in.
// Query params:
//
//	thread_id (required)
//	before    (optional RFC3339 timestamp for pagination)
//	limit     (optional, default 50)
func LoadChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	threadID := r.URL.Query().Get("thread_id")
	if threadID == "" {
		writeError(w, http.StatusBadRequest, "thread_id is required")
		return
	}

	// Participants only.
	thread, err := services.GetThread(r.Context(), threadID)
	if err != nil {
		writeError(w, statusForError(err), "conversation not found")
		return
	}
	if !thread.HasParticipant(userID.String()) {
		writeError(w, http.StatusForbidden, "you are not a participant of this conversation")
		return
	}

	limit := int64(50)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var before *time.Time
	if bStr := r.URL.Query().Get("before"); bStr != "" {
		if t, err := time.Parse(time.RFC3339, bStr); err == nil {
			before = &t
		}
	}

	opCtx := r.Context()
	msgs, hasMore, err := services.LoadChatMessagesWithCache(opCtx, threadID, before, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	writeJSON(w, http.StatusOK, LoadChatHistoryResponse{
		Success:  true,
		Messages: msgs,
		HasMore:  hasMore,
	})
}

// MarkThreadRead moves the caller's read marker. Always answers success:
// the update is best-effort by contract and a wrong guess about
// participation is logged server-side, not surfaced.
func MarkThreadRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ThreadID == "" {
		writeError(w, http.StatusBadRequest, "thread_id is required")
		return
	}

	services.MarkThreadRead(r.Context(), req.ThreadID, userID.String())
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// EditChatMessage updates the content of the caller's own message.
func EditChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := services.EditMessage(r.Context(), req.MessageID, userID.String(), req.Content); err != nil {
		writeJSON(w, statusForError(err), map[string]interface{}{
			"success": false,
			"message": err.Error(),
			"content": req.Content,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
