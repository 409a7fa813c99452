package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/services"
	"github.com/AnshRaj112/pinboard-backend/pkg/utils"
	"github.com/google/uuid"
)

type AdminSigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SuspendUserRequest struct {
	TargetUID string `json:"target_uid"`
	Hours     int    `json:"hours,omitempty"` // 0 means indefinite
	Reason    string `json:"reason,omitempty"`
}

type UnsuspendUserRequest struct {
	TargetUID string `json:"target_uid"`
}

type UnblockIPRequest struct {
	IPAddress string `json:"ip_address"`
}

// AdminSignin authenticates an admin against the admins table and creates
// an admin session.
func AdminSignin(w http.ResponseWriter, r *http.Request) {
	var req AdminSigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := utils.NormalizeUsername(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	var adminID uuid.UUID
	var passwordHash string
	err := database.PostgresDB.QueryRowContext(r.Context(),
		`SELECT id, password_hash FROM admins WHERE LOWER(username) = LOWER($1)`,
		username).Scan(&adminID, &passwordHash)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := services.CreateAdminSession(adminID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
	})
}

// AdminSignout invalidates the admin's session.
func AdminSignout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	_ = services.InvalidateAdminSession(token)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GetViolations lists recent content violations for review.
func GetViolations(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	limit := int64(100)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	violations, err := services.GetViolations(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load violations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"violations": violations,
	})
}

// SuspendUser suspends a user, optionally until a deadline.
func SuspendUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var req SuspendUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var until time.Time
	if req.Hours > 0 {
		until = time.Now().UTC().Add(time.Duration(req.Hours) * time.Hour)
	}

	if err := services.SuspendUser(r.Context(), adminID.String(), req.TargetUID, until, req.Reason); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// UnsuspendUser lifts a suspension.
func UnsuspendUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var req UnsuspendUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := services.UnsuspendUser(r.Context(), adminID.String(), req.TargetUID); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GetAuditLog lists recent moderation audit records.
func GetAuditLog(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	limit := int64(100)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := services.ListAuditRecords(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audit log")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"records": records,
	})
}

// GetBlockedIPs lists currently blocked IP addresses.
func GetBlockedIPs(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	blocked, err := services.GetBlockedIPs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load blocked IPs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"blocked_ips": blocked,
	})
}

// UnblockIP lifts an IP block.
func UnblockIP(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req UnblockIPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IPAddress == "" {
		writeError(w, http.StatusBadRequest, "ip_address is required")
		return
	}

	if err := services.UnblockIP(req.IPAddress); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unblock IP")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// SweepOrphans triggers an immediate orphan message sweep and reports how
// many messages were removed.
func SweepOrphans(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	deleted, err := services.SweepOrphanMessages(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}
