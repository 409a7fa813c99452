package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/services"
	"github.com/AnshRaj112/pinboard-backend/pkg/utils"
	"github.com/google/uuid"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Token   string                 `json:"token,omitempty"`
	User    map[string]interface{} `json:"user,omitempty"`
}

// Signup registers a new account. Credentials go to PostgreSQL; the chat
// profile document is created in MongoDB under the same UID.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	normalizedUsername := utils.NormalizeUsername(req.Username)

	var existingUsername string
	err := database.PostgresDB.QueryRow(
		"SELECT username FROM users WHERE LOWER(username) = $1",
		normalizedUsername,
	).Scan(&existingUsername)
	if err == nil {
		writeError(w, http.StatusConflict, "Username is already taken")
		return
	} else if err != sql.ErrNoRows {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	userID := uuid.New()
	email := strings.TrimSpace(req.Email)
	_, err = database.PostgresDB.Exec(`
		INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4)
	`, userID, normalizedUsername, email, hashedPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := services.EnsureUserDoc(r.Context(), userID.String(), email); err != nil {
		// The profile upsert is retried on first signin; signup still counts.
		writeJSON(w, http.StatusCreated, AuthResponse{
			Success: true,
			Message: "Account created",
		})
		return
	}

	token, err := services.CreateSession(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created",
		Token:   token,
		User: map[string]interface{}{
			"uid":      userID.String(),
			"username": normalizedUsername,
		},
	})
}

// Signin authenticates a user and returns a fresh session token.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	normalizedUsername := utils.NormalizeUsername(req.Username)

	var userID uuid.UUID
	var passwordHash string
	var email string
	err := database.PostgresDB.QueryRow(`
		SELECT id, password_hash, email FROM users WHERE LOWER(username) = $1 AND is_active = TRUE
	`, normalizedUsername).Scan(&userID, &passwordHash, &email)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	match, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !match {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	// Profile doc may be missing for accounts predating the Mongo split.
	if err := services.EnsureUserDoc(r.Context(), userID.String(), email); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Profile store unavailable")
		return
	}

	token, err := services.CreateSession(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Signed in",
		Token:   token,
		User: map[string]interface{}{
			"uid":      userID.String(),
			"username": normalizedUsername,
		},
	})
}

// GetMe returns the authenticated user's account and profile state.
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	username, err := services.GetUsernameByID(userID.String())
	if err != nil || username == "" {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	user := map[string]interface{}{
		"uid":      userID.String(),
		"username": username,
	}
	if doc, err := services.GetUserDoc(r.Context(), userID.String()); err == nil {
		user["email"] = doc.Email
		user["is_suspended"] = doc.IsSuspended
		user["nicknames"] = doc.Nicknames
		user["blocked_uids"] = doc.BlockedUIDs
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// Signout invalidates the caller's session token.
func Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing session token")
		return
	}
	if err := services.InvalidateSession(token); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Signed out",
	})
}
