package services

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Base canonical words - the ONLY source of truth
// These are the clean, real words we're looking for
var baseThreatWords = []string{
	"kill",
	"murder",
	"assault",
	"attack",
	"hurt you",
	"find you",
	"come after you",
	"threat",
	"threatening",
	"revenge",
	"retaliate",
	"beat you",
}

var baseScamWords = []string{
	"wire transfer",
	"western union",
	"gift card",
	"pay outside",
	"advance fee",
	"overpayment",
	"cashier check",
	"crypto payment",
	"send deposit first",
}

// CleanText normalizes and cleans text to canonical form before dictionary
// comparison. Lowercases, folds common obfuscation characters to letters,
// strips punctuation, and collapses repeated letters.
func CleanText(text string) string {
	cleaned := strings.ToLower(text)

	replacements := map[string]string{
		"@": "a",
		"4": "a",
		"3": "e",
		"!": "i",
		"1": "i",
		"0": "o",
		"$": "s",
		"5": "s",
		"7": "t",
		"+": "t",
		"а": "a", // Cyrillic 'а' looks like Latin 'a'
		"е": "e", // Cyrillic 'е' looks like Latin 'e'
		"і": "i", // Cyrillic 'і' looks like Latin 'i'
		"о": "o", // Cyrillic 'о' looks like Latin 'o'
		"р": "p", // Cyrillic 'р' looks like Latin 'p'
	}

	for old, repl := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, repl)
	}

	var builder strings.Builder
	for _, r := range cleaned {
		if unicode.IsLetter(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	cleaned = builder.String()

	cleaned = collapseRepeats(cleaned)

	spaceRegex := regexp.MustCompile(`\s+`)
	cleaned = spaceRegex.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	return cleaned
}

// collapseRepeats reduces repeated LETTER characters to a single character.
// Preserves spaces so word boundaries survive.
func collapseRepeats(text string) string {
	if len(text) == 0 {
		return text
	}

	var result strings.Builder
	lastChar := rune(0)
	lastWasLetter := false

	for _, char := range text {
		isLetter := unicode.IsLetter(char)
		if isLetter && lastWasLetter && char == lastChar {
			continue
		}
		result.WriteRune(char)
		lastChar = char
		lastWasLetter = isLetter
	}

	return result.String()
}

// ContainsConfirmedWord checks if cleaned text contains any confirmed base word.
// Base words pass through the same cleaning as the input, so dictionary
// entries with doubled letters ("kill" collapses to "kil") still match.
// Single words must match a whole word (so "skill" never matches "kill");
// multi-word phrases match on containment. Matches report the original
// dictionary entry, not its canonical form.
func ContainsConfirmedWord(cleanedText string, baseWords []string) (bool, []string) {
	var confirmedWords []string
	words := strings.Fields(cleanedText)

	for _, baseWord := range baseWords {
		canonical := CleanText(baseWord)
		if canonical == "" {
			continue
		}
		if cleanedText == canonical {
			confirmedWords = append(confirmedWords, baseWord)
			continue
		}
		if strings.Contains(cleanedText, canonical) {
			if len(strings.Fields(canonical)) == 1 {
				for _, w := range words {
					if w == canonical {
						confirmedWords = append(confirmedWords, baseWord)
						break
					}
				}
			} else {
				confirmedWords = append(confirmedWords, baseWord)
			}
		}
	}

	return len(confirmedWords) > 0, confirmedWords
}

// CheckContent checks if the message contains threats or scam patterns.
// Clean → compare with canonical dictionary.
func CheckContent(message string) (hasThreat bool, hasScam bool, matchedKeywords []string) {
	cleanedText := CleanText(message)

	threatConfirmed, threatWords := ContainsConfirmedWord(cleanedText, baseThreatWords)
	if threatConfirmed {
		hasThreat = true
		matchedKeywords = append(matchedKeywords, threatWords...)
	}

	scamConfirmed, scamWords := ContainsConfirmedWord(cleanedText, baseScamWords)
	if scamConfirmed {
		hasScam = true
		matchedKeywords = append(matchedKeywords, scamWords...)
	}

	return hasThreat, hasScam, matchedKeywords
}

// --- suspension gating ---

// IsSuspendedNow reports whether the user's suspension is currently in
// effect. A suspension with a zero SuspendedUntil is indefinite.
func IsSuspendedNow(u *models.User, now time.Time) bool {
	if u == nil || !u.IsSuspended {
		return false
	}
	if u.SuspendedUntil.IsZero() {
		return true
	}
	return now.Before(u.SuspendedUntil)
}

// IsOnProbation reports whether the user is under admin review.
func IsOnProbation(u *models.User, now time.Time) bool {
	if u == nil || u.ReviewStatus != models.ReviewStatusPending {
		return false
	}
	if u.ReviewExpiresAt.IsZero() {
		return true
	}
	return now.Before(u.ReviewExpiresAt)
}

// CanStartThread gates the creation of a new conversation. Suspended and
// probationary users may not open new threads; identity resolution itself
// stays ungated, the application refuses before invoking it.
func CanStartThread(u *models.User, now time.Time) bool {
	return !IsSuspendedNow(u, now) && !IsOnProbation(u, now)
}

// CanSendInThread gates sending into a conversation. A suspended user may
// only continue an existing thread where they are the responder.
func CanSendInThread(u *models.User, t *models.Thread, now time.Time) bool {
	if !IsSuspendedNow(u, now) {
		return true
	}
	return t != nil && u != nil && t.ResponderUID == u.UID
}

// --- violation records ---

// RecordViolation records a content violation for admin review.
func RecordViolation(userUID, ipAddress string, violationType models.ViolationType, message, threadID, actionTaken string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	violation := models.Violation{
		CreatedAt:   time.Now().UTC(),
		UserUID:     userUID,
		IPAddress:   ipAddress,
		Type:        violationType,
		Message:     message,
		ThreadID:    threadID,
		ActionTaken: actionTaken,
	}

	_, err := database.DB.Collection("violations").InsertOne(ctx, violation)
	return err
}

// GetViolations returns recent violations, newest first.
func GetViolations(ctx context.Context, limit int64) ([]models.Violation, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := database.DB.Collection("violations").Find(opCtx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(opCtx)

	var violations []models.Violation
	if err := cur.All(opCtx, &violations); err != nil {
		return nil, err
	}
	return violations, nil
}

// SuspendUser flags a user as suspended until the given time (zero means
// indefinite) and records an audit entry.
func SuspendUser(ctx context.Context, actorUID, targetUID string, until time.Time, reason string) error {
	if targetUID == "" {
		return ErrValidation
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	_, err := database.DB.Collection("users").UpdateOne(opCtx, bson.M{"_id": targetUID}, bson.M{
		"$set": bson.M{
			"is_suspended":    true,
			"suspended_until": until,
			"updated_at":      now,
		},
	}, options.Update().SetUpsert(true))
	if err != nil {
		return ErrStorageUnavailable
	}

	audit := bson.M{
		"actor_uid":  actorUID,
		"target_uid": targetUID,
		"action":     "suspend",
		"reason":     reason,
		"until":      until,
		"created_at": now,
	}
	if _, err := database.DB.Collection("moderation_audit").InsertOne(opCtx, audit); err != nil {
		log.Printf("audit insert failed for suspend of %s: %v", targetUID, err)
	}
	return nil
}

// UnsuspendUser clears a suspension.
func UnsuspendUser(ctx context.Context, actorUID, targetUID string) error {
	if targetUID == "" {
		return ErrValidation
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := database.DB.Collection("users").UpdateOne(opCtx, bson.M{"_id": targetUID}, bson.M{
		"$set": bson.M{
			"is_suspended": false,
			"updated_at":   time.Now().UTC(),
		},
		"$unset": bson.M{"suspended_until": ""},
	})
	if err != nil {
		return ErrStorageUnavailable
	}
	return nil
}

// IsIPBlocked checks if an IP address is currently blocked.
func IsIPBlocked(ipAddress string) (bool, *models.BlockedIP, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var blockedIP models.BlockedIP
	err := database.DB.Collection("blocked_ips").FindOne(ctx, bson.M{
		"ip_address": ipAddress,
		"is_active":  true,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&blockedIP)

	if err == mongo.ErrNoDocuments {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, &blockedIP, nil
}

// GetBlockedIPs lists currently active IP blocks.
func GetBlockedIPs(ctx context.Context) ([]models.BlockedIP, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := database.DB.Collection("blocked_ips").Find(opCtx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(opCtx)

	var blocked []models.BlockedIP
	if err := cur.All(opCtx, &blocked); err != nil {
		return nil, err
	}
	return blocked, nil
}

// UnblockIP unblocks an IP address (admin function).
func UnblockIP(ipAddress string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := database.DB.Collection("blocked_ips").UpdateMany(ctx, bson.M{
		"ip_address": ipAddress,
		"is_active":  true,
	}, bson.M{
		"$set": bson.M{"is_active": false},
	})

	return err
}

// CleanupOldViolations removes violations older than the given age. Keeps
// the collection small while preserving blocked IPs.
func CleanupOldViolations(hoursOld int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoffTime := time.Now().Add(-time.Duration(hoursOld) * time.Hour)

	_, err := database.DB.Collection("violations").DeleteMany(ctx, bson.M{
		"created_at": bson.M{"$lt": cutoffTime},
	})
	return err
}

// StartViolationCleanup starts a background goroutine that periodically
// cleans up old violations.
func StartViolationCleanup(cleanupIntervalHours int, violationsAgeHours int) {
	if cleanupIntervalHours <= 0 {
		cleanupIntervalHours = 1
	}
	if violationsAgeHours <= 0 {
		violationsAgeHours = 24
	}

	go func() {
		ticker := time.NewTicker(time.Duration(cleanupIntervalHours) * time.Hour)
		defer ticker.Stop()

		_ = CleanupOldViolations(violationsAgeHours)

		for range ticker.C {
			_ = CleanupOldViolations(violationsAgeHours)
		}
	}()
}
