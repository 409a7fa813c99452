package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/pinboard-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Chat rate limits, per-IP. History reads: 30 req/min, burst 20. Sends:
// 20 req/min, burst 10. History allows rapid thread switching without 429s
// while still blocking scraping; sends stay under what a human can type.

const (
	chatHistoryRPS        = 0.5 // 30/min
	chatHistoryBurst      = 20
	chatSendRPS           = 0.34 // ~20/min
	chatSendBurst         = 10
	chatCleanupInterval   = 5 * time.Minute
	chatLimiterTTL        = 30 * time.Minute
)

type chatLimiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

var (
	chatEntries   = make(map[string]*chatLimiterEntry)
	chatEntriesMu sync.Mutex
	chatCleanup   bool
)

func getChatLimiter(key string, rps float64, burst int) *rate.Limiter {
	chatEntriesMu.Lock()
	defer chatEntriesMu.Unlock()
	startChatCleanupOnce()

	e, ok := chatEntries[key]
	if !ok {
		e = &chatLimiterEntry{
			limiter: rate.NewLimiter(rate.Limit(rps), burst),
			lastUse: time.Now(),
		}
		chatEntries[key] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startChatCleanupOnce() {
	if chatCleanup {
		return
	}
	chatCleanup = true
	go func() {
		ticker := time.NewTicker(chatCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			chatEntriesMu.Lock()
			now := time.Now()
			for k, e := range chatEntries {
				if now.Sub(e.lastUse) > chatLimiterTTL {
					delete(chatEntries, k)
				}
			}
			chatEntriesMu.Unlock()
		}
	}()
}

// ChatRateLimit applies rate limiting to GET /api/chat/history and
// POST /api/chat/send. Returns 429 with headers when exceeded.
func ChatRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var limiter *rate.Limiter
		var limit int

		ip := clientip.RealClientIP(r)
		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/chat/history"):
			limiter = getChatLimiter("history:"+ip, chatHistoryRPS, chatHistoryBurst)
			limit = chatHistoryBurst
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/chat/send"):
			limiter = getChatLimiter("send:"+ip, chatSendRPS, chatSendBurst)
			limit = chatSendBurst
		default:
			next.ServeHTTP(w, r)
			return
		}

		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many chat requests. Please slow down."}`))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		next.ServeHTTP(w, r)
	})
}
