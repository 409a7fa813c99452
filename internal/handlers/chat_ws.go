package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"github.com/AnshRaj112/pinboard-backend/internal/services"
	"github.com/gorilla/websocket"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// wsClientMessage represents messages coming from the frontend over WebSocket.
type wsClientMessage struct {
	Type         string `json:"type"`   // "subscribe", "unsubscribe", "send", "read", "typing_start", "typing_stop", "ping"
	Target       string `json:"target"` // "threads", "messages", "posts", "notifications", "ratings"
	ThreadID     string `json:"thread_id,omitempty"`
	PostID       string `json:"post_id,omitempty"`
	ResponderUID string `json:"responder_uid,omitempty"`
	Content      string `json:"content,omitempty"`
}

// ChatWebSocket carries every live view a client session holds open over one
// connection. The client subscribes to named targets and receives complete
// snapshots whenever the underlying data changes; sends, reads and typing
// indicators ride the same connection.
//
// Authentication reuses the session token (Authorization header or `token`
// query parameter for browser clients).
func ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}
	uid := userID.String()

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	manager := services.NewSubscriptionManager()

	// Outbound frames. Callbacks push full snapshots; when the buffer is
	// full the frame is dropped, the next snapshot supersedes it anyway.
	out := make(chan interface{}, 64)
	send := func(frame interface{}) {
		select {
		case out <- frame:
		default:
		}
	}

	defer func() {
		// Close first: the delivery guard inside each subscription means no
		// callback can run once Close returns, so closing out is safe.
		manager.Close()
		close(out)
	}()

	go func() {
		for frame := range out {
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}()

	// Cancel functions for subscriptions opened by this connection.
	var subMu sync.Mutex
	cancels := make(map[string]services.CancelFunc)
	storeCancel := func(key string, c services.CancelFunc) {
		subMu.Lock()
		if prev, ok := cancels[key]; ok {
			prev()
		}
		cancels[key] = c
		subMu.Unlock()
	}
	dropCancel := func(key string) {
		subMu.Lock()
		if c, ok := cancels[key]; ok {
			c()
			delete(cancels, key)
		}
		subMu.Unlock()
	}

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	ctx := context.Background()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "subscribe":
			handleSubscribe(ctx, manager, uid, msg, send, storeCancel)
		case "unsubscribe":
			if msg.Target == "messages" {
				dropCancel("messages:" + msg.ThreadID)
				dropCancel("events:" + msg.ThreadID)
			} else {
				dropCancel(msg.Target)
			}
		case "send":
			handleWSSend(ctx, uid, msg, send)
		case "read":
			if msg.ThreadID != "" {
				services.MarkThreadRead(ctx, msg.ThreadID, uid)
			}
		case "typing_start", "typing_stop":
			if msg.ThreadID != "" {
				_ = services.PublishTyping(ctx, msg.ThreadID, uid, msg.Type == "typing_start")
			}
		case "ping":
			send(map[string]interface{}{"type": "pong"})
		default:
			// Ignore unknown types
		}
	}
}

// handleSubscribe opens the requested live view. Each snapshot frame carries
// the full current state of that view.
func handleSubscribe(ctx context.Context, manager *services.SubscriptionManager, uid string, msg wsClientMessage, send func(interface{}), storeCancel func(string, services.CancelFunc)) {
	switch msg.Target {
	case "threads":
		cancel := manager.SubscribeThreads(uid, func(threads []models.Thread) {
			views := make([]map[string]interface{}, 0, len(threads))
			for i := range threads {
				t := threads[i]
				views = append(views, map[string]interface{}{
					"thread": t,
					"unread": services.IsUnreadFor(&t, uid),
				})
			}
			send(map[string]interface{}{"type": "threads", "threads": views})
		})
		storeCancel("threads", cancel)

	case "messages":
		if msg.ThreadID == "" {
			send(map[string]interface{}{"type": "error", "message": "thread_id is required"})
			return
		}
		// Participants only. A thread that does not exist yet still gets an
		// empty snapshot so the client can render a fresh conversation view.
		thread, err := services.GetThread(ctx, msg.ThreadID)
		if err == nil && !thread.HasParticipant(uid) {
			send(map[string]interface{}{"type": "error", "message": "you are not a participant of this conversation"})
			return
		}
		threadID := msg.ThreadID
		cancel := manager.SubscribeMessages(threadID, func(msgs []models.Message) {
			send(map[string]interface{}{"type": "messages", "thread_id": threadID, "messages": msgs})
		})
		storeCancel("messages:"+threadID, cancel)

		// Forward typing indicators for the open thread.
		evCancel := manager.SubscribeThreadEvents(threadID, func(evt services.ChatEvent) {
			if (evt.Type == services.EventTypeTypingStart || evt.Type == services.EventTypeTypingStop) && evt.SenderUID != uid {
				send(evt)
			}
		})
		storeCancel("events:"+threadID, evCancel)

	case "posts":
		cancel := manager.SubscribePosts(func(posts []models.Post) {
			send(map[string]interface{}{"type": "posts", "posts": posts})
		})
		storeCancel("posts", cancel)

	case "notifications":
		cancel := manager.SubscribeNotifications(uid, func(notifs []models.Notification) {
			send(map[string]interface{}{"type": "notifications", "notifications": notifs})
		})
		storeCancel("notifications", cancel)

	case "ratings":
		cancel := manager.SubscribeRatings(func(ratings []models.Rating) {
			send(map[string]interface{}{"type": "ratings", "ratings": ratings})
		})
		storeCancel("ratings", cancel)

	default:
		send(map[string]interface{}{"type": "error", "message": "unknown subscription target"})
	}
}

// handleWSSend commits a message sent over the socket. Failures are echoed
// back with the submitted content so the client can restore its composer.
func handleWSSend(ctx context.Context, uid string, msg wsClientMessage, send func(interface{})) {
	fail := func(message string) {
		send(map[string]interface{}{
			"type":    "error",
			"message": message,
			"content": msg.Content,
		})
	}

	ident, err := services.ResolveThreadIdentity(ctx, msg.PostID, uid, msg.ResponderUID)
	if err != nil {
		fail(err.Error())
		return
	}

	other := ident.OwnerUID
	if uid == ident.OwnerUID {
		other = ident.ResponderUID
	}
	if services.IsBlockedEitherWay(ctx, uid, other) {
		fail("You cannot message this user")
		return
	}

	now := time.Now().UTC()
	userDoc, docErr := services.GetUserDoc(ctx, uid)
	if docErr == nil {
		thread, threadErr := services.GetThread(ctx, ident.ThreadID)
		if threadErr != nil {
			thread = nil
		}
		if thread == nil && !services.CanStartThread(userDoc, now) {
			fail("Your account is restricted from starting new conversations")
			return
		}
		if !services.CanSendInThread(userDoc, thread, now) {
			fail("Your account is currently suspended")
			return
		}
	}

	email := ""
	if userDoc != nil {
		email = userDoc.Email
	}

	messageID, err := services.SendMessage(ctx, ident, uid, email, msg.Content)
	if err != nil {
		fail(err.Error())
		return
	}

	send(map[string]interface{}{
		"type":       "ack",
		"message_id": messageID,
		"thread_id":  ident.ThreadID,
	})
}
