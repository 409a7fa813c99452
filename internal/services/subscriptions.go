package services

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
	"github.com/AnshRaj112/pinboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CancelFunc tears down a live subscription. Safe to call any number of
// times; after the first call no further snapshots reach the callback.
type CancelFunc func()

// SubscriptionManager owns the live views a single client session holds
// open: the post board, the user's thread list, one open thread's messages,
// notifications, and the global ratings feed. Exactly one subscription is
// active per key; re-subscribing a key tears down its predecessor, and
// Close tears down everything.
//
// Delivery model: each subscription listens on a Redis Pub/Sub channel and
// re-queries MongoDB on every event, pushing a complete re-sorted snapshot.
// Redis only signals "something changed"; MongoDB stays the source of truth,
// so a dropped event costs freshness, never correctness.
type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[string]*subscription
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{subs: make(map[string]*subscription)}
}

type subscription struct {
	mu       sync.Mutex
	closed   bool
	cancelFn context.CancelFunc
}

// deliver invokes fn unless the subscription was cancelled. The lock is held
// across the callback so a teardown racing with a late Redis event can never
// observe a delivery after cancel returns.
func (s *subscription) deliver(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

func (s *subscription) close() {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	s.mu.Unlock()
	if !already {
		s.cancelFn()
	}
}

// register installs a subscription under key, cancelling any predecessor.
func (m *SubscriptionManager) register(key string, sub *subscription) CancelFunc {
	m.mu.Lock()
	if prev, ok := m.subs[key]; ok {
		prev.close()
	}
	m.subs[key] = sub
	m.mu.Unlock()

	return func() {
		sub.close()
		m.mu.Lock()
		if m.subs[key] == sub {
			delete(m.subs, key)
		}
		m.mu.Unlock()
	}
}

// Close cancels every live subscription held by this manager.
func (m *SubscriptionManager) Close() {
	m.mu.Lock()
	subs := make([]*subscription, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.subs = make(map[string]*subscription)
	m.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
}

// asTime coerces the store's various timestamp encodings to time.Time.
// Thread documents written by this process carry real timestamps, but
// snapshots assembled from cached JSON or older writers may carry epoch
// milliseconds or BSON datetimes; sorting must tolerate all of them.
func asTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case primitive.DateTime:
		return t.Time()
	case int64:
		return time.UnixMilli(t)
	case int:
		return time.UnixMilli(int64(t))
	case float64:
		return time.UnixMilli(int64(t))
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// sortThreadDocs orders raw thread documents by last_message_at descending.
// The store gives no ordering guarantee across an OR-combined query, so the
// thread list is re-sorted on every snapshot, never trusted from delivery
// order.
func sortThreadDocs(docs []bson.M) {
	sort.SliceStable(docs, func(i, j int) bool {
		return asTime(docs[i]["last_message_at"]).After(asTime(docs[j]["last_message_at"]))
	})
}

// SubscribeThreads delivers the user's thread list (threads where they are
// owner or responder), re-sorted by last activity on every push.
func (m *SubscriptionManager) SubscribeThreads(uid string, cb func([]models.Thread)) CancelFunc {
	sub := &subscription{}
	query := func(ctx context.Context) {
		threads := fetchThreadsForUser(ctx, uid)
		sub.deliver(func() { cb(threads) })
	}
	return m.runWith(sub, "threads:"+uid, []string{userChannel(uid)}, query)
}

// SubscribeMessages delivers one thread's messages ordered by creation time
// ascending. If the thread does not exist yet, a single empty snapshot is
// delivered and no live query is opened; probing a non-existent resource
// would only churn authorization failures.
func (m *SubscriptionManager) SubscribeMessages(threadID string, cb func([]models.Message)) CancelFunc {
	checkCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := database.DB.Collection("threads").CountDocuments(checkCtx, bson.M{"_id": threadID})
	if err != nil {
		log.Printf("thread existence check failed for %s: %v", threadID, err)
	}
	if err != nil || n == 0 {
		cb(nil)
		return func() {}
	}

	sub := &subscription{}
	query := func(ctx context.Context) {
		msgs := fetchThreadMessages(ctx, threadID)
		sub.deliver(func() { cb(msgs) })
	}
	return m.runWith(sub, "messages:"+threadID, []string{threadChannel(threadID)}, query)
}

// SubscribePosts delivers the public post board.
func (m *SubscriptionManager) SubscribePosts(cb func([]models.Post)) CancelFunc {
	sub := &subscription{}
	query := func(ctx context.Context) {
		posts := fetchPublicPosts(ctx)
		sub.deliver(func() { cb(posts) })
	}
	return m.runWith(sub, "posts", []string{postsChannel}, query)
}

// SubscribeNotifications delivers the user's notification feed.
func (m *SubscriptionManager) SubscribeNotifications(uid string, cb func([]models.Notification)) CancelFunc {
	sub := &subscription{}
	query := func(ctx context.Context) {
		notifs := fetchNotifications(ctx, uid)
		sub.deliver(func() { cb(notifs) })
	}
	return m.runWith(sub, "notifications:"+uid, []string{userChannel(uid)}, query)
}

// SubscribeRatings delivers the global ratings feed.
func (m *SubscriptionManager) SubscribeRatings(cb func([]models.Rating)) CancelFunc {
	sub := &subscription{}
	query := func(ctx context.Context) {
		ratings := fetchRatings(ctx)
		sub.deliver(func() { cb(ratings) })
	}
	return m.runWith(sub, "ratings", []string{ratingsChannel}, query)
}

// SubscribeThreadEvents forwards the raw events of one thread channel.
// Snapshot subscriptions swallow events and re-query; this one exists for
// ephemeral signals (typing indicators) that have no store-backed snapshot.
func (m *SubscriptionManager) SubscribeThreadEvents(threadID string, cb func(ChatEvent)) CancelFunc {
	sub := &subscription{}
	ctx, cancel := context.WithCancel(context.Background())
	sub.cancelFn = cancel
	cancelFunc := m.register("events:"+threadID, sub)

	go func() {
		if database.RedisClient == nil {
			return
		}
		pubsub := database.RedisClient.Subscribe(ctx, threadChannel(threadID))
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt ChatEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					continue
				}
				sub.deliver(func() { cb(evt) })
			}
		}
	}()

	return cancelFunc
}

// runWith is run with an externally created subscription so queries can use
// its delivery guard.
func (m *SubscriptionManager) runWith(sub *subscription, key string, channels []string, query func(context.Context)) CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	sub.cancelFn = cancel
	cancelFunc := m.register(key, sub)

	go func() {
		query(ctx)

		if database.RedisClient == nil {
			return
		}
		pubsub := database.RedisClient.Subscribe(ctx, channels...)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				query(ctx)
			}
		}
	}()

	return cancelFunc
}

// --- snapshot queries ---
// Query failures degrade to an empty snapshot plus a logged diagnostic; a
// subscriber is never crashed by a rejected query.

func fetchThreadsForUser(ctx context.Context, uid string) []models.Thread {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := database.DB.Collection("threads").Find(opCtx, bson.M{
		"$or": []bson.M{
			{"owner_uid": uid},
			{"responder_uid": uid},
		},
	})
	if err != nil {
		log.Printf("thread list query failed for %s: %v", uid, err)
		return nil
	}
	defer cur.Close(opCtx)

	var docs []bson.M
	if err := cur.All(opCtx, &docs); err != nil {
		log.Printf("thread list decode failed for %s: %v", uid, err)
		return nil
	}

	sortThreadDocs(docs)

	threads := make([]models.Thread, 0, len(docs))
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			continue
		}
		var t models.Thread
		if err := bson.Unmarshal(raw, &t); err != nil {
			continue
		}
		threads = append(threads, t)
	}
	return threads
}

func fetchThreadMessages(ctx context.Context, threadID string) []models.Message {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := database.DB.Collection("messages").Find(opCtx, bson.M{"thread_id": threadID}, opts)
	if err != nil {
		log.Printf("message query failed for thread %s: %v", threadID, err)
		return nil
	}
	defer cur.Close(opCtx)

	var msgs []models.Message
	if err := cur.All(opCtx, &msgs); err != nil {
		log.Printf("message decode failed for thread %s: %v", threadID, err)
		return nil
	}
	// Sorting is not assumed from delivery order even with a sorted query.
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs
}

func fetchPublicPosts(ctx context.Context) []models.Post {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := database.DB.Collection("posts").Find(opCtx, bson.M{"status": models.PostStatusPublic}, opts)
	if err != nil {
		log.Printf("post board query failed: %v", err)
		return nil
	}
	defer cur.Close(opCtx)

	var posts []models.Post
	if err := cur.All(opCtx, &posts); err != nil {
		log.Printf("post board decode failed: %v", err)
		return nil
	}
	return posts
}

func fetchNotifications(ctx context.Context, uid string) []models.Notification {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100)
	cur, err := database.DB.Collection("notifications").Find(opCtx, bson.M{"target_uid": uid}, opts)
	if err != nil {
		log.Printf("notification query failed for %s: %v", uid, err)
		return nil
	}
	defer cur.Close(opCtx)

	var notifs []models.Notification
	if err := cur.All(opCtx, &notifs); err != nil {
		log.Printf("notification decode failed for %s: %v", uid, err)
		return nil
	}
	return notifs
}

func fetchRatings(ctx context.Context) []models.Rating {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(200)
	cur, err := database.DB.Collection("ratings").Find(opCtx, bson.M{}, opts)
	if err != nil {
		log.Printf("ratings query failed: %v", err)
		return nil
	}
	defer cur.Close(opCtx)

	var ratings []models.Rating
	if err := cur.All(opCtx, &ratings); err != nil {
		log.Printf("ratings decode failed: %v", err)
		return nil
	}
	return ratings
}
