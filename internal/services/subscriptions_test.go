package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAsTime(t *testing.T) {
	ref := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want time.Time
	}{
		{"time.Time", ref, ref},
		{"pointer", &ref, ref},
		{"bson datetime", primitive.NewDateTimeFromTime(ref), ref},
		{"epoch millis int64", ref.UnixMilli(), ref},
		{"epoch millis float64", float64(ref.UnixMilli()), ref},
		{"rfc3339 string", ref.Format(time.RFC3339Nano), ref},
		{"garbage string", "not a time", time.Time{}},
		{"nil", nil, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := asTime(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("asTime(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSortThreadDocs(t *testing.T) {
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	docs := []bson.M{
		{"_id": "old", "last_message_at": base.Add(-time.Hour)},
		{"_id": "newest", "last_message_at": base.Add(time.Hour)},
		{"_id": "missing timestamp"},
		{"_id": "middle", "last_message_at": base},
	}

	sortThreadDocs(docs)

	wantOrder := []string{"newest", "middle", "old", "missing timestamp"}
	for i, want := range wantOrder {
		if docs[i]["_id"] != want {
			t.Errorf("position %d = %v, want %s", i, docs[i]["_id"], want)
		}
	}
}

func TestSubscriptionCancelStopsDelivery(t *testing.T) {
	_, cancelCtx := context.WithCancel(context.Background())
	sub := &subscription{cancelFn: cancelCtx}

	delivered := 0
	sub.deliver(func() { delivered++ })
	if delivered != 1 {
		t.Fatalf("delivered = %d before close, want 1", delivered)
	}

	sub.close()
	sub.deliver(func() { delivered++ })
	if delivered != 1 {
		t.Errorf("delivery after close: delivered = %d, want 1", delivered)
	}

	// close is idempotent
	sub.close()
	sub.close()
}

func TestManagerReplacesSubscriptionPerKey(t *testing.T) {
	m := NewSubscriptionManager()

	_, cancelA := context.WithCancel(context.Background())
	subA := &subscription{cancelFn: cancelA}
	m.register("threads:u1", subA)

	_, cancelB := context.WithCancel(context.Background())
	subB := &subscription{cancelFn: cancelB}
	cancel := m.register("threads:u1", subB)

	// Registering the same key tears down the predecessor.
	deliveredA := false
	subA.deliver(func() { deliveredA = true })
	if deliveredA {
		t.Error("predecessor subscription still delivering after replacement")
	}

	deliveredB := false
	subB.deliver(func() { deliveredB = true })
	if !deliveredB {
		t.Error("active subscription not delivering")
	}

	// Returned cancel is idempotent and stops the active one.
	cancel()
	cancel()
	deliveredB = false
	subB.deliver(func() { deliveredB = true })
	if deliveredB {
		t.Error("subscription delivering after cancel")
	}
}

func TestManagerClose(t *testing.T) {
	m := NewSubscriptionManager()

	var subs []*subscription
	for _, key := range []string{"threads:u1", "posts", "ratings"} {
		_, cancelFn := context.WithCancel(context.Background())
		sub := &subscription{cancelFn: cancelFn}
		subs = append(subs, sub)
		m.register(key, sub)
	}

	m.Close()

	for i, sub := range subs {
		delivered := false
		sub.deliver(func() { delivered = true })
		if delivered {
			t.Errorf("subscription %d delivering after manager Close", i)
		}
	}
}
