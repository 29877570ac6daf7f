package messaging

import (
	"context"
	"testing"
	"time"

	"agora/internal/shared/events"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	err := bus.Subscribe(ctx, "poll.created", "test-consumer", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	want := events.Envelope{EventID: "evt-1", EventType: "poll.created.v1"}
	if err := bus.Publish(ctx, "poll.created", want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != want.EventID || got.EventType != want.EventType {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	case <-time.After(time.Second):
		t.Fatalf("event was not delivered")
	}
}

func TestBusIgnoresUnrelatedTopics(t *testing.T) {
	bus := NewBus(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	if err := bus.Subscribe(ctx, "vote.cast", "test-consumer", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "poll.deleted", events.Envelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		t.Fatalf("unexpected delivery: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus(1, nil)

	// Register a raw channel without a draining goroutine so the buffer
	// stays full after the first publish.
	ch := make(chan events.Envelope, 1)
	bus.mu.Lock()
	bus.subscribers["poll.created"] = append(bus.subscribers["poll.created"], ch)
	bus.mu.Unlock()

	ctx := context.Background()
	if err := bus.Publish(ctx, "poll.created", events.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := bus.Publish(ctx, "poll.created", events.Envelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("second publish should drop, not fail: %v", err)
	}

	got := <-ch
	if got.EventID != "evt-1" {
		t.Fatalf("expected evt-1 retained, got %s", got.EventID)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected evt-2 dropped, got %+v", extra)
	default:
	}
}
