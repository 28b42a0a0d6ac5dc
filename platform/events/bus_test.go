package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncDeliversToSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var got []string
	bus.Subscribe("a", HandlerFunc(func(_ context.Context, _ Event) error {
		got = append(got, "first")
		return nil
	}))
	bus.Subscribe("a", HandlerFunc(func(_ context.Context, _ Event) error {
		got = append(got, "second")
		return nil
	}))
	bus.Subscribe("b", HandlerFunc(func(_ context.Context, _ Event) error {
		t.Fatal("handler for unrelated event must not run")
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("expected both handlers to run in order, got %v", got)
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	boom := errors.New("boom")
	bus.Subscribe("a", HandlerFunc(func(_ context.Context, _ Event) error { return boom }))
	bus.Subscribe("a", HandlerFunc(func(_ context.Context, _ Event) error { return nil }))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "a"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain handler failure, got %v", err)
	}
}

func TestPublishIsAsynchronous(t *testing.T) {
	bus := NewInMemoryBus(nil)

	done := make(chan struct{})
	bus.Subscribe("a", HandlerFunc(func(_ context.Context, _ Event) error {
		close(done)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "a"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler never ran")
	}
}
