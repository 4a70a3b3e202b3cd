package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"brandscope_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	Value string
}

func (testEvent) EventName() string { return "test.event" }

func TestPublishSyncRunsAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var calls int
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, e Event) error {
		calls++
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, e Event) error {
		calls++
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPublishSyncReturnsHandlerError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	want := errors.New("handler broke")
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return want
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); !errors.Is(err, want) {
		t.Errorf("PublishSync error = %v, want %v", err, want)
	}
}

func TestAsyncPublishSwallowsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		defer wg.Done()
		return errors.New("handler broke")
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestAsyncPublishSurvivesCancelledCaller(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	ran := make(chan struct{})
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, _ Event) error {
		if ctx.Err() != nil {
			t.Error("handler context must outlive the publisher's")
		}
		close(ran)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent()})
	cancel()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Errorf("PublishSync with no subscribers: %v", err)
	}
}
