package events

import (
	"context"
	"errors"
	"sync"
)

// EventHandler consumes a single event. Handlers run on the publisher's
// goroutine, so they should stay short; anything slow belongs behind the
// notification worker queue.
type EventHandler func(context.Context, Event) error

// Dispatcher routes lifecycle events (registration, verification, task
// changes) from the services to their subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type memoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a synchronous, process-local Dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &memoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish delivers the event to every subscriber of its type, in
// subscription order. A failing handler does not stop delivery to the
// rest; the collected errors come back joined.
func (d *memoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler(nil), d.listeners[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *memoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
