package events

import (
	"context"
	"sync"
)

// EventHandler consumes a published event. A handler error does not stop
// delivery to the remaining handlers.
type EventHandler func(context.Context, Event) error

// Dispatcher publishes domain events to subscribed handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher delivers events synchronously within the process.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates an empty dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish invokes every handler registered for the event's type. The last
// handler error, if any, is returned after all handlers have run.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler(nil), d.listeners[event.Type]...)
	d.mu.RUnlock()

	var lastErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Subscribe registers a handler for an event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
