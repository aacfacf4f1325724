// Package events is the in-process event bus between the task machines and
// the observers (metrics, status API, NATS publisher). Delivery is
// asynchronous and ordered per subscriber.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish sends an event to every subscriber of its concrete type.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case LEDChangedEvent:
		event.Publish(b.dispatcher, e)
	case StateResetEvent:
		event.Publish(b.dispatcher, e)
	case HALErrorEvent:
		event.Publish(b.dispatcher, e)
	case TaskStateChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers a typed handler, e.g. func(LEDChangedEvent).
// It returns the unsubscribe function; unknown handler types get a no-op.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LEDChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StateResetEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(HALErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(TaskStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// Close stops the dispatcher and every subscriber goroutine.
func (b *Bus) Close() error {
	return b.dispatcher.Close()
}
