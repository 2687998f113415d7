// Package events provides the synchronous named-topic publish/subscribe hub
// that decouples input handling from the state and workflow services.
package events

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Event is delivered to every handler subscribed to its Topic.
type Event struct {
	Topic   Topic
	Payload interface{}
}

// Handler consumes an event. A returned error is logged and reported to the
// publisher but never stops delivery to the remaining handlers.
type Handler func(Event) error

// Subscription identifies one registered handler.
type Subscription struct {
	bus   *Bus
	topic Topic
	id    uint64
}

// Unsubscribe removes the handler. It is safe to call more than once.
func (s Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.unsubscribe(s.topic, s.id)
	}
}

type entry struct {
	id      uint64
	handler Handler
}

// Bus dispatches events synchronously, in registration order, on the
// publisher's goroutine.
type Bus struct {
	logger   *zap.Logger
	mu       sync.RWMutex
	nextID   uint64
	handlers map[Topic][]entry
}

// NewBus creates an event bus with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		logger:   logger,
		handlers: make(map[Topic][]entry),
	}
}

// Subscribe registers handler for topic.
func (b *Bus) Subscribe(topic Topic, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[topic] = append(b.handlers[topic], entry{id: b.nextID, handler: handler})
	return Subscription{bus: b, topic: topic, id: b.nextID}
}

func (b *Bus) unsubscribe(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.handlers[topic]
	for i, e := range list {
		if e.id == id {
			next := make([]entry, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, topic)
			} else {
				b.handlers[topic] = next
			}
			return
		}
	}
}

// HandlerCount returns the number of handlers registered for topic.
func (b *Bus) HandlerCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}

// Publish delivers payload to every handler of topic. Handlers registered or
// removed during dispatch take effect from the next Publish. Failed handlers,
// including panics, are logged and returned joined.
func (b *Bus) Publish(topic Topic, payload interface{}) error {
	b.mu.RLock()
	handlers := b.handlers[topic]
	b.mu.RUnlock()

	event := Event{Topic: topic, Payload: payload}
	var errs []error
	for _, e := range handlers {
		if err := b.dispatch(e.handler, event); err != nil {
			b.logger.Error("event handler failed",
				zap.String("op", "events.Publish"),
				zap.String("topic", string(topic)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) dispatch(handler Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler for %s panicked: %v", event.Topic, r)
		}
	}()
	return handler(event)
}
