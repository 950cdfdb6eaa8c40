// Package eventbus provides the in-process event bus that carries domain events
// from the services to the presenter and the MPRIS adapter.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// ErrClosed is returned by Close when the bus was already closed.
var ErrClosed = errors.New("event bus already closed")

// frequent events are delivered without debug logging; they fire many times per second.
var frequent = map[domain.EventType]bool{
	domain.EventTrackProgress: true,
	domain.EventScanProgress:  true,
}

// SyncEventBus delivers events synchronously on the publishing goroutine,
// in subscription order, type-specific handlers first and wildcard handlers after.
//
// Thread-safety: publishing and (un)subscribing may happen concurrently.
// Handlers run without the bus lock held, so they may publish or subscribe themselves.
type SyncEventBus struct {
	logger *slog.Logger

	mu             sync.RWMutex
	subscribers    map[domain.EventType][]subscription
	allSubscribers []subscription
	closed         bool

	idCounter atomic.Uint64
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus. A nil logger disables logging.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	return &SyncEventBus{
		logger:      logger,
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// Publish delivers event to every handler subscribed to its type and then to
// every wildcard handler. A panicking handler is logged and skipped.
// Publishing on a closed bus does nothing.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	typed := bus.subscribers[event.Type()]
	targets := make([]subscription, 0, len(typed)+len(bus.allSubscribers))
	targets = append(targets, typed...)
	targets = append(targets, bus.allSubscribers...)
	bus.mu.RUnlock()

	if bus.logger != nil && !frequent[event.Type()] {
		bus.logger.Debug("event published",
			slog.String("event_type", string(event.Type())),
			slog.Int("handlers", len(targets)))
	}

	for _, sub := range targets {
		bus.deliver(sub, event)
	}
}

func (bus *SyncEventBus) deliver(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && bus.logger != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()
	sub.handler(event)
}

// Subscribe registers handler for events of eventType and returns its id.
// Subscribing to a closed bus returns an empty id and the handler is never called.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		bus.warnClosed(string(eventType))
		return ""
	}

	sub := subscription{id: bus.nextID("sub"), handler: handler}
	bus.subscribers[eventType] = append(bus.subscribers[eventType], sub)
	return sub.id
}

// SubscribeAll registers handler for every event type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		bus.warnClosed("*")
		return ""
	}

	sub := subscription{id: bus.nextID("sub-all"), handler: handler}
	bus.allSubscribers = append(bus.allSubscribers, sub)
	return sub.id
}

func (bus *SyncEventBus) nextID(prefix string) domain.SubscriptionID {
	return domain.SubscriptionID(fmt.Sprintf("%s-%d", prefix, bus.idCounter.Add(1)))
}

func (bus *SyncEventBus) warnClosed(eventType string) {
	if bus.logger != nil {
		bus.logger.Warn("subscribe on closed event bus ignored", slog.String("event_type", eventType))
	}
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
// Remaining handlers keep their delivery order.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	if id == "" {
		return
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	for eventType, subs := range bus.subscribers {
		if i := indexOf(subs, id); i >= 0 {
			bus.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
	if i := indexOf(bus.allSubscribers, id); i >= 0 {
		bus.allSubscribers = append(bus.allSubscribers[:i:i], bus.allSubscribers[i+1:]...)
	}
}

func indexOf(subs []subscription, id domain.SubscriptionID) int {
	for i := range subs {
		if subs[i].id == id {
			return i
		}
	}
	return -1
}

// HasSubscribers reports whether publishing eventType would reach any handler.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers[eventType]) > 0 || len(bus.allSubscribers) > 0
}

// Close drops every subscription. Later publishes are ignored.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}
	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.allSubscribers = nil
	return nil
}

// SubscriberCount returns the number of live subscriptions, wildcard included.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := len(bus.allSubscribers)
	for _, subs := range bus.subscribers {
		count += len(subs)
	}
	return count
}

var _ ports.EventBus = (*SyncEventBus)(nil)
