// Package bus provides an in-process event bus for turn progress.
// The REPL and the voice bridge subscribe to it to show what the
// assistant is doing while a turn runs.
package bus

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultHistorySize is the number of recent events retained for
// replay.
const DefaultHistorySize = 256

// EventType names a kind of turn event.
type EventType string

const (
	// EventTurnStarted fires when an utterance enters the pipeline.
	EventTurnStarted EventType = "turn.started"
	// EventClassified fires when the classifier has produced directives.
	EventClassified EventType = "turn.classified"
	// EventActionDone fires once per completed action.
	EventActionDone EventType = "turn.action_done"
	// EventAnswered fires when the merged answer is ready.
	EventAnswered EventType = "turn.answered"
	// EventTurnDone fires when the full turn has completed.
	EventTurnDone EventType = "turn.done"
	// EventStatus fires when the assistant's activity changes. Detail
	// is one of "listening", "thinking", "searching", "answering" or
	// "idle".
	EventStatus EventType = "status"
)

// Event is one turn progress notification.
type Event struct {
	Type      EventType
	TurnID    string
	Detail    string
	Timestamp time.Time
}

// SubscriptionID identifies one subscription.
type SubscriptionID string

type subscription struct {
	id        SubscriptionID
	eventType EventType
	handler   func(Event)
}

// Bus is a thread-safe pub/sub hub for turn events. Handlers run on
// the publisher's goroutine; keep them short.
type Bus struct {
	mu         sync.RWMutex
	subs       map[SubscriptionID]*subscription
	subCounter uint64

	historyMu   sync.RWMutex
	history     []Event
	historySize int

	closed atomic.Bool
}

// New creates a Bus with the default history size.
func New() *Bus {
	return NewWithHistory(DefaultHistorySize)
}

// NewWithHistory creates a Bus retaining up to historySize events.
func NewWithHistory(historySize int) *Bus {
	return &Bus{
		subs:        make(map[SubscriptionID]*subscription),
		history:     make([]Event, 0, historySize),
		historySize: historySize,
	}
}

// Subscribe registers a handler for an event type. EventType("")
// subscribes to all events.
func (b *Bus) Subscribe(eventType EventType, handler func(Event)) SubscriptionID {
	if b.closed.Load() {
		return ""
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subCounter++
	id := SubscriptionID(fmt.Sprintf("sub_%d", b.subCounter))
	b.subs[id] = &subscription{id: id, eventType: eventType, handler: handler}
	return id
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Publish delivers an event to matching subscribers and records it in
// history.
func (b *Bus) Publish(eventType EventType, turnID, detail string) {
	if b.closed.Load() {
		return
	}

	event := Event{
		Type:      eventType,
		TurnID:    turnID,
		Detail:    detail,
		Timestamp: time.Now(),
	}

	b.historyMu.Lock()
	if len(b.history) >= b.historySize {
		b.history = b.history[1:]
	}
	b.history = append(b.history, event)
	b.historyMu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.eventType == "" || sub.eventType == eventType {
			sub.handler(event)
		}
	}
}

// History returns a copy of the retained events, oldest first.
func (b *Bus) History() []Event {
	b.historyMu.RLock()
	defer b.historyMu.RUnlock()
	out := make([]Event, len(b.history))
	copy(out, b.history)
	return out
}

// Close stops the bus; further publishes and subscribes are ignored.
func (b *Bus) Close() {
	b.closed.Store(true)
}
