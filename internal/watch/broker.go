package watch

import (
	"context" // Broker calls take a context
	"sync"    // Guards the listener registry
)

// Kind describes what happened to a document.
type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// Event announces a change to one document of a collection.
type Event struct {
	Collection string `json:"collection"`
	UID        string `json:"uid"`
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
}

// Topic names the channel carrying changes of one owner's collection.
func Topic(collection string, uid string) string {
	return "ledger:" + collection + ":" + uid
}

// Broker fans change events out to listeners.
type Broker interface {
	Publish(ctx context.Context, topic string, event Event) error
	Listen(ctx context.Context, topic string) (Listener, error)
}

// Listener receives the events of one topic until closed.
type Listener interface {
	Events() <-chan Event
	Close() error
}

const listenerBuffer = 16 // Events queued per listener before dropping

// MemoryBroker is a Broker for a single process.
type MemoryBroker struct {
	mu        sync.Mutex
	listeners map[string]map[*memoryListener]struct{}
}

// NewMemoryBroker returns an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{listeners: make(map[string]map[*memoryListener]struct{})}
}

// Publish delivers event to every listener of topic. A listener whose buffer
// is full misses the event; it still refetches on the events it does get.
func (b *MemoryBroker) Publish(_ context.Context, topic string, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for listener := range b.listeners[topic] {
		select {
		case listener.events <- event: // Delivered
		default: // Full buffer, never block the publisher
		}
	}
	return nil
}

// Listen registers a listener on topic.
func (b *MemoryBroker) Listen(_ context.Context, topic string) (Listener, error) {
	listener := &memoryListener{broker: b, topic: topic, events: make(chan Event, listenerBuffer)}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners[topic] == nil {
		b.listeners[topic] = make(map[*memoryListener]struct{})
	}
	b.listeners[topic][listener] = struct{}{}
	return listener, nil
}

func (b *MemoryBroker) remove(listener *memoryListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.listeners[listener.topic]
	if _, ok := set[listener]; !ok {
		return // Already closed
	}
	delete(set, listener)
	if len(set) == 0 {
		delete(b.listeners, listener.topic)
	}
	close(listener.events) // Ends the subscriber's range loop
}

// ListenerCount reports the number of open listeners on topic.
func (b *MemoryBroker) ListenerCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[topic])
}

type memoryListener struct {
	broker *MemoryBroker
	topic  string
	events chan Event
}

func (l *memoryListener) Events() <-chan Event { return l.events }

func (l *memoryListener) Close() error {
	l.broker.remove(l)
	return nil
}
