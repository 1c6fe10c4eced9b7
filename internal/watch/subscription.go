package watch

import (
	"context" // Subscription lifetime
	"fmt"     // Error wrapping
	"sync"    // Cancel once

	"github.com/sirupsen/logrus" // Logging library
)

// FetchFunc loads the current result set of a live query.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Subscription is a live query: an initial Snapshot followed by a fresh
// snapshot on Updates for every change event. The consumer owns Cancel and
// must call it when done.
type Subscription[T any] struct {
	Snapshot []T

	updates chan []T
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Updates delivers snapshots until the subscription is cancelled.
func (s *Subscription[T]) Updates() <-chan []T { return s.updates }

// Cancel tears down the listener and waits for the delivery goroutine to exit.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Subscribe opens a live query on topic. The listener is registered before
// the snapshot is taken so no change between the two is missed.
func Subscribe[T any](ctx context.Context, broker Broker, topic string, fetch FetchFunc[T], logger logrus.FieldLogger) (*Subscription[T], error) {
	listener, err := broker.Listen(ctx, topic) // Listen first
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	snapshot, err := fetch(ctx) // Then take the initial snapshot
	if err != nil {
		_ = listener.Close() // Release the listener on failure
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		Snapshot: snapshot,
		updates:  make(chan []T, 1), // One pending snapshot
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go sub.run(runCtx, listener, fetch, logger.WithField("topic", topic))
	return sub, nil
}

func (s *Subscription[T]) run(ctx context.Context, listener Listener, fetch FetchFunc[T], logger logrus.FieldLogger) {
	defer close(s.done)
	defer close(s.updates)
	defer listener.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-listener.Events():
			if !ok {
				return // Broker closed the listener
			}
			snapshot, err := fetch(ctx) // Re-run the query on every change
			if err != nil {
				if ctx.Err() != nil {
					return // Cancelled mid-fetch
				}
				logger.WithField("error", err.Error()).Warn("Live query refresh failed")
				continue
			}
			select {
			case s.updates <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}
}
