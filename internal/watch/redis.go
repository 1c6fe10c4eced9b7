package watch

import (
	"context"       // Redis calls take a context
	"encoding/json" // Event payloads
	"fmt"           // Error wrapping
	"sync"          // Close once

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// RedisBroker is a Broker on Redis pub/sub, shared by every server instance.
type RedisBroker struct {
	client *redis.Client
	logger logrus.FieldLogger
}

// NewRedisBroker wraps a Redis client.
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client, logger: logrus.StandardLogger()}
}

// Publish sends event as JSON on topic.
func (b *RedisBroker) Publish(ctx context.Context, topic string, event Event) error {
	payload, err := json.Marshal(event) // Encode event as JSON
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Listen subscribes to topic and waits for Redis to confirm the subscription.
func (b *RedisBroker) Listen(ctx context.Context, topic string) (Listener, error) {
	pubsub := b.client.Subscribe(ctx, topic) // Subscribe to the topic
	// Wait for the confirmation so no event published after Listen is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	listener := &redisListener{pubsub: pubsub, events: make(chan Event, listenerBuffer)}
	go listener.run(b.logger.WithField("topic", topic))
	return listener, nil
}

type redisListener struct {
	pubsub *redis.PubSub
	events chan Event
	once   sync.Once
}

func (l *redisListener) run(logger logrus.FieldLogger) {
	defer close(l.events)
	// Channel is closed by pubsub.Close.
	for msg := range l.pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			logger.WithField("error", err.Error()).Warn("Dropping malformed change event")
			continue
		}
		select {
		case l.events <- event: // Delivered
		default: // Full buffer, drop
		}
	}
}

func (l *redisListener) Events() <-chan Event { return l.events }

func (l *redisListener) Close() error {
	var err error
	l.once.Do(func() { err = l.pubsub.Close() })
	return err
}
