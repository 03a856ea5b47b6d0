package bus

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBus implements Bus over Redis pub/sub so subscribers on other
// processes see changes too.
type RedisBus struct {
	client *redis.Client
	prefix string
}

// NewRedis builds a bus publishing to channels under prefix.
func NewRedis(client *redis.Client, prefix string) *RedisBus {
	if prefix == "" {
		prefix = "attendverify:changes:"
	}
	return &RedisBus{client: client, prefix: prefix}
}

// Publish sends evt to its topic channel as JSON.
func (b *RedisBus) Publish(ctx context.Context, evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.prefix+evt.Topic, payload).Err()
}

// Subscribe streams events from the topic channel until ctx is done.
func (b *RedisBus) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	sub := b.client.Subscribe(ctx, b.prefix+topic)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					log.Printf("bus: drop malformed event on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
