package bus

import (
	"context"
	"sync"
	"time"
)

// Memory is a channel-backed Bus for dev/testing and single-process runs.
type Memory struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan Event
}

// NewMemory creates an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[int]chan Event)}
}

// Publish delivers evt to current subscribers of its topic. Sends never
// block: a subscriber that cannot keep up drops events and reconciles by
// re-fetching, which the bus contract allows.
func (m *Memory) Publish(ctx context.Context, evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs[evt.Topic] {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

// Subscribe registers a buffered channel for topic until ctx is done.
func (m *Memory) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	ch := make(chan Event, 16)

	m.mu.Lock()
	if m.subs[topic] == nil {
		m.subs[topic] = make(map[int]chan Event)
	}
	id := m.next
	m.next++
	m.subs[topic][id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs[topic], id)
		m.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
