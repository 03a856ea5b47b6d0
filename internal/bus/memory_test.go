package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusFiltersByTopic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemory()
	s1, err := b.Subscribe(ctx, SessionTopic("s1"))
	require.NoError(t, err)
	s2, err := b.Subscribe(ctx, SessionTopic("s2"))
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, Event{Topic: SessionTopic("s1"), Kind: KindAttendance, EntityID: "r1", Change: "marked"}))

	select {
	case evt := <-s1:
		assert.Equal(t, "r1", evt.EntityID)
		assert.False(t, evt.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("subscriber on matching topic got nothing")
	}

	select {
	case evt := <-s2:
		t.Fatalf("subscriber on other topic received %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBusFanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemory()
	var subs []<-chan Event
	for i := 0; i < 3; i++ {
		ch, err := b.Subscribe(ctx, RegistrationTopic("a@b.edu"))
		require.NoError(t, err)
		subs = append(subs, ch)
	}

	require.NoError(t, b.Publish(ctx, Event{Topic: RegistrationTopic("a@b.edu"), Kind: KindRegistration, EntityID: "reg1", Change: "approved"}))

	for i, ch := range subs {
		select {
		case evt := <-ch:
			assert.Equal(t, "approved", evt.Change, "subscriber %d", i)
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d got nothing", i)
		}
	}
}

func TestMemoryBusUnsubscribeOnCancel(t *testing.T) {
	b := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, SessionTopic("s1"))
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(time.Second):
		t.Fatal("channel did not close")
	}

	// Publishing afterwards must not panic or deliver.
	require.NoError(t, b.Publish(context.Background(), Event{Topic: SessionTopic("s1"), EntityID: "x"}))
}

func TestMemoryBusSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemory()
	_, err := b.Subscribe(ctx, SessionTopic("s1"))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = b.Publish(ctx, Event{Topic: SessionTopic("s1"), EntityID: "x"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
