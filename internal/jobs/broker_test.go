package jobs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	jobID := uuid.New()

	ch, cancel := b.Subscribe(jobID)
	defer cancel()

	b.Publish(Event{JobID: jobID, Status: "processing", Progress: 20})
	ev := recv(t, ch)
	assert.Equal(t, 20, ev.Progress)
	assert.Equal(t, "processing", ev.Status)
}

func TestBrokerReplaysLastEvent(t *testing.T) {
	b := NewBroker()
	jobID := uuid.New()

	b.Publish(Event{JobID: jobID, Status: "processing", Progress: 60})

	// Late subscriber sees the current state immediately.
	ch, cancel := b.Subscribe(jobID)
	defer cancel()
	ev := recv(t, ch)
	assert.Equal(t, 60, ev.Progress)
}

func TestBrokerTerminalClosesSubscribers(t *testing.T) {
	b := NewBroker()
	jobID := uuid.New()

	ch, cancel := b.Subscribe(jobID)
	defer cancel()

	b.Publish(Event{JobID: jobID, Status: "completed", Progress: 100, Terminal: true})

	ev := recv(t, ch)
	assert.True(t, ev.Terminal)

	_, open := <-ch
	assert.False(t, open, "channel should be closed after terminal event")

	// Subscribing after the terminal event replays it and closes.
	late, lateCancel := b.Subscribe(jobID)
	defer lateCancel()
	ev = recv(t, late)
	assert.True(t, ev.Terminal)
	_, open = <-late
	assert.False(t, open)
}

func TestBrokerLast(t *testing.T) {
	b := NewBroker()
	jobID := uuid.New()

	_, ok := b.Last(jobID)
	assert.False(t, ok)

	b.Publish(Event{JobID: jobID, Status: "processing", Progress: 40})
	ev, ok := b.Last(jobID)
	require.True(t, ok)
	assert.Equal(t, 40, ev.Progress)
}

func TestBrokerSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	jobID := uuid.New()

	ch, cancel := b.Subscribe(jobID)
	defer cancel()

	// Overfill the subscriber buffer; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(Event{JobID: jobID, Status: "processing", Progress: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The buffered prefix is still delivered in order.
	ev := recv(t, ch)
	assert.Equal(t, 0, ev.Progress)
}

func TestBrokerForgetDropsTopic(t *testing.T) {
	b := NewBroker()
	jobID := uuid.New()

	b.Publish(Event{JobID: jobID, Status: "completed", Progress: 100, Terminal: true})
	_, ok := b.Last(jobID)
	require.True(t, ok)

	b.Forget(jobID)
	_, ok = b.Last(jobID)
	assert.False(t, ok, "forgotten topic should have no last event")

	// Unknown IDs are a no-op.
	b.Forget(uuid.New())
}

func TestBrokerCancelAfterForgetDoesNotPanic(t *testing.T) {
	b := NewBroker()
	jobID := uuid.New()

	ch, cancel := b.Subscribe(jobID)
	b.Forget(jobID)

	_, open := <-ch
	assert.False(t, open, "channel should be closed by Forget")

	// The subscriber's own cleanup must not close the channel again.
	assert.NotPanics(t, func() { cancel() })
}
