// Package jobs runs agent code-generation jobs on a bounded worker pool and
// tracks their lifecycle in the database. Submission is non-blocking: a full
// queue fails the job instead of stalling the request path.
package jobs

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one progress update published while a job runs. Terminal is set
// on the final event for a job, after which the topic is closed.
type Event struct {
	JobID       uuid.UUID `json:"job_id"`
	Status      string    `json:"status"`
	CurrentStep string    `json:"current_step"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	Terminal    bool      `json:"terminal"`
}

// subscriberBuffer bounds how far a slow consumer can lag before updates
// are dropped for it.
const subscriberBuffer = 16

type topic struct {
	subs    map[chan Event]struct{}
	last    Event
	hasLast bool
	closed  bool
}

// Broker fans progress events out to stream subscribers, keyed by job ID.
// Topics are in-process only; a restart loses live subscriptions but not the
// durable job record.
type Broker struct {
	mu     sync.Mutex
	topics map[uuid.UUID]*topic
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{topics: make(map[uuid.UUID]*topic)}
}

// Subscribe registers for a job's progress events and returns the channel
// plus a cancel function. If the job already produced events, the most
// recent one is replayed immediately so late subscribers see current state.
// Subscribing to a finished job yields a closed channel after the replay.
func (b *Broker) Subscribe(jobID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	t, ok := b.topics[jobID]
	if !ok {
		t = &topic{subs: make(map[chan Event]struct{})}
		b.topics[jobID] = t
	}
	if t.hasLast {
		ch <- t.last
	}
	if t.closed {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	t.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, still := t.subs[ch]; still {
			delete(t.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers an event to all subscribers of the job. Slow subscribers
// have the event dropped rather than blocking the worker. A terminal event
// closes the topic.
func (b *Broker) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[event.JobID]
	if !ok {
		t = &topic{subs: make(map[chan Event]struct{})}
		b.topics[event.JobID] = t
	}
	if t.closed {
		return
	}
	t.last = event
	t.hasLast = true

	for ch := range t.subs {
		select {
		case ch <- event:
		default:
		}
	}

	if event.Terminal {
		for ch := range t.subs {
			close(ch)
		}
		t.subs = make(map[chan Event]struct{})
		t.closed = true
	}
}

// Last returns the most recent event for a job, if any. Used by the job
// fetch path to overlay live progress on the durable record, which only
// sees the two lifecycle writes.
func (b *Broker) Last(jobID uuid.UUID) (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.topics[jobID]
	if !ok || !t.hasLast {
		return Event{}, false
	}
	return t.last, true
}

// Forget drops a finished job's topic so the broker does not grow without
// bound. Remaining subscriber channels are closed; a subscriber's cancel
// after Forget is a no-op. Safe to call for unknown IDs.
func (b *Broker) Forget(jobID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.topics[jobID]
	if !ok {
		return
	}
	for ch := range t.subs {
		close(ch)
	}
	t.subs = make(map[chan Event]struct{})
	t.closed = true
	delete(b.topics, jobID)
}
