// Package analytics implements the write-only event sink the landing page
// pushes interaction events to (CTA clicks, form outcomes). Events are held
// in a bounded in-memory queue for an external reporter to drain; when the
// queue is full the oldest events are dropped.
package analytics

import (
	"sync"
	"time"
)

// Event is a structured analytics event.
type Event struct {
	Name      string                 `json:"event"`
	Timestamp string                 `json:"timestamp"` // ISO-8601 / RFC 3339
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Sink receives analytics events. Implementations must not block.
type Sink interface {
	Track(name string, metadata map[string]interface{})
}

// Queue is a bounded FIFO Sink.
type Queue struct {
	mu       sync.Mutex
	events   []Event
	capacity int
	dropped  int
	now      func() time.Time
}

// DefaultCapacity bounds the queue when no capacity is given.
const DefaultCapacity = 256

// NewQueue creates a bounded event queue. A non-positive capacity falls back
// to DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Queue{
		capacity: capacity,
		now:      time.Now,
	}
}

// Track appends an event, dropping the oldest event when full.
func (q *Queue) Track(name string, metadata map[string]interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= q.capacity {
		q.events = q.events[1:]
		q.dropped++
	}

	q.events = append(q.events, Event{
		Name:      name,
		Timestamp: q.now().UTC().Format(time.RFC3339),
		Metadata:  metadata,
	})
}

// Drain removes and returns all queued events in arrival order.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.events
	q.events = nil

	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.events)
}

// Dropped returns how many events were discarded due to overflow.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.dropped
}

// SetClock overrides the time source. Intended for tests.
func (q *Queue) SetClock(now func() time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = now
}

// NopSink discards all events.
type NopSink struct{}

// Track implements Sink.
func (NopSink) Track(name string, metadata map[string]interface{}) {}
