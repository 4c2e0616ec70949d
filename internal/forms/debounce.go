package forms

import (
	"sync"
	"time"
)

// Debouncer collapses rapid repeated triggers per key into one callback
// after a quiet period. Each new trigger for a key cancels and reschedules
// that key's pending callback, so a field being typed into validates once,
// after the typing pauses.
type Debouncer struct {
	delay  time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Trigger schedules fn to run after the quiet period, replacing any pending
// callback for the same key. fn runs on a timer goroutine.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}

	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending callback for a key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

// CancelAll drops every pending callback.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Pending reports whether a callback is scheduled for the key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.timers[key]

	return ok
}
