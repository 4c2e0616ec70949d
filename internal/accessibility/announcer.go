// Package accessibility models the assistive-technology side effects of the
// landing page: live-region announcements and per-field invalid markers.
// The form orchestrator drives this package; a UI adapter mirrors its state
// into real aria-live elements and aria-invalid attributes.
package accessibility

import (
	"sync"
	"time"
)

// Politeness represents the aria-live politeness setting of an announcement.
type Politeness string

const (
	// Polite announcements wait for the screen reader to go idle.
	Polite Politeness = "polite"
	// Assertive announcements interrupt the screen reader immediately.
	Assertive Politeness = "assertive"
)

// Announcement is one message pushed to a live region. Announcements with a
// TTL are removed from the active set once the TTL elapses, mirroring the
// transient elements appended to and removed from the page.
type Announcement struct {
	Message    string
	Politeness Politeness
	CreatedAt  time.Time
	TTL        time.Duration // zero means the announcement persists
}

func (a Announcement) expired(now time.Time) bool {
	return a.TTL > 0 && now.Sub(a.CreatedAt) >= a.TTL
}

// LiveRegion models an aria-live container plus the set of fields currently
// marked aria-invalid. All methods are safe for concurrent use.
type LiveRegion struct {
	mu            sync.Mutex
	announcements []Announcement
	invalidFields map[string]bool
	now           func() time.Time
}

// NewLiveRegion creates an empty live region.
func NewLiveRegion() *LiveRegion {
	return &LiveRegion{
		invalidFields: make(map[string]bool),
		now:           time.Now,
	}
}

// Announce pushes a message to the live region. A zero ttl keeps the
// announcement until Clear.
func (r *LiveRegion) Announce(message string, politeness Politeness, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.announcements = append(r.announcements, Announcement{
		Message:    message,
		Politeness: politeness,
		CreatedAt:  r.now(),
		TTL:        ttl,
	})
}

// Active returns announcements that have not yet expired, pruning the rest.
func (r *LiveRegion) Active() []Announcement {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	active := r.announcements[:0]
	for _, a := range r.announcements {
		if !a.expired(now) {
			active = append(active, a)
		}
	}
	r.announcements = active

	out := make([]Announcement, len(active))
	copy(out, active)

	return out
}

// SetFieldInvalid records the aria-invalid state for a field.
func (r *LiveRegion) SetFieldInvalid(field string, invalid bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if invalid {
		r.invalidFields[field] = true
	} else {
		delete(r.invalidFields, field)
	}
}

// FieldInvalid reports whether a field is currently marked aria-invalid.
func (r *LiveRegion) FieldInvalid(field string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.invalidFields[field]
}

// InvalidFields returns the fields currently marked aria-invalid.
func (r *LiveRegion) InvalidFields() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.invalidFields))
	for field := range r.invalidFields {
		out = append(out, field)
	}

	return out
}

// Clear removes all announcements and invalid markers.
func (r *LiveRegion) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.announcements = nil
	r.invalidFields = make(map[string]bool)
}

// SetClock overrides the time source. Intended for tests.
func (r *LiveRegion) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}
