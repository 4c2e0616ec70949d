package forms

import "sync"

// FieldState is the per-field interaction bookkeeping used to decide when an
// error should be surfaced. Error is non-empty exactly when Valid is false.
type FieldState struct {
	Touched bool
	Dirty   bool
	Valid   bool
	Error   string
}

// StateTracker maintains FieldState per field identifier, independent of any
// UI. Mutations on unknown identifiers are no-ops; reads return nil. All
// methods are safe for concurrent use.
type StateTracker struct {
	mu     sync.Mutex
	fields map[string]*FieldState
}

// NewStateTracker creates an empty tracker.
func NewStateTracker() *StateTracker {
	return &StateTracker{fields: make(map[string]*FieldState)}
}

// Init registers a field. A field starts untouched, clean, and valid.
// Calling Init again for a known field is a no-op.
func (t *StateTracker) Init(field string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.fields[field]; ok {
		return
	}
	t.fields[field] = &FieldState{Valid: true}
}

// Touch marks a field as touched (the user focused and left it).
func (t *StateTracker) Touch(field string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.fields[field]; ok {
		state.Touched = true
	}
}

// MarkDirty marks a field as dirty (the user changed its value).
func (t *StateTracker) MarkDirty(field string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.fields[field]; ok {
		state.Dirty = true
	}
}

// Record stores a validation outcome for a field.
func (t *StateTracker) Record(field string, result ValidationResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.fields[field]
	if !ok {
		return
	}

	state.Valid = result.IsValid
	if result.IsValid {
		state.Error = ""
	} else {
		state.Error = result.Error
	}
}

// Get returns a copy of the field's state, or nil for unknown fields.
func (t *StateTracker) Get(field string) *FieldState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.fields[field]
	if !ok {
		return nil
	}

	copied := *state

	return &copied
}

// ShouldShowError reports whether the field's error should currently be
// displayed: the field must be both touched and invalid.
func (t *StateTracker) ShouldShowError(field string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.fields[field]

	return ok && state.Touched && !state.Valid
}

// Reset returns one field to its initial state.
func (t *StateTracker) Reset(field string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.fields[field]; ok {
		t.fields[field] = &FieldState{Valid: true}
	}
}

// ResetAll discards all field state.
func (t *StateTracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.fields = make(map[string]*FieldState)
}
