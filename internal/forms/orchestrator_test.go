package forms

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pagekit/internal/accessibility"
	"github.com/conneroisu/pagekit/internal/analytics"
	pkerrors "github.com/conneroisu/pagekit/internal/errors"
)

// recordingPresenter captures every presentation call for assertions.
type recordingPresenter struct {
	mu          sync.Mutex
	fieldErrors map[string]string
	busy        []bool
	notices     []Notice
	focused     []string
	resets      int
	clearedN    int
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{fieldErrors: make(map[string]string)}
}

func (p *recordingPresenter) ShowFieldError(field, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fieldErrors[field] = message
}

func (p *recordingPresenter) ClearFieldError(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.fieldErrors, field)
}

func (p *recordingPresenter) SetSubmitting(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = append(p.busy, busy)
}

func (p *recordingPresenter) ShowNotice(notice Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, notice)
}

func (p *recordingPresenter) ClearNotice() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearedN++
}

func (p *recordingPresenter) FocusField(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused = append(p.focused, field)
}

func (p *recordingPresenter) ResetForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets++
}

func (p *recordingPresenter) errorFor(field string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg, ok := p.fieldErrors[field]
	return msg, ok
}

func (p *recordingPresenter) snapshot() ([]bool, []Notice, []string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.busy...), append([]Notice(nil), p.notices...),
		append([]string(nil), p.focused...), p.resets
}

// fakeSubmitter counts calls and replies with a canned result.
type fakeSubmitter struct {
	calls  atomic.Int32
	last   Submission
	mu     sync.Mutex
	result *SubmitResult
	err    error
	block  chan struct{} // when non-nil, Submit waits for close or ctx
}

func (s *fakeSubmitter) Submit(ctx context.Context, submission Submission) (*SubmitResult, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.last = submission
	s.mu.Unlock()

	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}

	return &SubmitResult{Success: true}, nil
}

func (s *fakeSubmitter) lastSubmission() Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func validContactValues() map[string]string {
	return map[string]string{
		"name":    "Jordan Lee",
		"email":   "jordan@example.com",
		"phone":   "4155551234",
		"grade":   "grade-5",
		"message": "We are interested in your curriculum.",
		"website": "",
	}
}

func TestSubmitSuccessScenario(t *testing.T) {
	presenter := newRecordingPresenter()
	submitter := &fakeSubmitter{result: &SubmitResult{Success: true, Message: "Got it!"}}
	sink := analytics.NewQueue(16)
	region := accessibility.NewLiveRegion()
	submitted := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter:  presenter,
		Submitter:  submitter,
		Analytics:  sink,
		LiveRegion: region,
		UserAgent:  "pagekit-test/1.0",
		Clock:      func() time.Time { return submitted },
	})

	result, err := form.Submit(context.Background(), validContactValues())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)

	// Exactly one call to the endpoint, with sanitized, normalized values.
	assert.Equal(t, int32(1), submitter.calls.Load())
	sub := submitter.lastSubmission()
	assert.Equal(t, "contact", sub.FormID)
	assert.Equal(t, "jordan@example.com", sub.Fields["email"])
	assert.Equal(t, "(415) 555-1234", sub.Fields["phone"])
	assert.Equal(t, "grade-5", sub.Fields["grade"])
	assert.Equal(t, submitted, sub.SubmittedAt)
	assert.Equal(t, "pagekit-test/1.0", sub.UserAgent)
	assert.NotContains(t, sub.Fields, "website", "honeypot is never collected")

	busy, notices, _, resets := presenter.snapshot()
	assert.Equal(t, []bool{true, false}, busy)
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeSuccess, notices[0].Kind)
	assert.Equal(t, "Got it!", notices[0].Message)
	assert.Equal(t, DefaultSuccessNotice, notices[0].AutoDismiss)
	assert.GreaterOrEqual(t, resets, 1, "form visual state cleared after success")

	// Field tracking was reset.
	state := form.State("name")
	require.NotNil(t, state)
	assert.False(t, state.Touched)

	// Polite announcement for assistive technology.
	announcements := region.Active()
	require.Len(t, announcements, 1)
	assert.Equal(t, accessibility.Polite, announcements[0].Politeness)

	names := eventNames(sink.Drain())
	assert.Contains(t, names, "form_submit_attempt")
	assert.Contains(t, names, "form_submit_success")
	assert.False(t, form.IsSubmitting())
}

func TestSubmitInvalidFormScenario(t *testing.T) {
	presenter := newRecordingPresenter()
	submitter := &fakeSubmitter{}

	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter: presenter,
		Submitter: submitter,
	})

	values := map[string]string{
		"name":    "J",
		"email":   "bad-email",
		"phone":   "",
		"grade":   "5",
		"message": "short",
	}

	result, err := form.Submit(context.Background(), values)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, pkerrors.IsUserVisible(err))

	assert.Equal(t, int32(0), submitter.calls.Load(), "invalid forms never reach the endpoint")

	// Errors reported for name, email, and message; phone and grade pass.
	_, hasName := presenter.errorFor("name")
	_, hasEmail := presenter.errorFor("email")
	_, hasMessage := presenter.errorFor("message")
	_, hasPhone := presenter.errorFor("phone")
	_, hasGrade := presenter.errorFor("grade")
	assert.True(t, hasName)
	assert.True(t, hasEmail)
	assert.True(t, hasMessage)
	assert.False(t, hasPhone)
	assert.False(t, hasGrade)

	// Focus lands on the first invalid field in schema order.
	busy, notices, focused, _ := presenter.snapshot()
	require.Len(t, focused, 1)
	assert.Equal(t, "name", focused[0])
	assert.Empty(t, busy, "no busy state for a blocked submission")
	assert.Empty(t, notices)
}

func TestHoneypotRejectsSilently(t *testing.T) {
	presenter := newRecordingPresenter()
	submitter := &fakeSubmitter{}
	sink := analytics.NewQueue(16)

	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter: presenter,
		Submitter: submitter,
		Analytics: sink,
	})

	values := validContactValues()
	values["website"] = "http://spam.example"

	result, err := form.Submit(context.Background(), values)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, pkerrors.IsSpam(err))
	assert.False(t, pkerrors.IsUserVisible(err))

	// No submission call and no visible UI changes of any kind.
	assert.Equal(t, int32(0), submitter.calls.Load())
	busy, notices, focused, resets := presenter.snapshot()
	assert.Empty(t, busy)
	assert.Empty(t, notices)
	assert.Empty(t, focused)
	assert.Zero(t, resets)

	assert.Contains(t, eventNames(sink.Drain()), "form_spam_blocked")
}

func TestHoneypotWinsOverInvalidFields(t *testing.T) {
	presenter := newRecordingPresenter()
	form := NewForm(DefaultContactSchema(), FormOptions{Presenter: presenter})

	_, err := form.Submit(context.Background(), map[string]string{
		"name":    "J",
		"website": "bot was here",
	})

	require.Error(t, err)
	assert.True(t, pkerrors.IsSpam(err))
	_, hasName := presenter.errorFor("name")
	assert.False(t, hasName, "validation must not run on spam submissions")
}

func TestSubmitMutualExclusion(t *testing.T) {
	presenter := newRecordingPresenter()
	submitter := &fakeSubmitter{block: make(chan struct{})}

	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter: presenter,
		Submitter: submitter,
	})

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background(), validContactValues())
		done <- err
	}()

	require.Eventually(t, func() bool { return form.IsSubmitting() },
		time.Second, time.Millisecond)

	// Second submit while in flight: rejected, no second endpoint call.
	result, err := form.Submit(context.Background(), validContactValues())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &pkerrors.PageError{
		Type: pkerrors.ErrorTypeSubmission,
		Code: pkerrors.ErrCodeSubmitInFlight,
	}))
	assert.Equal(t, int32(1), submitter.calls.Load())

	close(submitter.block)
	require.NoError(t, <-done)
	assert.False(t, form.IsSubmitting())

	// Busy toggled exactly once on and once off.
	busy, _, _, _ := presenter.snapshot()
	assert.Equal(t, []bool{true, false}, busy)
}

func TestSubmitTimeoutBecomesNetworkError(t *testing.T) {
	presenter := newRecordingPresenter()
	region := accessibility.NewLiveRegion()
	submitter := &fakeSubmitter{block: make(chan struct{})} // never released

	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter:     presenter,
		Submitter:     submitter,
		LiveRegion:    region,
		SubmitTimeout: 20 * time.Millisecond,
	})

	result, err := form.Submit(context.Background(), validContactValues())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &pkerrors.PageError{
		Type: pkerrors.ErrorTypeSubmission,
		Code: pkerrors.ErrCodeNetworkError,
	}))

	// Persistent error notice, announced assertively.
	busy, notices, _, _ := presenter.snapshot()
	assert.Equal(t, []bool{true, false}, busy, "busy state restored after failure")
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Kind)
	assert.Zero(t, notices[0].AutoDismiss)

	announcements := region.Active()
	require.Len(t, announcements, 1)
	assert.Equal(t, accessibility.Assertive, announcements[0].Politeness)
	assert.False(t, form.IsSubmitting())
}

func TestSubmitServerRejection(t *testing.T) {
	presenter := newRecordingPresenter()
	submitter := &fakeSubmitter{result: &SubmitResult{Success: false, Message: "Mailbox full."}}

	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter: presenter,
		Submitter: submitter,
	})

	_, err := form.Submit(context.Background(), validContactValues())
	require.Error(t, err)
	assert.True(t, errors.Is(err, &pkerrors.PageError{
		Type: pkerrors.ErrorTypeSubmission,
		Code: pkerrors.ErrCodeSubmissionFailed,
	}))

	_, notices, _, _ := presenter.snapshot()
	require.Len(t, notices, 1)
	assert.Equal(t, "Mailbox full.", notices[0].Message)
}

func TestSubmitterPanicIsRecovered(t *testing.T) {
	form := NewForm(DefaultContactSchema(), FormOptions{
		Submitter: panickySubmitter{},
	})

	result, err := form.Submit(context.Background(), validContactValues())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.False(t, pkerrors.IsUserVisible(err))
	assert.False(t, form.IsSubmitting(), "submitting flag restored even on panic")
}

type panickySubmitter struct{}

func (panickySubmitter) Submit(ctx context.Context, submission Submission) (*SubmitResult, error) {
	panic("endpoint exploded")
}

func TestHandleBlurShowsAndClearsErrors(t *testing.T) {
	presenter := newRecordingPresenter()
	region := accessibility.NewLiveRegion()
	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter:  presenter,
		LiveRegion: region,
	})

	res := form.HandleBlur("email", "not-an-email")
	assert.False(t, res.IsValid)

	msg, ok := presenter.errorFor("email")
	require.True(t, ok)
	assert.NotEmpty(t, msg)
	assert.True(t, region.FieldInvalid("email"))

	res = form.HandleBlur("email", "User@Example.COM")
	assert.True(t, res.IsValid)
	assert.Equal(t, "user@example.com", res.Value)

	_, ok = presenter.errorFor("email")
	assert.False(t, ok)
	assert.False(t, region.FieldInvalid("email"))
}

func TestHandleInputDebouncesAfterTouch(t *testing.T) {
	presenter := newRecordingPresenter()
	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter:     presenter,
		DebounceDelay: 15 * time.Millisecond,
	})

	// Untouched field: typing does not validate.
	form.HandleInput("email", "bad")
	time.Sleep(40 * time.Millisecond)
	_, ok := presenter.errorFor("email")
	assert.False(t, ok)

	// Touch via blur, then type a correction: error clears after the
	// quiet period without another blur.
	form.HandleBlur("email", "bad")
	_, ok = presenter.errorFor("email")
	require.True(t, ok)

	form.HandleInput("email", "jordan@example.com")
	assert.Eventually(t, func() bool {
		_, stillShown := presenter.errorFor("email")
		return !stillShown
	}, time.Second, 5*time.Millisecond)

	state := form.State("email")
	require.NotNil(t, state)
	assert.True(t, state.Dirty)
	assert.True(t, state.Valid)
}

func TestHandleBlurUnknownFieldIsHarmless(t *testing.T) {
	form := NewForm(DefaultContactSchema(), FormOptions{})

	res := form.HandleBlur("nonexistent", "  value  ")
	assert.True(t, res.IsValid)
	assert.Equal(t, "value", res.Value)
	assert.Nil(t, form.State("nonexistent"))
}

func TestResetClearsVisualState(t *testing.T) {
	presenter := newRecordingPresenter()
	region := accessibility.NewLiveRegion()
	form := NewForm(DefaultContactSchema(), FormOptions{
		Presenter:  presenter,
		LiveRegion: region,
	})

	form.HandleBlur("email", "bad")
	require.True(t, region.FieldInvalid("email"))

	form.Reset()

	_, ok := presenter.errorFor("email")
	assert.False(t, ok)
	assert.False(t, region.FieldInvalid("email"))
	state := form.State("email")
	require.NotNil(t, state)
	assert.False(t, state.Touched)
}

func eventNames(events []analytics.Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}
