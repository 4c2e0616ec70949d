package forms

import (
	"context"
	"time"
)

// Submission is the payload handed to the submission endpoint: the sanitized
// non-honeypot field values tagged with a timestamp and the client user
// agent.
type Submission struct {
	FormID      string            `json:"form_id"`
	Fields      map[string]string `json:"fields"`
	SubmittedAt time.Time         `json:"submitted_at"`
	UserAgent   string            `json:"user_agent,omitempty"`
}

// SubmitResult is the submission endpoint's reply.
type SubmitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Submitter delivers a submission to the external endpoint. Implementations
// must honor ctx cancellation.
type Submitter interface {
	Submit(ctx context.Context, submission Submission) (*SubmitResult, error)
}

// StubSubmitter simulates the submission endpoint: it succeeds after a fixed
// artificial delay. There is no real backend behind the landing page yet.
type StubSubmitter struct {
	Delay   time.Duration
	Message string
}

// NewStubSubmitter creates a stub with the reference behavior's delay.
func NewStubSubmitter() *StubSubmitter {
	return &StubSubmitter{
		Delay:   1500 * time.Millisecond,
		Message: "Thanks! We received your message and will be in touch soon.",
	}
}

// Submit implements Submitter.
func (s *StubSubmitter) Submit(ctx context.Context, submission Submission) (*SubmitResult, error) {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return &SubmitResult{Success: true, Message: s.Message}, nil
}
