package forms

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/conneroisu/pagekit/internal/accessibility"
	"github.com/conneroisu/pagekit/internal/analytics"
	pkerrors "github.com/conneroisu/pagekit/internal/errors"
	"github.com/conneroisu/pagekit/internal/logging"
)

// FieldSpec describes one named form field. Required is explicit schema
// data; it is never inferred from the field kind.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema describes one form: its ordered fields and the designated honeypot
// field name. The honeypot is not part of Fields and is excluded from
// validation, collection, and state tracking.
type Schema struct {
	ID       string
	Fields   []FieldSpec
	Honeypot string
}

// Field returns the spec for a named field.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return FieldSpec{}, false
}

// DefaultGradeTokens returns the grade selection values accepted by the
// contact form: kindergarten plus grades 1 through 12, in both the bare
// ("k", "5") and labeled ("grade-5") spellings used by the page markup.
func DefaultGradeTokens() []string {
	tokens := []string{"k", "kindergarten"}
	for i := 1; i <= 12; i++ {
		tokens = append(tokens, strconv.Itoa(i), "grade-"+strconv.Itoa(i))
	}

	return tokens
}

// DefaultContactSchema is the landing page's contact form: name, email,
// phone (optional), grade, and message, with a hidden honeypot field.
func DefaultContactSchema() Schema {
	return Schema{
		ID: "contact",
		Fields: []FieldSpec{
			{Name: "name", Kind: KindName, Required: true},
			{Name: "email", Kind: KindEmail, Required: true},
			{Name: "phone", Kind: KindPhone, Required: false},
			{Name: "grade", Kind: KindGrade, Required: true},
			{Name: "message", Kind: KindMessage, Required: true},
		},
		Honeypot: "website",
	}
}

// Default orchestration timing.
const (
	DefaultDebounceDelay = 500 * time.Millisecond
	DefaultSubmitTimeout = 10 * time.Second
	DefaultSuccessNotice = 5 * time.Second
)

// Fallback notice copy.
const (
	defaultSuccessMessage = "Thanks! We received your message and will be in touch soon."
	defaultFailureMessage = "We couldn't send your message. Please try again."
)

// FormOptions configures a Form. Zero values fall back to defaults: a nop
// presenter/sink/logger, the stub submitter, a fresh live region, and the
// default timings.
type FormOptions struct {
	Presenter   Presenter
	Submitter   Submitter
	Analytics   analytics.Sink
	Logger      logging.Logger
	LiveRegion  *accessibility.LiveRegion
	GradeTokens []string

	DebounceDelay time.Duration
	SubmitTimeout time.Duration
	SuccessNotice time.Duration

	// UserAgent tags collected submissions with the client identity.
	UserAgent string

	// Clock overrides the submission timestamp source. Intended for tests.
	Clock func() time.Time
}

// Form orchestrates validators and field state for one form instance and
// drives the submission lifecycle. All state is owned by the instance, so
// multiple independent forms can coexist on one page.
type Form struct {
	schema    Schema
	validator *Validator
	state     *StateTracker
	debouncer *Debouncer

	presenter Presenter
	submitter Submitter
	sink      analytics.Sink
	logger    logging.Logger
	region    *accessibility.LiveRegion

	submitTimeout time.Duration
	successNotice time.Duration
	userAgent     string
	now           func() time.Time

	// submitting is true for at most one in-flight submission; concurrent
	// submit attempts while true are rejected without side effects.
	submitting atomic.Bool
}

// NewForm creates a Form for the given schema.
func NewForm(schema Schema, opts FormOptions) *Form {
	if opts.Presenter == nil {
		opts.Presenter = NopPresenter{}
	}
	if opts.Submitter == nil {
		opts.Submitter = NewStubSubmitter()
	}
	if opts.Analytics == nil {
		opts.Analytics = analytics.NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}
	if opts.LiveRegion == nil {
		opts.LiveRegion = accessibility.NewLiveRegion()
	}
	if len(opts.GradeTokens) == 0 {
		opts.GradeTokens = DefaultGradeTokens()
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.SuccessNotice <= 0 {
		opts.SuccessNotice = DefaultSuccessNotice
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	f := &Form{
		schema:        schema,
		validator:     NewValidator(opts.GradeTokens),
		state:         NewStateTracker(),
		debouncer:     NewDebouncer(opts.DebounceDelay),
		presenter:     opts.Presenter,
		submitter:     opts.Submitter,
		sink:          opts.Analytics,
		logger:        opts.Logger.WithComponent("forms"),
		region:        opts.LiveRegion,
		submitTimeout: opts.SubmitTimeout,
		successNotice: opts.SuccessNotice,
		userAgent:     opts.UserAgent,
		now:           opts.Clock,
	}

	for _, field := range schema.Fields {
		f.state.Init(field.Name)
	}

	return f
}

// guard converts a panic in an entry point into a logged error so a single
// misbehaving handler disables that feature, not the page.
func (f *Form) guard(entry string) {
	if r := recover(); r != nil {
		f.logger.Error(context.Background(),
			fmt.Errorf("panic: %v", r),
			"form entry point failed",
			"entry", entry,
			"form_id", f.schema.ID,
		)
	}
}

// HandleBlur validates a field immediately and marks it touched. Errors
// become visible on blur.
func (f *Form) HandleBlur(field, raw string) ValidationResult {
	defer f.guard("handle_blur")

	spec, ok := f.schema.Field(field)
	if !ok {
		return ValidationResult{IsValid: true, Value: Sanitize(raw)}
	}

	f.debouncer.Cancel(field)
	result := f.validator.Validate(spec.Kind, raw, spec.Required)
	f.state.Touch(field)
	f.state.Record(field, result)
	f.present(field)

	return result
}

// HandleInput marks a field dirty and, if the field was previously touched,
// schedules a debounced re-validation so errors clear while the user fixes
// them without validating every keystroke.
func (f *Form) HandleInput(field, raw string) {
	defer f.guard("handle_input")

	spec, ok := f.schema.Field(field)
	if !ok {
		return
	}

	f.state.MarkDirty(field)

	state := f.state.Get(field)
	if state == nil || !state.Touched {
		return
	}

	f.debouncer.Trigger(field, func() {
		defer f.guard("debounced_validate")

		result := f.validator.Validate(spec.Kind, raw, spec.Required)
		f.state.Record(field, result)
		f.present(field)
	})
}

// ValidateAll validates every schema field in order against values and
// surfaces the outcomes. The returned collection is empty when the form is
// valid.
func (f *Form) ValidateAll(values map[string]string) *pkerrors.ValidationErrors {
	var ve pkerrors.ValidationErrors

	for _, spec := range f.schema.Fields {
		result := f.validator.Validate(spec.Kind, values[spec.Name], spec.Required)
		f.state.Touch(spec.Name)
		f.state.Record(spec.Name, result)
		f.present(spec.Name)

		if !result.IsValid {
			ve.Add(spec.Name, result.Error)
		}
	}

	return &ve
}

// Collect gathers the sanitized, normalized values of all schema fields into
// a submission payload tagged with the submission timestamp and user agent.
// The honeypot field is never collected.
func (f *Form) Collect(values map[string]string) Submission {
	fields := make(map[string]string, len(f.schema.Fields))
	for _, spec := range f.schema.Fields {
		fields[spec.Name] = f.validator.Validate(spec.Kind, values[spec.Name], spec.Required).Value
	}

	return Submission{
		FormID:      f.schema.ID,
		Fields:      fields,
		SubmittedAt: f.now(),
		UserAgent:   f.userAgent,
	}
}

// Submit drives the submission lifecycle: honeypot check, full-form
// validation, then the guarded external call. The submitting flag and the
// busy state are always restored, on every exit path.
func (f *Form) Submit(ctx context.Context, values map[string]string) (result *SubmitResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pkerrors.NewInternalError(pkerrors.ErrCodeValidationInternal,
				"form submission failed unexpectedly", fmt.Errorf("panic: %v", r))
			f.logger.Error(ctx, err, "form entry point failed",
				"entry", "submit", "form_id", f.schema.ID)
		}
	}()

	// Honeypot check runs first: bots are rejected silently, with no
	// presenter side effects and no submission call.
	if f.schema.Honeypot != "" && Sanitize(values[f.schema.Honeypot]) != "" {
		f.logger.Debug(ctx, "honeypot triggered, dropping submission", "form_id", f.schema.ID)
		f.sink.Track("form_spam_blocked", map[string]interface{}{"form_id": f.schema.ID})

		return nil, pkerrors.NewSpamError(f.schema.ID)
	}

	if ve := f.ValidateAll(values); ve.HasErrors() {
		f.presenter.FocusField(ve.First())
		f.sink.Track("form_validation_failed", map[string]interface{}{
			"form_id": f.schema.ID,
			"fields":  len(ve.Errors),
		})

		return nil, ve.ToPageError()
	}

	if !f.submitting.CompareAndSwap(false, true) {
		return nil, &pkerrors.PageError{
			Type:    pkerrors.ErrorTypeSubmission,
			Code:    pkerrors.ErrCodeSubmitInFlight,
			Message: "a submission is already in flight",
		}
	}
	defer f.submitting.Store(false)

	f.presenter.SetSubmitting(true)
	defer f.presenter.SetSubmitting(false)

	f.sink.Track("form_submit_attempt", map[string]interface{}{"form_id": f.schema.ID})

	submission := f.Collect(values)

	submitCtx := ctx
	if f.submitTimeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, f.submitTimeout)
		defer cancel()
	}

	reply, submitErr := f.submitter.Submit(submitCtx, submission)
	if submitErr != nil || reply == nil || !reply.Success {
		return nil, f.handleFailure(ctx, reply, submitErr)
	}

	f.handleSuccess(ctx, reply)

	return reply, nil
}

// IsSubmitting reports whether a submission is in flight.
func (f *Form) IsSubmitting() bool {
	return f.submitting.Load()
}

// State returns a copy of a field's tracked state, or nil for unknown
// fields.
func (f *Form) State(field string) *FieldState {
	return f.state.Get(field)
}

// Schema returns the form's schema.
func (f *Form) Schema() Schema {
	return f.schema
}

// Reset returns the form to its pristine visual state: field errors, touched
// and dirty tracking, pending debounced validations, and notices are all
// cleared.
func (f *Form) Reset() {
	f.debouncer.CancelAll()
	f.state.ResetAll()
	for _, field := range f.schema.Fields {
		f.state.Init(field.Name)
		f.presenter.ClearFieldError(field.Name)
	}
	f.presenter.ClearNotice()
	f.presenter.ResetForm()
	f.region.Clear()
}

func (f *Form) handleSuccess(ctx context.Context, reply *SubmitResult) {
	message := reply.Message
	if message == "" {
		message = defaultSuccessMessage
	}

	f.Reset()
	f.presenter.ShowNotice(Notice{
		Kind:        NoticeSuccess,
		Message:     message,
		AutoDismiss: f.successNotice,
	})
	f.region.Announce(message, accessibility.Polite, f.successNotice)
	f.sink.Track("form_submit_success", map[string]interface{}{"form_id": f.schema.ID})
	f.logger.Info(ctx, "form submitted", "form_id", f.schema.ID)
}

func (f *Form) handleFailure(ctx context.Context, reply *SubmitResult, cause error) error {
	code := pkerrors.ErrCodeSubmissionFailed
	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		code = pkerrors.ErrCodeNetworkError
	}

	message := defaultFailureMessage
	if reply != nil && reply.Message != "" {
		message = reply.Message
	}

	// Error notices persist until the visitor acts, and interrupt the
	// screen reader.
	f.presenter.ShowNotice(Notice{Kind: NoticeError, Message: message})
	f.region.Announce(message, accessibility.Assertive, 0)
	f.sink.Track("form_submit_error", map[string]interface{}{
		"form_id": f.schema.ID,
		"code":    code,
	})

	err := pkerrors.NewSubmissionError(code, message, cause)
	f.logger.Warn(ctx, err, "form submission failed", "form_id", f.schema.ID)

	return err
}

// present pushes a field's current error visibility to the presenter and the
// live region.
func (f *Form) present(field string) {
	if f.state.ShouldShowError(field) {
		state := f.state.Get(field)
		f.presenter.ShowFieldError(field, state.Error)
		f.region.SetFieldInvalid(field, true)

		return
	}

	f.presenter.ClearFieldError(field)
	f.region.SetFieldInvalid(field, false)
}
