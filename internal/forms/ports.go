package forms

import "time"

// NoticeKind distinguishes the form-level banner styles.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a form-level banner. A zero AutoDismiss keeps the notice until
// it is explicitly cleared; error notices are persistent by contract.
type Notice struct {
	Kind        NoticeKind
	Message     string
	AutoDismiss time.Duration
}

// Presenter is the presentation port the orchestrator drives. A UI adapter
// binds it to real elements (error text, classes, the submit control); tests
// bind it to a recorder. Implementations must not call back into the Form.
type Presenter interface {
	ShowFieldError(field, message string)
	ClearFieldError(field string)
	SetSubmitting(busy bool)
	ShowNotice(notice Notice)
	ClearNotice()
	FocusField(field string)
	ResetForm()
}

// NopPresenter discards all presentation calls.
type NopPresenter struct{}

func (NopPresenter) ShowFieldError(field, message string) {}
func (NopPresenter) ClearFieldError(field string)         {}
func (NopPresenter) SetSubmitting(busy bool)              {}
func (NopPresenter) ShowNotice(notice Notice)             {}
func (NopPresenter) ClearNotice()                         {}
func (NopPresenter) FocusField(field string)              {}
func (NopPresenter) ResetForm()                           {}
