package forms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind discriminates which validation rules apply to a field.
type Kind string

const (
	KindText    Kind = "text"
	KindName    Kind = "name"
	KindEmail   Kind = "email"
	KindPhone   Kind = "tel"
	KindMessage Kind = "textarea"
	KindGrade   Kind = "select"
)

// ValidationResult is the verdict of a single validator run. Value always
// holds the sanitized input, valid or not. Error is empty exactly when
// IsValid is true.
type ValidationResult struct {
	IsValid bool
	Error   string
	Value   string
}

// Field length bounds.
const (
	NameMinLen    = 2
	NameMaxLen    = 100
	MessageMinLen = 10
	MessageMaxLen = 1000

	emailLocalMaxLen  = 64
	emailDomainMaxLen = 255

	phoneMinDigits = 10
	phoneMaxDigits = 15
)

// User-facing validation messages.
const (
	msgRequired        = "This field is required."
	msgNameTooShort    = "Name must be at least 2 characters."
	msgNameTooLong     = "Name must be 100 characters or fewer."
	msgEmailInvalid    = "Please enter a valid email address."
	msgPhoneInvalid    = "Please enter a valid phone number."
	msgMessageTooShort = "Message must be at least 10 characters."
	msgMessageTooLong  = "Message must be 1000 characters or fewer."
	msgGradeInvalid    = "Please select a valid grade."
	msgGeneric         = "Please check this field and try again."
)

// emailPattern is a conservative RFC-5322-like shape: one @, a dotted domain
// with alphanumeric-edged labels, no whitespace. Part lengths are checked
// separately.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`,
)

// phonePattern limits phone input to digits, spaces, hyphens, and
// parentheses.
var phonePattern = regexp.MustCompile(`^[0-9()\- ]+$`)

// Validator applies the per-kind validation rules. The grade token set is
// configurable because different pages enumerate grades differently.
type Validator struct {
	gradeTokens map[string]struct{}
}

// NewValidator creates a Validator accepting the given grade tokens.
func NewValidator(gradeTokens []string) *Validator {
	tokens := make(map[string]struct{}, len(gradeTokens))
	for _, t := range gradeTokens {
		tokens[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	return &Validator{gradeTokens: tokens}
}

// Validate sanitizes raw input and applies the rules for kind. A validator
// must never escape a failure to the caller: panics are recovered and
// degraded to a generic invalid result.
func (v *Validator) Validate(kind Kind, raw string, required bool) (result ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ValidationResult{
				IsValid: false,
				Error:   msgGeneric,
				Value:   "",
			}
		}
	}()

	value := Sanitize(raw)
	if kind == KindMessage {
		value = SanitizeMessage(raw)
	}

	if value == "" {
		if required {
			return invalid(value, msgRequired)
		}

		return valid(value)
	}

	switch kind {
	case KindName:
		return v.validateName(value)
	case KindEmail:
		return v.validateEmail(value)
	case KindPhone:
		return v.validatePhone(value)
	case KindMessage:
		return v.validateMessage(value)
	case KindGrade:
		return v.validateGrade(value)
	default:
		// Unrecognized kinds get the required-only check above.
		return valid(value)
	}
}

func (v *Validator) validateName(value string) ValidationResult {
	length := utf8.RuneCountInString(value)
	if length < NameMinLen {
		return invalid(value, msgNameTooShort)
	}
	if length > NameMaxLen {
		return invalid(value, msgNameTooLong)
	}

	return valid(value)
}

func (v *Validator) validateEmail(value string) ValidationResult {
	if !emailPattern.MatchString(value) {
		return invalid(value, msgEmailInvalid)
	}

	at := strings.LastIndex(value, "@")
	local, domain := value[:at], value[at+1:]
	if len(local) > emailLocalMaxLen || len(domain) > emailDomainMaxLen {
		return invalid(value, msgEmailInvalid)
	}

	return valid(strings.ToLower(value))
}

func (v *Validator) validatePhone(value string) ValidationResult {
	if !phonePattern.MatchString(value) {
		return invalid(value, msgPhoneInvalid)
	}

	digits := digitsOnly(value)
	if len(digits) < phoneMinDigits || len(digits) > phoneMaxDigits {
		return invalid(value, msgPhoneInvalid)
	}

	if len(digits) == 10 || (len(digits) == 11 && digits[0] == '1') {
		return valid(FormatPhone(digits))
	}

	// Other digit counts pass through as typed.
	return valid(value)
}

func (v *Validator) validateMessage(value string) ValidationResult {
	length := utf8.RuneCountInString(value)
	if length < MessageMinLen {
		return invalid(value, msgMessageTooShort)
	}
	if length > MessageMaxLen {
		return invalid(value, msgMessageTooLong)
	}

	return valid(value)
}

func (v *Validator) validateGrade(value string) ValidationResult {
	token := strings.ToLower(value)
	if _, ok := v.gradeTokens[token]; !ok {
		return invalid(value, msgGradeInvalid)
	}

	return valid(token)
}

// FormatPhone renders a digit string in the conventional display grouping:
// "(415) 555-1234" for 10 digits, "1 (415) 555-1234" for 11 digits with a
// leading 1. Other lengths pass through unchanged, so formatting an already
// formatted number is idempotent.
func FormatPhone(digits string) string {
	switch {
	case len(digits) == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	case len(digits) == 11 && digits[0] == '1':
		return "1 " + FormatPhone(digits[1:])
	default:
		return digits
	}
}

func digitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func valid(value string) ValidationResult {
	return ValidationResult{IsValid: true, Value: value}
}

func invalid(value, message string) ValidationResult {
	return ValidationResult{IsValid: false, Error: message, Value: value}
}
