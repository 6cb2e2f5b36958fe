package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field limits, counted in characters.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 255
	MaxMessageLength = 5000
)

// Kind classifies why a submission was rejected.
type Kind string

const (
	KindMissingFields  Kind = "missing_fields"
	KindInvalidName    Kind = "invalid_name"
	KindInvalidEmail   Kind = "invalid_email"
	KindInvalidMessage Kind = "invalid_message"
)

var kindMessages = map[Kind]string{
	KindMissingFields:  "Missing required fields",
	KindInvalidName:    "Invalid name",
	KindInvalidEmail:   "Invalid email address",
	KindInvalidMessage: "Invalid message",
}

// ValidationError is returned for any submission the visitor must correct.
// Its Error text is safe to show to the visitor.
type ValidationError struct {
	Kind  Kind
	Field string
}

func (e *ValidationError) Error() string {
	return kindMessages[e.Kind]
}

// ErrMalformedBody is returned when the payload is not a JSON object.
var ErrMalformedBody = errors.New("malformed request body")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type fieldRule struct {
	name string
	tag  string
	kind Kind
}

// Checked in order; the first failing field decides the error.
var fieldRules = []fieldRule{
	{name: "name", tag: fmt.Sprintf("notblank,max=%d", MaxNameLength), kind: KindInvalidName},
	{name: "email", tag: fmt.Sprintf("max=%d,contactemail", MaxEmailLength), kind: KindInvalidEmail},
	{name: "message", tag: fmt.Sprintf("notblank,max=%d", MaxMessageLength), kind: KindInvalidMessage},
}

// Submission is a contact form payload that passed validation. Values are
// trimmed of surrounding whitespace.
type Submission struct {
	Name    string
	Email   string
	Message string
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validator checks raw contact payloads.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: newValidator()}
}

// DecodeJSON parses body and validates it.
func (v *Validator) DecodeJSON(body []byte) (Submission, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return Submission{}, ErrMalformedBody
	}
	return v.Validate(raw)
}

// DecodeForm validates an HTML form post.
func (v *Validator) DecodeForm(form url.Values) (Submission, error) {
	raw := make(map[string]any, len(fieldRules))
	for _, rule := range fieldRules {
		if form.Has(rule.name) {
			raw[rule.name] = form.Get(rule.name)
		}
	}
	return v.Validate(raw)
}

// Validate checks presence of all fields first, then each field's type and
// content in name, email, message order.
func (v *Validator) Validate(raw map[string]any) (Submission, error) {
	for _, rule := range fieldRules {
		if isAbsent(raw[rule.name]) {
			return Submission{}, &ValidationError{Kind: KindMissingFields, Field: rule.name}
		}
	}

	values := make(map[string]string, len(fieldRules))
	for _, rule := range fieldRules {
		s, ok := raw[rule.name].(string)
		if !ok {
			return Submission{}, &ValidationError{Kind: rule.kind, Field: rule.name}
		}
		if err := v.validate.Var(s, rule.tag); err != nil {
			return Submission{}, &ValidationError{Kind: rule.kind, Field: rule.name}
		}
		values[rule.name] = strings.TrimSpace(s)
	}

	return Submission{
		Name:    values["name"],
		Email:   values["email"],
		Message: values["message"],
	}, nil
}

// isAbsent treats null, false, zero and the empty string as not provided.
func isAbsent(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	default:
		return false
	}
}
