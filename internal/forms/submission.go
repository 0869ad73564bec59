package forms

// Status tags a SubmissionResult.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// ErrorMap groups validation failures by field, preserving both the order in
// which fields first failed and the order of messages within a field.
// FormErrors holds failures not attributable to a single field.
type ErrorMap struct {
	fieldOrder  []string
	fieldErrors map[string][]string
	formErrors  []string
}

// NewErrorMap returns an empty ErrorMap.
func NewErrorMap() *ErrorMap {
	return &ErrorMap{fieldErrors: make(map[string][]string)}
}

// AddField appends a message to the named field's error list.
func (m *ErrorMap) AddField(field, message string) {
	if _, seen := m.fieldErrors[field]; !seen {
		m.fieldOrder = append(m.fieldOrder, field)
	}
	m.fieldErrors[field] = append(m.fieldErrors[field], message)
}

// AddForm appends a form-wide message.
func (m *ErrorMap) AddForm(message string) {
	m.formErrors = append(m.formErrors, message)
}

// HasErrors reports whether any field or form error was recorded.
func (m *ErrorMap) HasErrors() bool {
	return len(m.fieldErrors) > 0 || len(m.formErrors) > 0
}

// Field returns the messages recorded for one field.
func (m *ErrorMap) Field(name string) []string {
	return m.fieldErrors[name]
}

// Fields returns field names in the order they first failed.
func (m *ErrorMap) Fields() []string {
	return m.fieldOrder
}

// FieldErrors returns the field error mapping for serialization.
func (m *ErrorMap) FieldErrors() map[string][]string {
	return m.fieldErrors
}

// FormErrors returns the form-wide error list.
func (m *ErrorMap) FormErrors() []string {
	return m.formErrors
}

// SubmissionErrors is the wire shape of an ErrorMap.
type SubmissionErrors struct {
	FieldErrors map[string][]string `json:"fieldErrors"`
	FormErrors  []string            `json:"formErrors"`
}

// SubmissionResult is the tagged outcome of one submission attempt. Exactly
// one of Errors/Value is meaningful depending on Status; Raw echoes the
// submitted field values so a failed form can be re-populated.
type SubmissionResult[T any] struct {
	Status Status            `json:"status"`
	Errors *SubmissionErrors `json:"errors,omitempty"`
	Value  *T                `json:"-"`
	Raw    map[string]string `json:"raw,omitempty"`
}

// Idle returns a result for a submission that was not actually attempted.
func Idle[T any]() SubmissionResult[T] {
	return SubmissionResult[T]{Status: StatusIdle}
}

// Failure wraps an ErrorMap into an error-status result.
func Failure[T any](errs *ErrorMap, raw map[string]string) SubmissionResult[T] {
	return SubmissionResult[T]{
		Status: StatusError,
		Errors: &SubmissionErrors{
			FieldErrors: errs.FieldErrors(),
			FormErrors:  errs.FormErrors(),
		},
		Raw: raw,
	}
}

// Success wraps a validated value into a success-status result.
func Success[T any](value T) SubmissionResult[T] {
	return SubmissionResult[T]{Status: StatusSuccess, Value: &value}
}
