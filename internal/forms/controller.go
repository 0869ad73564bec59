package forms

import "fmt"

// ControllerState tracks one editor form instance across submission
// attempts.
type ControllerState string

const (
	StateIdle           ControllerState = "idle"
	StateSubmitting     ControllerState = "submitting"
	StateIdleWithErrors ControllerState = "idle-with-errors"
)

// FocusTargetForm marks the form container itself as the focus target when
// only form-level errors exist.
const FocusTargetForm = "form"

// Controller is the editor form state machine: idle → submitting → (idle on
// success, idle-with-errors on a validation failure). It also decides which
// field receives focus after an error response. Failed submissions are never
// retried automatically.
type Controller struct {
	state       ControllerState
	focusTarget string
	lastErrors  *SubmissionErrors
}

// NewController returns a controller in the idle state.
func NewController() *Controller {
	return &Controller{state: StateIdle}
}

// State returns the current state.
func (c *Controller) State() ControllerState { return c.state }

// FocusTarget returns the field to focus after the last error response, or
// "" when nothing needs focus.
func (c *Controller) FocusTarget() string { return c.focusTarget }

// Errors returns the error map from the last failed submission.
func (c *Controller) Errors() *SubmissionErrors { return c.lastErrors }

// SubmitDisabled reports whether the submit affordance should be disabled.
// Reset stays available in every state.
func (c *Controller) SubmitDisabled() bool { return c.state == StateSubmitting }

// Submit moves the controller into the submitting state. Submitting while
// already in flight is rejected.
func (c *Controller) Submit() error {
	if c.state == StateSubmitting {
		return fmt.Errorf("submission already in progress")
	}
	c.state = StateSubmitting
	c.focusTarget = ""
	return nil
}

// HandleResult applies the server response. A success tears the controller
// down as the view navigates away; an error computes the focus target over
// the given image fieldset count.
func (c *Controller) HandleResult(result SubmissionResult[NoteDraft], imageCount int) {
	switch result.Status {
	case StatusSuccess:
		c.state = StateIdle
		c.lastErrors = nil
		c.focusTarget = ""
	case StatusError:
		c.state = StateIdleWithErrors
		c.lastErrors = result.Errors
		c.focusTarget = firstInvalidField(result.Errors, imageCount)
	default:
		c.state = StateIdle
	}
}

// Reset discards client-held errors. The caller is expected to re-request
// the current server state so stale client-only errors do not linger.
func (c *Controller) Reset() {
	c.state = StateIdle
	c.lastErrors = nil
	c.focusTarget = ""
}

// firstInvalidField walks the form in document order (title, content, then
// each image's file and alt text) and returns the first field carrying an
// error. With only form-level errors the form container itself is focused.
func firstInvalidField(errs *SubmissionErrors, imageCount int) string {
	if errs == nil {
		return ""
	}
	order := []string{FieldTitle, FieldContent}
	for i := 0; i < imageCount; i++ {
		order = append(order,
			fmt.Sprintf("images[%d].file", i),
			fmt.Sprintf("images[%d].altText", i),
		)
	}
	for _, name := range order {
		if len(errs.FieldErrors[name]) > 0 {
			return name
		}
	}
	if len(errs.FormErrors) > 0 {
		return FocusTargetForm
	}
	return ""
}
