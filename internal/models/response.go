package models

// Machine-readable error codes returned alongside HTTP statuses.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_FAILED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeCSRF         = "CSRF_REJECTED"
	ErrCodeSpam         = "SPAM_REJECTED"
	ErrCodePayloadLimit = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
