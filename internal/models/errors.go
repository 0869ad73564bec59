package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound      = errors.New("resource not found") // General not found
	ErrNoteNotFound  = errors.New("note not found")
	ErrImageNotFound = errors.New("image not found")

	// User Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")

	// Submission Pipeline Errors
	ErrCSRFMismatch    = errors.New("csrf token is missing or invalid")
	ErrSpamSubmission  = errors.New("form not submitted properly")
	ErrUploadTooLarge  = errors.New("uploaded part exceeds the size limit")
	ErrInvalidIntent   = errors.New("invalid intent")
	ErrSessionInvalid  = errors.New("session cookie is invalid")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
