package service

import "errors"

// Sentinel errors raised at the point of detection and surfaced unchanged to
// the HTTP layer, which maps them onto the response envelope.
var (
	ErrNotFound           = errors.New("document not found")
	ErrForbidden          = errors.New("forbidden")
	ErrFileMissing        = errors.New("file missing on server")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrIDRequired         = errors.New("id is required")
	ErrTitleRequired      = errors.New("title is required")
	ErrReaderNil          = errors.New("reader is nil")
)
