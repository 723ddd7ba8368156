package errors

import "errors"

// Domain errors
var (
	// Diagnosis errors
	ErrNavigationTimeout = errors.New("page load timeout after 30 seconds")
	ErrSessionClosed     = errors.New("browser session already closed")
	ErrEmptyURL          = errors.New("url cannot be empty")

	// Report errors
	ErrResultNotFound  = errors.New("diagnosis result not found")
	ErrInvalidFilename = errors.New("invalid result filename")

	// Observation errors
	ErrObserverDisabled = errors.New("observation generation is disabled")
)
