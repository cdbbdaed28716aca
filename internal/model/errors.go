package model

import "errors"

var (
	// ErrConfiguration covers invalid camera/role assignments and runs
	// started without the state they need.
	ErrConfiguration = errors.New("configuration error")
	// ErrCapture is returned when a camera does not yield a frame.
	ErrCapture = errors.New("capture error")
	// ErrNotFound is returned when an identity or selection does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPersistence wraps ledger, intruder and credential write failures.
	ErrPersistence = errors.New("persistence error")
	// ErrInvalidInput is returned by the operator input parsers.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyRunning is returned when a second run is requested.
	ErrAlreadyRunning = errors.New("a run is already in progress")
)
