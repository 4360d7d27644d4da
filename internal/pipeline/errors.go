package pipeline

import "errors"

var (
	// ErrPersistence wraps any store write or read failure
	ErrPersistence = errors.New("persistence failure")

	// ErrWindowLocked is returned when another run holds the analysis window
	ErrWindowLocked = errors.New("analysis window is locked by another run")
)
