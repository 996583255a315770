package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound = errors.New("not found")

	// ErrDetectorBackend marks a detection backend as permanently
	// broken (incompatible model, missing runtime). The detection
	// loop stops on it; the timer loop and broadcaster keep running.
	ErrDetectorBackend = errors.New("detection backend unavailable")

	// ErrNoFrame is returned by frame sources that are exhausted.
	ErrNoFrame = errors.New("no frame available")

	ErrSubscriberExists = errors.New("subscriber already registered")
	ErrBusClosed        = errors.New("broadcaster is closed")
)
