package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrSetupNotFound is returned by SetupFetcher when the interview does
	// not exist or is not ready for a live session.
	ErrSetupNotFound = errors.New("interview: setup not found")

	// ErrInvalidState is wrapped by TransitionError.
	ErrInvalidState = errors.New("interview: invalid state")
)

// PermissionError reports that the microphone could not be acquired.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("interview: microphone permission: %v", e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// ConnectError reports that the transport session could not be opened.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("interview: connect: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// StreamError reports a transport failure after the session opened.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("interview: stream: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// AudioPipelineError reports a capture or playback failure.
type AudioPipelineError struct {
	Op  string // "capture" or "playback"
	Err error
}

func (e *AudioPipelineError) Error() string {
	return fmt.Sprintf("interview: %s: %v", e.Op, e.Err)
}

func (e *AudioPipelineError) Unwrap() error { return e.Err }

// FinalizationError reports that feedback generation failed.
type FinalizationError struct {
	Err error
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("interview: generate feedback: %v", e.Err)
}

func (e *FinalizationError) Unwrap() error { return e.Err }

// TransitionError reports an operation attempted from the wrong state.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("interview: %s not allowed in state %s", e.Op, e.State)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidState }
