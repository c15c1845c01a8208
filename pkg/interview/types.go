package interview

import (
	"context"

	"github.com/jagtap-suraj/sensai/pkg/capture"
	"github.com/jagtap-suraj/sensai/pkg/transcript"
)

// Setup is the immutable description of one interview, read once when the
// Controller initializes.
type Setup struct {
	ID                string
	UserName          string
	Role              string
	JobLevel          string
	InterviewType     string
	ResumeExcerpt     string
	SystemInstruction string
}

// FeedbackRequest is sent to the FeedbackService when the interview ends.
type FeedbackRequest struct {
	InterviewID string
	Transcript  string
	Entries     []transcript.Entry
}

// Feedback is the result of a successful finalization.
type Feedback struct {
	ID   string
	Text string
}

// SetupFetcher loads the Setup for an interview. It returns an error
// wrapping ErrSetupNotFound when the interview does not exist.
type SetupFetcher interface {
	FetchSetup(ctx context.Context, id string) (*Setup, error)
}

// FeedbackService generates feedback from a finished transcript.
type FeedbackService interface {
	GenerateFeedback(ctx context.Context, req FeedbackRequest) (*Feedback, error)
}

// Microphone is the permission boundary for audio input. Acquire returns an
// error when access is denied. Closing the returned source releases the
// device.
type Microphone interface {
	Acquire(ctx context.Context) (capture.Source, error)
}

// Monitor observes raw microphone samples while the interview is live.
type Monitor interface {
	Start()
	Write(samples []float32)
	Stop()
}

// Notice is a user facing message emitted alongside a state change.
type Notice struct {
	State   State
	Message string
	Err     error
}

// Result is the outcome of an interview once Done is closed.
type Result struct {
	State      State
	Feedback   *Feedback
	Transcript []transcript.Entry

	// Cause is the failure that ended the session early, if any.
	Cause error

	// Err is set when the interview did not complete.
	Err error

	// Disposed is true when the session was torn down without feedback.
	Disposed bool
}
