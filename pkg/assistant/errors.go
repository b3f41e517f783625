package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrRunTimeout indicates the run did not reach a terminal state within
	// the polling budget.
	ErrRunTimeout = errors.New("assistant run timed out")
	// ErrNoReply indicates a completed run produced no retrievable message text.
	ErrNoReply = errors.New("assistant run completed without a reply")
)

// SubmissionError reports a failed call while submitting or tracking a run.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// RunFailedError reports a run that ended in a terminal non-success status.
type RunFailedError struct {
	Status string
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("assistant run ended with status %s", e.Status)
}
