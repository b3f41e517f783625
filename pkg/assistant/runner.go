package assistant

import (
	"context"
	"time"
)

const (
	defaultPollInterval    = time.Second
	defaultMaxPollAttempts = 30
)

// RunnerConfig holds polling tunables. Zero values select the defaults
// (1 second interval, 30 attempts, roughly a 30-second wall-clock budget).
type RunnerConfig struct {
	PollInterval    time.Duration
	MaxPollAttempts int
}

// Runner translates the platform's asynchronous run protocol into a single
// bounded synchronous call per turn.
type Runner struct {
	client          *Client
	pollInterval    time.Duration
	maxPollAttempts int
}

// NewRunner constructs a runner over the platform client.
func NewRunner(client *Client, cfg RunnerConfig) *Runner {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	attempts := cfg.MaxPollAttempts
	if attempts <= 0 {
		attempts = defaultMaxPollAttempts
	}
	return &Runner{
		client:          client,
		pollInterval:    interval,
		maxPollAttempts: attempts,
	}
}

// RunTurn submits the message on the thread (allocating one when threadID is
// empty), starts a run, polls it to a terminal state within the attempt
// budget, and returns the thread id and the assistant's reply.
func (r *Runner) RunTurn(ctx context.Context, threadID, assistantID, message string) (string, string, error) {
	if threadID == "" {
		id, err := r.client.CreateThread(ctx)
		if err != nil {
			return "", "", &SubmissionError{Op: "create thread", Err: err}
		}
		threadID = id
	}
	if err := r.client.AddMessage(ctx, threadID, "user", message); err != nil {
		return "", "", &SubmissionError{Op: "append message", Err: err}
	}
	run, err := r.client.CreateRun(ctx, threadID, assistantID)
	if err != nil {
		return "", "", &SubmissionError{Op: "create run", Err: err}
	}

	status := run.Status
	attempts := 0
	for status == RunStatusQueued || status == RunStatusInProgress {
		if attempts >= r.maxPollAttempts {
			return "", "", ErrRunTimeout
		}
		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		case <-time.After(r.pollInterval):
		}
		current, err := r.client.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return "", "", &SubmissionError{Op: "poll run", Err: err}
		}
		status = current.Status
		attempts++
	}

	if status != RunStatusCompleted {
		return "", "", &RunFailedError{Status: status}
	}

	reply, err := r.client.LatestMessage(ctx, threadID)
	if err != nil {
		return "", "", &SubmissionError{Op: "fetch reply", Err: err}
	}
	if reply == "" {
		return "", "", ErrNoReply
	}
	return threadID, reply, nil
}
