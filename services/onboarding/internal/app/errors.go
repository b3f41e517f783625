package app

import "errors"

var (
	// ErrBotNotFound indicates the requested bot does not exist.
	ErrBotNotFound = errors.New("bot not found")
	// ErrJobNotFound indicates the refresh job id is unknown or expired.
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidDocument indicates an uploaded knowledge document that could
	// not be validated.
	ErrInvalidDocument = errors.New("invalid knowledge document")
	// ErrInvalidRequest marks request validation failures so the server can
	// answer 400 instead of treating them as internal errors.
	ErrInvalidRequest = errors.New("invalid request")
)
