package app

import "errors"

var (
	// ErrBotNotFound indicates the requested bot does not exist.
	ErrBotNotFound = errors.New("bot not found")
	// ErrBotNotActive indicates the bot's subscription is not active.
	ErrBotNotActive = errors.New("bot is not active")
	// ErrBadWidgetKey indicates a missing or wrong widget key.
	ErrBadWidgetKey = errors.New("invalid widget key")
	// ErrInvalidSession indicates a session token that fails verification or
	// belongs to another bot.
	ErrInvalidSession = errors.New("invalid session token")
	// ErrRateLimited indicates the bot's per-minute quota is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")
)
