package app

import "errors"

var (
	// ErrUnknownReference means a checkout request named a record kind the
	// service does not manage.
	ErrUnknownReference = errors.New("unknown reference kind")
	// ErrRecordNotFound means the referenced bot or staff user does not exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidRequest marks request validation failures so the server can
	// answer 400 instead of treating them as internal errors.
	ErrInvalidRequest = errors.New("invalid request")
)
