package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL indicates the target URL is empty or not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url: absolute http or https URL required")
	// ErrInsufficientContent indicates the page yielded too little extractable
	// text to seed a knowledge base (typically a JS-rendered shell).
	ErrInsufficientContent = errors.New("insufficient content extracted from page")
)

// FetchError reports a failed page retrieval. Status is zero when the
// request never completed (timeout, DNS, connection refused).
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
