package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks an empty or malformed required argument. It is a
	// caller bug and is never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an expected link or field missing from a source page.
	ErrNotFound = errors.New("not found")
)

// FetchError reports a network or HTTP failure while fetching a source page.
// A zero StatusCode means the request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DispatchError wraps a push-messaging failure for a topic.
type DispatchError struct {
	Topic string
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to topic %q: %v", e.Topic, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
