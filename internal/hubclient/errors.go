package hubclient

import (
	"errors"
	"fmt"
)

// genericErrorMessage is the fallback when a hub error body carries no
// usable message.
const genericErrorMessage = "hub request failed"

// ConnError is a transport-level failure: the hub was unreachable, the
// connection timed out, or DNS resolution failed. The request never
// produced an HTTP response.
type ConnError struct {
	URL string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("hub unreachable: %s: %v", e.URL, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// APIError is an application-level failure: the hub responded with a
// non-2xx status. Message holds the error extracted from the JSON body
// when present, or a generic fallback.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hub error (%d): %s", e.StatusCode, e.Message)
}

// IsConnError reports whether err is a transport failure.
func IsConnError(err error) bool {
	var ce *ConnError
	return errors.As(err, &ce)
}

// IsAPIError reports whether err is a hub application error.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
