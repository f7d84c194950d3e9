package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential indicates no usable API key is configured.
	// Returned before any network I/O.
	ErrMissingCredential = errors.New("llm api key not configured")

	// ErrRequestFailed indicates a transport-level failure: DNS, connect,
	// TLS, timeout, or a body that could not be read.
	ErrRequestFailed = errors.New("llm request failed")

	// ErrHTTPStatus indicates the server answered with a non-2xx status.
	ErrHTTPStatus = errors.New("llm server returned an error status")

	// ErrInvalidResponse indicates a 2xx answer whose envelope is not a
	// chat completion with at least one choice.
	ErrInvalidResponse = errors.New("invalid llm response envelope")

	// ErrInvalidOutput indicates the model content could not be decoded
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")
)

// maxErrorBodyDisplay bounds how much of an error body Error() shows.
const maxErrorBodyDisplay = 200

// RequestError wraps a transport failure.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %v", ErrRequestFailed, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// HTTPError carries a non-2xx status and the full raw response body.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm server returned status %d: %s", e.StatusCode, TruncateBody(e.Body))
}

func (e *HTTPError) Is(target error) bool { return target == ErrHTTPStatus }

// TruncateBody shortens an error body for display. Full bodies belong in logs.
func TruncateBody(body string) string {
	r := []rune(body)
	if len(r) <= maxErrorBodyDisplay {
		return body
	}
	return string(r[:maxErrorBodyDisplay]) + "…"
}
