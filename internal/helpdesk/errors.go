package helpdesk

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError reports a transport failure: the request never produced an
// HTTP response (connection refused, DNS failure, timeout, cancellation).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
}

// ParseError reports a response body that is not valid JSON for the
// expected shape.
type ParseError struct {
	Method string
	URL    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %s: invalid JSON response: %v", e.Method, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an
// HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// Describe returns a short user-facing description of a client error.
func Describe(err error) string {
	var (
		netErr   *NetworkError
		httpErr  *HTTPError
		parseErr *ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &httpErr):
		return fmt.Sprintf("server returned %d", httpErr.Status)
	case errors.As(err, &netErr):
		return "server unreachable"
	case errors.As(err, &parseErr):
		return "unexpected response from server"
	default:
		return err.Error()
	}
}
