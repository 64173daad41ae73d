package service

import "errors"

var (
	// ErrRejected is returned to callers for any key that does not resolve.
	// It intentionally carries no detail about which check failed.
	ErrRejected = errors.New("key rejected")

	// ErrNotAccepted is returned when a verified identity is refused by the site's accept expression.
	ErrNotAccepted = errors.New("identity not accepted")
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	StatusCode int
	Wrapped    error
}

func (e HTTPError) Error() string {
	return e.Wrapped.Error()
}

func (e HTTPError) Unwrap() error {
	return e.Wrapped
}

func httpError(statusCode int, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Wrapped:    err,
	}
}
