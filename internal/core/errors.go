package core

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedKey      = errors.New("malformed key")
	ErrUnknownSite       = errors.New("unknown site")
	ErrUnregisteredSite  = errors.New("unregistered site")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrInvalidKey is the only failure kind callers of the resolver observe.
	ErrInvalidKey = errors.New("invalid key")
)

// InvalidKeyError wraps any resolution failure together with the rejected key.
type InvalidKeyError struct {
	Key   string
	Cause error
}

func (e *InvalidKeyError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("invalid key '%s'", e.Key)
	}
	return fmt.Sprintf("invalid key '%s': %v", e.Key, e.Cause)
}

func (e *InvalidKeyError) Unwrap() error {
	return e.Cause
}

func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}
