package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProvider matches any *ProviderError.
	ErrProvider = errors.New("provider error")
	// ErrUnresolved matches any *UnresolvedError.
	ErrUnresolved = errors.New("classification unresolved")

	ErrEmptyUtterance = errors.New("utterance is empty")
	// ErrUnsupportedRequest is returned by providers for a request they
	// refuse to send.
	ErrUnsupportedRequest = errors.New("unsupported classification request")
)

// ProviderError is a failure of the remote model call (network, auth, quota,
// broken stream). It is never retried by the classifier.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("provider: %v", e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// UnresolvedError is returned when the model kept emitting the sentinel
// until the attempt budget ran out.
type UnresolvedError struct {
	Attempts int
	Last     []Directive
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("classification unresolved after %d attempts", e.Attempts)
}

func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolved
}
