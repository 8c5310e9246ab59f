package llm

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// StatusOverloaded is the HTTP status providers use to signal a transient
// capacity problem
const StatusOverloaded = 529

var (
	// ErrOverloaded marks a provider failure that is worth retrying after a
	// pause
	ErrOverloaded = errors.New("provider overloaded")

	// ErrMalformedResult means the completion was not a valid decomposition
	ErrMalformedResult = errors.New("malformed generation result")
)

// StatusError is a non-200 response from a provider API
type StatusError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s API error (%d): %s - %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// statusError builds a StatusError, marked as ErrOverloaded when the status
// says so
func statusError(provider string, code int, typ, msg string) error {
	var err error = &StatusError{Provider: provider, StatusCode: code, Type: typ, Message: msg}
	if code == StatusOverloaded {
		err = errors.Mark(err, ErrOverloaded)
	}
	return err
}

// IsOverloaded reports whether err (or anything it wraps) is an overload
// signal
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOverloaded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == StatusOverloaded
}
