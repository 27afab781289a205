package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotOnFinalStep     = errors.New("form: submit is only available on the final step")
	ErrSubmitted          = errors.New("form: application already submitted; initialize to start again")
	ErrSubmissionInFlight = errors.New("form: a submission is already in progress")
	ErrUnknownField       = errors.New("form: unknown field")
)

// ClientValidationError is returned when local validation blocks a submit.
type ClientValidationError struct {
	Fields map[string]string
}

func (e *ClientValidationError) Error() string {
	return "form: validation failed for " + strings.Join(sortedKeys(e.Fields), ", ")
}

// ServerValidationError is a 4xx rejection of the payload by the API.
type ServerValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ServerValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "application rejected by server"
}

// TransportError wraps network failures and unexpected server responses.
type TransportError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("unexpected response status %d", e.StatusCode)
	default:
		return ""
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// failureMessage is the toast text for a failed submission.
func failureMessage(err error) string {
	if err == nil {
		return FallbackFailure
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackFailure
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
