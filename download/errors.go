package download

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch outcome classification.
var (
	ErrDuplicate  = errors.New("duplicate content")
	ErrTimeout    = errors.New("request timed out")
	ErrConnection = errors.New("connection failed")
	ErrFilesystem = errors.New("filesystem error")
)

// StatusError indicates a non-2xx http response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error status: %s", e.Status)
}

// ValidationError indicates a response that is not acceptable image content.
// Reason names the check that failed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Outcome maps a Fetch error to the short category used in report lines.
func Outcome(err error) string {
	var statusErr *StatusError
	var validationErr *ValidationError

	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrConnection):
		return "connection error"
	case errors.Is(err, ErrFilesystem):
		return "filesystem error"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("http error %d", statusErr.Code)
	case errors.As(err, &validationErr):
		return "rejected"
	default:
		return "request error"
	}
}
