package generation

import (
	"fmt"

	"github.com/hyperjump/ragd/internal/models"
)

// BackendUnreachableError reports that no connection could be made (refused, DNS failure).
type BackendUnreachableError struct {
	URL string
	Err error
}

func (e *BackendUnreachableError) Error() string {
	return fmt.Sprintf("generation backend %s unreachable: %v", e.URL, e.Err)
}

func (e *BackendUnreachableError) Unwrap() error { return e.Err }

// Kind implements models.Kinded.
func (e *BackendUnreachableError) Kind() string { return models.KindBackendUnreachable }

// BackendTimeoutError reports that the backend did not answer within the request timeout.
type BackendTimeoutError struct {
	Timeout string
	Err     error
}

func (e *BackendTimeoutError) Error() string {
	return fmt.Sprintf("generation backend timed out after %s: %v", e.Timeout, e.Err)
}

func (e *BackendTimeoutError) Unwrap() error { return e.Err }

// Kind implements models.Kinded.
func (e *BackendTimeoutError) Kind() string { return models.KindBackendTimeout }

// BackendStatusError reports a non-200 HTTP status from the backend.
type BackendStatusError struct {
	Code int
	Body string
}

func (e *BackendStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("generation backend returned status %d", e.Code)
	}
	return fmt.Sprintf("generation backend returned status %d: %s", e.Code, e.Body)
}

// Kind implements models.Kinded.
func (e *BackendStatusError) Kind() string { return models.KindBackendStatus }

// MalformedResponseError reports a 200 response whose body could not be used.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed generation response: " + e.Reason
}

// Kind implements models.Kinded.
func (e *MalformedResponseError) Kind() string { return models.KindMalformedResponse }
