package models

import (
	"errors"
	"fmt"
)

// Error kinds shared across packages. Each typed error reports one of these through Kind().
const (
	KindInvalidArgument    = "invalid_argument"
	KindEmbedding          = "embedding_error"
	KindDimensionMismatch  = "dimension_mismatch"
	KindDuplicateID        = "duplicate_id"
	KindPromptTooLarge     = "prompt_too_large"
	KindBackendUnreachable = "backend_unreachable"
	KindBackendTimeout     = "backend_timeout"
	KindBackendStatus      = "backend_status"
	KindMalformedResponse  = "malformed_response"
	KindNotFound           = "not_found"
	KindInternal           = "internal"
)

// Kinded is implemented by errors that carry a machine-readable kind.
type Kinded interface {
	error
	Kind() string
}

// KindOf returns the kind of the first Kinded error in err's chain, or KindInternal.
func KindOf(err error) string {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// InvalidArgumentError reports bad caller input. It is never retried.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

// NewInvalidArgument returns an InvalidArgumentError for field.
func NewInvalidArgument(field, format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidArgumentError) Error() string {
	if e.Field == "" {
		return "invalid argument: " + e.Reason
	}
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Reason)
}

// Kind implements Kinded.
func (e *InvalidArgumentError) Kind() string { return KindInvalidArgument }
