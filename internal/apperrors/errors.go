// Package apperrors defines the tagged error types returned by each stage of
// the upload and analysis pipelines. Callers branch on Kind instead of parsing
// message text.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnknown         Kind = "unknown"
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindTransport       Kind = "transport"
	KindHTTP            Kind = "http"
	KindContentBlocked  Kind = "content_blocked"
	KindMalformedOutput Kind = "malformed_output"
	KindPersistence     Kind = "persistence"
)

// ValidationError is a bad request from the caller. No state has been mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError means the resource does not exist or belongs to another owner.
// The two cases are deliberately indistinguishable to the caller.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// TransportError is a network level failure talking to the analysis service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("analysis service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx answer from the analysis service.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analysis service returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("analysis service returned HTTP %d: %s", e.Status, e.Body)
}

// ContentBlockedError means the service refused to produce content.
type ContentBlockedError struct {
	Reason string
}

func (e *ContentBlockedError) Error() string {
	return fmt.Sprintf("analysis blocked by service: %s", e.Reason)
}

// MalformedOutputError carries the raw model output so it can be shown to the
// user for diagnosis.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	if e.Err == nil {
		return "analysis service returned unusable output"
	}
	return fmt.Sprintf("analysis service returned unusable output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// PersistenceError is a storage fault. The enclosing transaction has been
// rolled back when this is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// KindOf returns the tag of the first typed error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		transportErr  *TransportError
		httpErr       *HTTPError
		blockedErr    *ContentBlockedError
		malformedErr  *MalformedOutputError
		persistErr    *PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &notFoundErr):
		return KindNotFound
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &blockedErr):
		return KindContentBlocked
	case errors.As(err, &malformedErr):
		return KindMalformedOutput
	case errors.As(err, &persistErr):
		return KindPersistence
	default:
		return KindUnknown
	}
}
