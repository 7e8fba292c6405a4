// Package apperr classifies failures reported back to the event host.
package apperr

import (
	"fmt"

	"emperror.dev/errors"
)

// Code is the failure class surfaced to the host for one event.
type Code string

const (
	// GenericError marks configuration or environment defects.
	GenericError Code = "GENERIC_ERROR"
	// ExternalServiceError marks transport failures talking to STS or DynamoDB.
	ExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
)

// Error carries a Code alongside the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Generic returns a GENERIC_ERROR with the given message.
func Generic(message string, err error) error {
	return errors.WithStack(&Error{Code: GenericError, Message: message, Err: err})
}

// Genericf formats a GENERIC_ERROR message.
func Genericf(format string, args ...interface{}) error {
	return Generic(fmt.Sprintf(format, args...), nil)
}

// ExternalService returns an EXTERNAL_SERVICE_ERROR wrapping err.
func ExternalService(message string, err error) error {
	return errors.WithStack(&Error{Code: ExternalServiceError, Message: message, Err: err})
}

// CodeOf returns the Code of the first *Error in err's chain, or "" when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsExternalService reports whether err is an EXTERNAL_SERVICE_ERROR.
func IsExternalService(err error) bool {
	return CodeOf(err) == ExternalServiceError
}

// IsGeneric reports whether err is a GENERIC_ERROR.
func IsGeneric(err error) bool {
	return CodeOf(err) == GenericError
}
