package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInternal

	// Classification errors: the event could not be mapped to a handler.
	ErrUnknownSource
	ErrMissingField

	// Pipeline errors.
	ErrSchedulerRegistration
	ErrDispatch
	ErrTemplateNotFound
	ErrTemplateRender
)

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// UnknownSource reports an event whose source names no registered handler.
func UnknownSource(source string) *AppError {
	return &AppError{
		Code:    ErrUnknownSource,
		Message: fmt.Sprintf("unknown event source: %s", source),
	}
}

// MissingField reports a handler-required key absent from event data.
func MissingField(field string) *AppError {
	return &AppError{
		Code:    ErrMissingField,
		Message: fmt.Sprintf("missing required field: %s", field),
	}
}

func SchedulerRegistration(message string, err error) *AppError {
	return &AppError{
		Code:    ErrSchedulerRegistration,
		Message: message,
		Err:     err,
	}
}

func Dispatch(message string, err error) *AppError {
	return &AppError{
		Code:    ErrDispatch,
		Message: message,
		Err:     err,
	}
}

func TemplateNotFound(templateID string) *AppError {
	return &AppError{
		Code:    ErrTemplateNotFound,
		Message: fmt.Sprintf("template %q not found", templateID),
	}
}

func TemplateRender(templateID string, err error) *AppError {
	return &AppError{
		Code:    ErrTemplateRender,
		Message: fmt.Sprintf("failed to render template %q", templateID),
		Err:     err,
	}
}

// CodeOf extracts the ErrorCode from err, or 0 if err is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

// IsValidation reports whether err is a classification/validation error
// that should surface to the caller as a client error.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrUnknownSource, ErrMissingField, ErrBadRequest:
		return true
	}
	return false
}
