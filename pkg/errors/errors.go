package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the different kinds of failure the scraper distinguishes
type ErrorType string

const (
	// Setup errors abort the run
	ErrorTypeNotFound ErrorType = "not_found"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeBrowser  ErrorType = "browser"

	// Listing errors skip a single URL
	ErrorTypeNavigation ErrorType = "navigation"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeFilesystem ErrorType = "filesystem"

	// Image errors skip a single image
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeHTTPStatus ErrorType = "http_status"

	ErrorTypeUnknown ErrorType = "unknown"
)

// Error carries a type, a human readable message, an optional status code
// and the underlying cause.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error around err
func Wrap(t ErrorType, err error, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: err}
}

// HTTPStatus creates an error for a response with a failing status code
func HTTPStatus(code int, url string) *Error {
	return &Error{
		Type:    ErrorTypeHTTPStatus,
		Message: fmt.Sprintf("unexpected status for %s", url),
		Code:    code,
	}
}

// TypeOf returns the type of the first *Error in err's chain, or
// ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err's chain contains an *Error of type t
func Is(err error, t ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Err
	}
	return false
}

// IsSetup reports whether err should abort the whole run
func IsSetup(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeNotFound, ErrorTypeConfig, ErrorTypeBrowser:
		return true
	default:
		return false
	}
}
