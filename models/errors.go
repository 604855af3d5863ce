package models

import (
	"errors"
	"fmt"

	"github.com/flokiorg/lokirent/constants"
)

// Error carries one of the constants.ERROR_* codes so callers can map it to a
// transport status without string matching.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (err *Error) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("%s: %v", err.Message, err.Err)
	}
	return err.Message
}

func (err *Error) Unwrap() error {
	return err.Err
}

func NewValidationError(format string, args ...interface{}) error {
	return &Error{Code: constants.ERROR_BAD_REQUEST, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &Error{Code: constants.ERROR_NOT_FOUND, Message: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...interface{}) error {
	return &Error{Code: constants.ERROR_FORBIDDEN, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) error {
	return &Error{Code: constants.ERROR_CONFLICT, Message: fmt.Sprintf(format, args...)}
}

func NewBannedError() error {
	return &Error{Code: constants.ERROR_BANNED, Message: "This username is blocked"}
}

func NewExpiredError(format string, args ...interface{}) error {
	return &Error{Code: constants.ERROR_EXPIRED, Message: fmt.Sprintf(format, args...)}
}

func NewUpstreamError(message string, err error) error {
	return &Error{Code: constants.ERROR_UPSTREAM, Message: message, Err: err}
}

// ErrorCode returns the code of err, or constants.ERROR_INTERNAL.
func ErrorCode(err error) string {
	var modelErr *Error
	if errors.As(err, &modelErr) {
		return modelErr.Code
	}
	return constants.ERROR_INTERNAL
}
