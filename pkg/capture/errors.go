package capture

import "errors"

// Error represents capture pipeline and storage errors
type Error struct {
	Code    string `json:"code"`
	Op      string `json:"op"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeConfig     = "CONFIG_FAILED"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_FAILED"
	ErrCodeStorageIO  = "STORAGE_IO"
)

// NewError creates a new capture error
func NewError(code, op, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError reports a storage mount or configuration failure
func NewConfigError(op, message string, cause error) *Error {
	return NewError(ErrCodeConfig, op, message, cause)
}

// NewNotFoundError reports a logical index outside [0, count)
func NewNotFoundError(op, message string) *Error {
	return NewError(ErrCodeNotFound, op, message, nil)
}

// NewValidationError reports an externally supplied value out of range
func NewValidationError(op, message string) *Error {
	return NewError(ErrCodeValidation, op, message, nil)
}

// NewStorageIOError reports a single storage read/write failure
func NewStorageIOError(op, message string, cause error) *Error {
	return NewError(ErrCodeStorageIO, op, message, cause)
}

// IsNotFound reports whether err carries the NOT_FOUND code
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsValidation reports whether err carries the VALIDATION_FAILED code
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func hasCode(err error, code string) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
