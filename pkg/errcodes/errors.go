package errcodes

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

const (
	CodeValidation  = "validation_error"
	CodeDuplicate   = "duplicate"
	CodeUnavailable = "unavailable"
	CodeNotFound    = "not_found"
	CodeStorage     = "storage_error"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	// Cause is the underlying error for storage failures. It's never shown to
	// clients.
	Cause error
}

func (err *Error) Error() string {
	if err.Cause != nil {
		return err.Message + ": " + err.Cause.Error()
	}
	return err.Message
}

func (err *Error) Unwrap() error {
	return err.Cause
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// HasCode reports whether err (or anything it wraps) is an *Error with the
// given code.
func HasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " not found.",
		Code:     CodeNotFound,
	}
}

// Duplicate returns a 409 error for a uniqueness conflict on field.
func Duplicate(resource, field string) error {
	return &Error{
		HTTPCode: http.StatusConflict,
		Message:  fmt.Sprintf("%s with this %s already exists.", resource, field),
		Code:     CodeDuplicate,
	}
}

// Unavailable returns a 409 error when no copy of a book is left to lend.
func Unavailable(resource string) error {
	return &Error{
		HTTPCode: http.StatusConflict,
		Message:  resource + " is not available.",
		Code:     CodeUnavailable,
	}
}

// Storage wraps an unexpected store failure. Errors that already carry a code
// are returned as they are.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{
		HTTPCode: http.StatusInternalServerError,
		Message:  "Storage error",
		Code:     CodeStorage,
		Cause:    err,
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  fmt.Sprintf("Unknown Parameter %q", param),
		Code:     "unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     CodeValidation,
	}
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Request body can't be empty.",
		Code:     "empty_request_body",
	}
}
