package errs

import (
	"net/http"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// Parameters:
//   - message: single message rendered as "error" (may be empty)
//   - override: the message is safe to show to clients as-is
//   - code: optional custom code string (if nil, defaults to "BAD_REQUEST")
//   - errors: optional list of reasons rendered as "errors"
func NewBadRequestError(message string, override bool, code *string, errors []string) *HTTPError {
	// http.StatusText(400) => "Bad Request" => "BAD_REQUEST"
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError with a single "error" message.
//
// Supports optional custom code override similar to NewBadRequestError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewNotFoundErrors creates a 404 Not Found HTTPError rendered as an "errors" list.
//
// The create-listing endpoint reports missing references this way, unlike the
// lookup endpoints which use a single "error" message.
func NewNotFoundErrors(errors ...string) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound)),
		Status:   http.StatusNotFound,
		Override: true,
		Errors:   errors,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, never the real internal error.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError converts a validation failure into a 400 Bad Request HTTPError.
//
//	return errs.ValidationError(err)
//
// The error text becomes the single entry of the "errors" list.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("", true, nil, []string{err.Error()})
}
