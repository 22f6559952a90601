// Package errs define custom error types and utilities.
//
// Its purpose is to create specific error structures
// (HTTPError for API responses) to ensure the client receives
// consistent error bodies:
//
//   - a single message:  { "error": "Vendor not found" }
//   - a list of reasons: { "errors": ["price must not be negative"] }
//
// Errors play nicely with Go's standard errors package (errors.Is / errors.As).
package errs

import "strings"

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// Only Message and Errors are serialized; Code and Status drive logging,
// metrics and the response status line.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "NOT_FOUND").
//   - Message: human-friendly message, rendered as "error".
//   - Status: HTTP status code.
//   - Override: the message is safe to show to clients as-is.
//   - Errors: list of reasons, rendered as "errors" (validation).
type HTTPError struct {
	Code     string   `json:"-"`
	Message  string   `json:"error,omitempty"`
	Status   int      `json:"-"`
	Override bool     `json:"-"`
	Errors   []string `json:"errors,omitempty"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
//
// When Message is empty (list-style errors) the joined Errors are returned so
// logs still show something useful.
func (e *HTTPError) Error() string {
	if e.Message == "" && len(e.Errors) > 0 {
		return strings.Join(e.Errors, "; ")
	}
	return e.Message
}

// Is customizes how errors.Is(...) treats HTTPError.
//
// This does NOT compare Code/Status/etc.
// It only checks whether the other thing is the same *type* (*HTTPError).
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// Body returns the value written to the client for this error.
//
// Exactly one of "error" or "errors" is populated; an error that carries
// neither falls back to its status text so the body is never empty.
func (e *HTTPError) Body() *HTTPError {
	if e.Message == "" && len(e.Errors) == 0 {
		return &HTTPError{Message: e.Code}
	}
	return &HTTPError{Message: e.Message, Errors: e.Errors}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
//
// Used to create stable machine-readable error codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
