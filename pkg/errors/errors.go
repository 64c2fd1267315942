package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeContract marks a blank or missing required argument
	ErrorTypeContract  ErrorType = "contract"
	// ErrorTypeParse marks a URL that does not match the expected grammar
	ErrorTypeParse     ErrorType = "parse"
	// ErrorTypeSession marks a failure while driving the browser
	ErrorTypeSession   ErrorType = "session"
	ErrorTypeTransient ErrorType = "transient"
	ErrorTypePermanent ErrorType = "permanent"
	ErrorTypeConfig    ErrorType = "config"
)

// Error is a typed failure. Code carries the HTTP status when one is known.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Contract returns an input-contract violation for the named argument
func Contract(arg string) *Error {
	return &Error{Type: ErrorTypeContract, Message: arg + " must not be empty"}
}

// Parse returns a parse failure describing what could not be matched
func Parse(what, input string) *Error {
	return &Error{Type: ErrorTypeParse, Message: fmt.Sprintf("cannot extract %s from %q", what, input)}
}

// Session wraps a browser-driving failure
func Session(msg string, err error) *Error {
	return &Error{Type: ErrorTypeSession, Message: msg, Err: err}
}

// IsType reports whether err is, or wraps, an *Error of type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// DefaultPermanentMarkers are the reason substrings that disable retrying
var DefaultPermanentMarkers = []string{"Forbidden", "Not Found"}

// IsPermanentReason reports whether reason contains any of markers.
// Matching is case-sensitive substring search on the failure message.
func IsPermanentReason(reason string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(reason, m) {
			return true
		}
	}
	return false
}
