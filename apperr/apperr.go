// Package apperr defines the closed set of error kinds surfaced to the
// presentation layer and the normalized error value that carries them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for user messaging and retry decisions.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConnectivity
	KindHTTP
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConnectivity:
		return "connectivity"
	case KindHTTP:
		return "http"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// User-facing messages for connectivity failures.
const (
	MsgOffline     = "No internet connection"
	MsgTimeout     = "Request timed out. Please check your connection and try again"
	MsgNoResponse  = "Unable to connect to the server. Please try again later"
	MsgUnexpected  = "An unexpected error occurred"
	CodeTimeout    = "ECONNABORTED"
	CodeNoResponse = "ERR_NETWORK"
)

// Error is the normalized failure shape: {message, status, errors, isNetworkError, code}.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Errors  map[string][]string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Status, e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsNetworkError is true when no HTTP response was obtained.
func (e *Error) IsNetworkError() bool { return e.Kind == KindConnectivity }

// FirstFieldError returns the first message of the field errors, sorted
// by field name so the choice is stable.
func (e *Error) FirstFieldError() (string, bool) {
	if len(e.Errors) == 0 {
		return "", false
	}
	var best string
	for field := range e.Errors {
		if best == "" || field < best {
			best = field
		}
	}
	if msgs := e.Errors[best]; len(msgs) > 0 {
		return msgs[0], true
	}
	return "", false
}

// Validation reports a problem detected locally before any I/O.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Connectivity reports a failure where no HTTP response arrived.
func Connectivity(msg, code string, err error) *Error {
	return &Error{Kind: KindConnectivity, Message: msg, Code: code, Err: err}
}

// HTTP reports an error response with the default message for its status.
func HTTP(status int, fields map[string][]string) *Error {
	return &Error{Kind: KindHTTP, Status: status, Message: StatusMessage(status), Errors: fields}
}

// Persistence reports a failed local storage operation.
func Persistence(op, key string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: fmt.Sprintf("%s %q failed", op, key), Err: err}
}

// StatusMessage is the default user message for an HTTP error status.
func StatusMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Session expired. Please sign in again"
	case http.StatusForbidden:
		return "You do not have permission to perform this action"
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusUnprocessableEntity:
		return "Validation failed"
	case http.StatusInternalServerError:
		return "Server error. Please try again later"
	default:
		return "Something went wrong. Please try again"
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// IsNetworkError reports whether err is a connectivity failure.
func IsNetworkError(err error) bool { return Is(err, KindConnectivity) }

// UserMessage is the text safe to show in an alert. Raw causes never leak.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok && e.Message != "" {
		return e.Message
	}
	return MsgUnexpected
}
