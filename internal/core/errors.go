package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure so the API boundary can map it to a stable
// errorType discriminant and HTTP status without string-matching messages.
type ErrorKind string

const (
	KindConfiguration    ErrorKind = "configuration_error"
	KindMissingParameter ErrorKind = "missing_parameter"
	KindInvalidFormat    ErrorKind = "validation_error"
	KindDispatchFailed   ErrorKind = "dispatch_failed"
	KindRunNotFound      ErrorKind = "run_not_found"
	KindTimeout          ErrorKind = "timeout_error"
	KindArtifactMissing  ErrorKind = "artifact_missing"
	KindDecode           ErrorKind = "decode_error"
	KindTransport        ErrorKind = "github_api_error"
)

// Error is the structured error carried from the orchestration pipeline to the
// API boundary. It keeps enough context (attempts, correlation value, target)
// for a caller to diagnose a failure without server-side log access.
type Error struct {
	Kind        ErrorKind
	Message     string
	Target      string // "owner/repo", when known
	Correlation string // correlation token of the dispatch, when known
	Attempts    int    // retry/poll rounds consumed before giving up
	Err         error  // underlying cause, preserved unwrapped
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, &core.Error{Kind: ...}) style matching on kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an Error with just a kind and message.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError attaches a kind and message to an underlying cause.
func WrapError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors report an
// empty kind, which the HTTP layer treats as a generic server error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AttemptsOf extracts the attempt count from an error chain, or 0.
func AttemptsOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Attempts
	}
	return 0
}

// HTTPStatus maps an error kind to the status code the API layer responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingParameter, KindInvalidFormat:
		return http.StatusBadRequest
	case KindConfiguration:
		return http.StatusInternalServerError
	case KindRunNotFound:
		return http.StatusNotFound
	case KindDispatchFailed, KindTransport:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
