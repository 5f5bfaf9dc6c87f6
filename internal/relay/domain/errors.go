package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies pipeline failures.
type Kind int

const (
	// KindNotFound: the template id is not authorized or not configured.
	KindNotFound Kind = iota + 1
	// KindMalformed: structurally invalid input.
	KindMalformed
	// KindPolicy: well-formed input that breaks a configured limit.
	KindPolicy
	// KindUpstream: the provider failed; its status and body are kept verbatim.
	KindUpstream
	// KindInternal: server-side misconfiguration (bad SMS template, missing credentials).
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed"
	case KindPolicy:
		return "policy"
	case KindUpstream:
		return "upstream"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by both pipelines.
type Error struct {
	Kind    Kind
	Message string
	// Upstream only.
	UpstreamStatus int
	Body           []byte
	ContentType    string

	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error to the status the caller sees.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindMalformed:
		return http.StatusUnprocessableEntity
	case KindPolicy:
		return http.StatusForbidden
	case KindUpstream:
		if e.UpstreamStatus > 0 {
			return e.UpstreamStatus
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NotFound() *Error { return &Error{Kind: KindNotFound, Message: "not found"} }

func Malformed(msg string) *Error { return &Error{Kind: KindMalformed, Message: msg} }

func Malformedf(format string, args ...any) *Error {
	return Malformed(fmt.Sprintf(format, args...))
}

func PolicyViolation(msg string) *Error { return &Error{Kind: KindPolicy, Message: msg} }

func Upstream(status int, body []byte, contentType string) *Error {
	return &Error{Kind: KindUpstream, Message: "provider error", UpstreamStatus: status, Body: body, ContentType: contentType}
}

// Unreachable is an upstream failure without any provider response.
func Unreachable(err error) *Error {
	return &Error{Kind: KindUpstream, Message: "provider unreachable", Err: err}
}

func Internal(msg string, err error) *Error { return &Error{Kind: KindInternal, Message: msg, Err: err} }

// Common rejection messages.
const (
	ReasonBadRecipientFormat = "wrong format for the To field"
	ReasonTooManyRecipients  = "too many recipients"
	ReasonRecipientForbidden = "recipient not allowed"
	ReasonVariablesNotMap    = "variables must be a mapping"
	ReasonVariablesNotString = "only string variables are allowed"
	ReasonTemplateNotInt     = "template id must be an integer"
)

// AsError extracts a pipeline error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindInternal
}
