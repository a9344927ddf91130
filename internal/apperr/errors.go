// Package apperr defines the error taxonomy shared by the CityPulse services.
//
// Every failure the services produce is one of a closed set of kinds, each
// with a fixed HTTP status mapping and a stable display prefix. Failures
// captured per city inside an aggregation are rendered through Error() and
// attached to the city result as plain strings, so the display format is
// part of the API contract.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of an Error.
type Kind uint8

// Error kinds, in rough order of how often they occur in practice.
const (
	KindInternal Kind = iota
	KindTimeout
	KindHTTP
	KindNetwork
	KindParse
	KindValidation
	KindDatabase
	KindAuth
	KindAuthorization
)

// Error is a classified application error. HTTPStatus is only meaningful
// for KindHTTP, where it carries the upstream status code.
type Error struct {
	Kind       Kind
	HTTPStatus int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "Timeout error: " + e.Message
	case KindHTTP:
		return "HTTP error: " + e.Message
	case KindNetwork:
		return "Network error: " + e.Message
	case KindParse:
		return "JSON parse error: " + e.Message
	case KindValidation:
		return "Validation error: " + e.Message
	case KindDatabase:
		return "Database error: " + e.Message
	case KindAuth:
		return "Authentication error: " + e.Message
	case KindAuthorization:
		return "Authorization error: " + e.Message
	default:
		return "Internal error: " + e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout creates a timeout error.
func Timeout(msg string) *Error {
	return &Error{Kind: KindTimeout, Message: msg}
}

// Timeoutf creates a timeout error with a formatted message.
func Timeoutf(format string, args ...any) *Error {
	return Timeout(fmt.Sprintf(format, args...))
}

// HTTPStatus creates an HTTP error from an upstream status code. The
// message renders as "HTTP error: 500 Internal Server Error".
func HTTPStatus(status int) *Error {
	return &Error{
		Kind:       KindHTTP,
		HTTPStatus: status,
		Message:    fmt.Sprintf("%d %s", status, http.StatusText(status)),
	}
}

// Network creates a network error wrapping a transport failure.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error(), Err: err}
}

// Parse creates a parse error wrapping a JSON decoding failure.
func Parse(err error) *Error {
	return &Error{Kind: KindParse, Message: err.Error(), Err: err}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Database creates a database error.
func Database(err error) *Error {
	return &Error{Kind: KindDatabase, Message: err.Error(), Err: err}
}

// Auth creates an authentication error.
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// Authorization creates an authorization error.
func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg}
}

// Internalf creates an internal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return Internal(fmt.Sprintf(format, args...))
}

// Status maps an error to the HTTP status code of its response. Upstream
// HTTP errors echo their status when it is a valid code, otherwise 502.
// Errors outside the taxonomy map to 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Kind {
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindHTTP:
		if e.HTTPStatus >= 100 && e.HTTPStatus < 600 {
			return e.HTTPStatus
		}
		return http.StatusBadGateway
	case KindNetwork:
		return http.StatusBadGateway
	case KindParse, KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
