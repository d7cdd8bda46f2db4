// Package apierror defines the error kinds surfaced by the licensing client.
// Every error carries a stable kind and a human readable message so that
// callers can map it onto their own notices.
package apierror

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindMissingKey          Kind = "missing_key"
	KindInvalidLicense      Kind = "invalid_license"
	KindRevoked             Kind = "revoked"
	KindActivationFailed    Kind = "activation_failed"
	KindCouldNotActivate    Kind = "could_not_activate"
	KindLicenseKeyMissing   Kind = "license_key_missing"
	KindActivationIDMissing Kind = "activation_id_missing"
	KindNotFound            Kind = "not_found"
	KindNetworkError        Kind = "network_error"
	KindUnknownError        Kind = "unknown_error"
	KindServerError         Kind = "server_error"
	KindDeactivated         Kind = "deactivated"
	KindReleaseMismatch     Kind = "release_mismatch"
)

var defaultMessages = map[Kind]string{
	KindMissingKey:          "Please enter a license key",
	KindInvalidLicense:      "This license key is not valid. Please double check it and try again.",
	KindRevoked:             "This license key has been revoked.",
	KindActivationFailed:    "Could not activate this license key. Please try again.",
	KindCouldNotActivate:    "The licensing server did not return an activation.",
	KindLicenseKeyMissing:   "The license key is missing.",
	KindActivationIDMissing: "The activation id is missing.",
	KindNotFound:            "Not found",
	KindNetworkError:        "Could not connect to the licensing server.",
	KindUnknownError:        "Unknown error occurred, Please try again.",
	KindServerError:         "The licensing server returned an error.",
	KindDeactivated:         "Your license has been deactivated for this site.",
	KindReleaseMismatch:     "This license key does not belong to this product.",
}

// Error is the tagged error value returned by every layer of the client.
type Error struct {
	Kind Kind
	// Code is the server supplied code for KindServerError, otherwise the kind itself.
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind. An empty message selects the default message.
func New(kind Kind, message string) *Error {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &Error{
		Kind:    kind,
		Code:    string(kind),
		Message: message,
	}
}

// Server wraps a {code, message} pair returned by the licensing API.
func Server(statusCode int, code string, message string) *Error {
	return &Error{
		Kind:       KindServerError,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Network wraps a transport level failure (dns, connect, tls, timeout).
func Network(err error) *Error {
	e := New(KindNetworkError, "")
	e.Err = err
	return e
}

// DefaultMessage returns the stock message for a kind.
func DefaultMessage(kind Kind) string {
	return defaultMessages[kind]
}

// As extracts the *Error from err, unwrapping github.com/pkg/errors wrappers.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknownError for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if apiErr, ok := As(err); ok {
		return apiErr.Kind
	}
	return KindUnknownError
}

func IsKind(err error, kind Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == kind
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}
