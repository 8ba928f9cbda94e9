// Package apperr defines the error taxonomy shared by every component:
// validation failures, auth failures, forbidden transitions, and remote
// collaborator failures.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind int

const (
	// KindValidation is malformed or missing required input.
	KindValidation Kind = iota
	// KindAuth is a credential or account conflict, subcoded by AuthCode.
	KindAuth
	// KindForbidden is a role-gated state-machine or negotiator rule violation.
	KindForbidden
	// KindRemote is a failed or timed-out store/AI collaborator call.
	KindRemote
)

// AuthCode subclassifies auth failures, mirroring the auth collaborator's codes.
type AuthCode string

const (
	AuthInvalidCredential AuthCode = "invalid-credential"
	AuthEmailInUse        AuthCode = "email-already-in-use"
	AuthWeakPassword      AuthCode = "weak-password"
	AuthOther             AuthCode = "other"
)

// Error is a classified application error.
type Error struct {
	Kind Kind
	Code AuthCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden reports a role or lifecycle rule violation.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Auth reports a credential/account failure with the collaborator's code.
func Auth(code AuthCode, msg string) error {
	return &Error{Kind: KindAuth, Code: code, Msg: msg}
}

// Remote wraps a failed store or AI collaborator call.
func Remote(msg string, err error) error {
	return &Error{Kind: KindRemote, Msg: msg, Err: err}
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// CodeOf returns the auth subcode of err, or AuthOther.
func CodeOf(err error) AuthCode {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return AuthOther
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		switch ae.Code {
		case AuthInvalidCredential:
			return http.StatusUnauthorized
		case AuthWeakPassword:
			// Policy violation on submitted input, not an account conflict.
			return http.StatusBadRequest
		default:
			return http.StatusConflict
		}
	case KindForbidden:
		return http.StatusForbidden
	case KindRemote:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
