package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to decide how to surface it.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindStateConflict Kind = "state_conflict"
	KindBusinessRule  Kind = "business_rule"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindTransient     Kind = "transient"
	KindForbidden     Kind = "forbidden"
)

// Error is the single error type the core hands back to its callers.
// Two errors are considered equal by errors.Is when their codes match, so a
// sentinel can be decorated with detail text and still be matched.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Withf returns a copy of e carrying a more specific message.
func (e *Error) Withf(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e that also carries cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

var ErrStoreUnavailable = New(KindTransient, "store_unavailable", "ledger store unavailable")

// Transient classifies an unexpected infrastructure error. Errors that are
// already classified pass through untouched.
func Transient(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return ErrStoreUnavailable.Withf("%s: ledger store unavailable", op).Wrap(err)
}

// KindOf reports the kind of err, or "" when err was never classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// CodeOf reports the code of err, or "" when err was never classified.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
