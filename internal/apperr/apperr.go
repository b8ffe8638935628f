// Package apperr defines the typed error kinds used across all services.
// Handlers translate kinds into HTTP statuses; services never return raw
// GORM or driver errors to callers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: missing required field, unparseable date, bad number.
	KindValidation
	// KindConflict: duplicate serial number, reference, or username.
	KindConflict
	// KindInsufficientStock: requested quantity exceeds current stock.
	KindInsufficientStock
	// KindAccessDenied: permission flag absent, or credentials rejected.
	KindAccessDenied
	// KindReferential: a foreign key points to a since-deleted row.
	KindReferential
	KindNotFound
)

// Error carries a kind plus a caller-safe message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func Conflictf(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

func InsufficientStockf(format string, args ...interface{}) *Error {
	return newf(KindInsufficientStock, format, args...)
}

func AccessDeniedf(format string, args ...interface{}) *Error {
	return newf(KindAccessDenied, format, args...)
}

func Referentialf(format string, args ...interface{}) *Error {
	return newf(KindReferential, format, args...)
}

func NotFoundf(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }
