// Package apperr defines the error taxonomy shared by the orchestration
// layer and the HTTP boundary. Every failure surfaced by an orchestrator
// operation is one of four kinds; callers branch on the kind, never on the
// message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindValidation marks malformed or missing required input fields,
	// detected before any cache mutation.
	KindValidation Kind = iota
	// KindState marks a required cache entry being absent. An expired key
	// and a never-set key are indistinguishable by contract; both are this.
	KindState
	// KindArgument marks an internal data-integrity violation, e.g. an
	// accepted offer referencing a reservation the remote system never
	// returned.
	KindArgument
	// KindUpstream marks a remote gateway, scope broker or sequence issuer
	// failure, propagated with its original detail.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindArgument:
		return "argument"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Err, when non-nil, preserves the original
// cause for errors.Is/As chains.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error without an underlying cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain. The second return value is
// false when the error carries no classification.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether the error chain contains a classified error of the
// given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
