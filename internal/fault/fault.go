// Package fault defines the typed failure kinds the ledger engine returns.
// Services always surface one of these four kinds; the handler layer maps
// them to HTTP statuses and never needs to parse message strings.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Validation: missing or invalid input; recoverable by correcting it.
	Validation Kind = iota
	// Conflict: operation invalid given current session state.
	Conflict
	// NotFound: referenced entity does not exist.
	NotFound
	// Storage: underlying store failed; the unit of work was rolled back.
	Storage
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Storage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error carries a failure kind plus a human-readable detail string.
type Error struct {
	Kind Kind
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

// New builds a typed error with a caller-facing message.
func New(kind Kind, msg string) error { return &Error{Kind: kind, Msg: msg} }

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind of err. Untyped errors are treated as Storage,
// matching the propagation policy: anything a repository bubbles up that a
// service did not classify is a store-level failure.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Storage
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
