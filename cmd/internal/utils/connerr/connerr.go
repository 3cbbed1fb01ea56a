// Package connerr defines the single error type every connector returns.
//
// A connector either produces a payload or an *Error. Callers switch on the
// Kind instead of inspecting message text: the absent kinds mean "there is no
// data to show", the others mean a lookup was attempted and failed.
package connerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindDisabled     Kind = "disabled"
	KindInvalidInput Kind = "invalid_input"
	// KindNoCredential means the provider credential could not be obtained,
	// so no lookup was attempted.
	KindNoCredential Kind = "no_credential"
	KindNetwork      Kind = "network"
	KindMalformed    Kind = "malformed"
	KindAuth         Kind = "auth"
	KindUpstream     Kind = "upstream"
	KindUnexpected   Kind = "unexpected"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Display is the body shown to the consumer in place of the payload. It
	// is only set by connectors whose failures carry a provider-specific shape.
	Display string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Absent reports whether the error only signals missing data.
func (e *Error) Absent() bool {
	switch e.Kind {
	case KindNotFound, KindDisabled, KindInvalidInput, KindNoCredential:
		return true
	}
	return false
}

func New(kind Kind, msg string, args ...any) *Error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, err error, msg string, args ...any) *Error {
	e := New(kind, msg, args...)
	e.Err = err
	return e
}

func (e *Error) WithDisplay(display string) *Error {
	e.Display = display
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or the empty
// kind when err is not a connector error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func IsAbsent(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Absent()
}

// IsConnectorError reports whether err carries a connector outcome. Anything
// else reaching a caller is an infrastructure failure such as a broken cache store.
func IsConnectorError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}
