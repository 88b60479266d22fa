package picture

import (
	"errors"
	"fmt"
)

// Code classifies a decode failure. The numeric values are part of the
// library's public contract and match the codes reported by the CLI.
type Code int

const (
	// OK reports success; it is never carried by a returned error.
	OK Code = 0
	// GenericError covers failures outside the other categories.
	GenericError Code = -1
	// OutOfMemory reports a failed allocation in the pipeline.
	OutOfMemory Code = -2
	// BadFile reports corrupt or truncated chunk data.
	BadFile Code = -3
	// Unsupported reports a recognized but unimplemented format or
	// compression variant.
	Unsupported Code = -4
	// InvalidState reports a contract violation by the caller, such as
	// decoding before analysis.
	InvalidState Code = -5
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case GenericError:
		return "error"
	case OutOfMemory:
		return "out of memory"
	case BadFile:
		return "bad file"
	case Unsupported:
		return "unsupported"
	case InvalidState:
		return "invalid state"
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is the error type returned by every failing operation in this
// package. Two Errors compare equal under errors.Is when their codes
// match, so callers can test against the exported Err* values.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("picture: %s: %s", e.Code, e.Msg)
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinel values for use with errors.Is.
var (
	ErrBadFile      = &Error{Code: BadFile, Msg: "bad file"}
	ErrUnsupported  = &Error{Code: Unsupported, Msg: "unsupported"}
	ErrInvalidState = &Error{Code: InvalidState, Msg: "invalid state"}
)

func badFile(format string, args ...interface{}) *Error {
	return &Error{Code: BadFile, Msg: fmt.Sprintf(format, args...)}
}

func unsupported(format string, args ...interface{}) *Error {
	return &Error{Code: Unsupported, Msg: fmt.Sprintf(format, args...)}
}

func invalidState(format string, args ...interface{}) *Error {
	return &Error{Code: InvalidState, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from an error returned by this package. Any
// other error maps to GenericError; nil maps to OK.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return GenericError
}
