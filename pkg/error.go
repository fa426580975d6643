package pkg

import (
	"fmt"
	"strings"
)

// Error represents a chain of errors, innermost first.
//
// Sentinels declared here are used by the command-line front end and can be
// tested with errors.Is.
type Error []error

// ErrReadInput is returned when reading an input file fails.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrWriteOutput is returned when writing the transformation result fails.
var ErrWriteOutput = MakeErrorf("failed to write output")

// ErrMappingNotFound is returned when a mapping file cannot be located in the
// working directory or along the mapping search path.
var ErrMappingNotFound = MakeErrorf("mapping file not found")

// ErrUnsupportedInput is returned when the input file type is not one of the
// supported source document kinds.
var ErrUnsupportedInput = MakeErrorf("unsupported input document")

// ErrInvalidInputs is returned when the external named inputs cannot be
// decoded as a flat object of strings.
var ErrInvalidInputs = MakeErrorf("invalid placeholder values")

// ErrJSONMarshal is returned when JSON marshaling fails.
var ErrJSONMarshal = MakeErrorf("JSON marshal error")

// ErrYAMLMarshal is returned when YAML marshaling fails.
var ErrYAMLMarshal = MakeErrorf("YAML marshal error")

// ErrInvalidFormat is returned when an invalid output format is specified.
var ErrInvalidFormat = MakeErrorf("invalid format")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns all messages in the chain, outermost first, separated by
// ": ".
func (e Error) Error() string {
	msgs := make([]string, 0, len(e))

	for i := len(e) - 1; i >= 0; i-- {
		msgs = append(msgs, e[i].Error())
	}

	return strings.Join(msgs, ": ")
}

// Wrap appends one or more errors to the receiver and returns the result.
// The receiver is never modified.
func (e Error) Wrap(err ...error) Error {
	out := make(Error, 0, len(e)+len(err))
	out = append(out, e...)

	for _, x := range err {
		if x != nil {
			out = append(out, x)
		}
	}

	return out
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether target is an Error whose chain is a prefix of the
// receiver's, which holds for any chain built by wrapping target.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if e[i] != t[i] {
			return false
		}
	}

	return true
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
// Errors that wrap others contribute only their own leaf messages.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	switch e := err.(type) {
	case Error:
		chain := Error{}
		for _, wrapped := range e {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return chain

	case interface{ Unwrap() []error }:
		chain := Error{}
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return append(chain, err)

	default:
		return Error{err}
	}
}
