package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a CustomError so callers can branch without string matching.
type Kind string

const (
	KindUnknown  Kind = ""
	KindInvalid  Kind = "invalid"
	KindNotFound Kind = "not_found"
	KindState    Kind = "state"
)

// CustomError represents an error with a kind, arguments and an optional wrapped cause.
type CustomError struct {
	message string
	kind    Kind
	args    map[string]interface{}
	wrapped error
}

// New creates a new CustomError instance.
func New(message string) *CustomError {
	return &CustomError{
		message: message,
		args:    make(map[string]interface{}),
	}
}

// Invalid creates a CustomError of KindInvalid.
func Invalid(message string) *CustomError {
	return New(message).WithKind(KindInvalid)
}

// NotFound creates a CustomError of KindNotFound.
func NotFound(message string) *CustomError {
	return New(message).WithKind(KindNotFound)
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	return e.fullErrorString()
}

// Message returns the bare message without args or wrapped errors.
func (e *CustomError) Message() string {
	return e.message
}

// Kind returns the error kind.
func (e *CustomError) Kind() Kind {
	return e.kind
}

// WithKind sets the error kind.
func (e *CustomError) WithKind(k Kind) *CustomError {
	e.kind = k
	return e
}

// Arg adds an argument to the error.
func (e *CustomError) Arg(key string, value interface{}) *CustomError {
	e.args[key] = value
	return e
}

// Wrap wraps another error (can be of the same type or a standard error).
func (e *CustomError) Wrap(err error) *CustomError {
	if err != nil {
		e.wrapped = err
	}
	return e
}

// Unwrap returns the wrapped error if any.
func (e *CustomError) Unwrap() error {
	return e.wrapped
}

// Is reports whether target is a CustomError with the same message and kind.
// Sentinels declared with New can therefore be matched after Arg or Wrap were
// applied to a copy.
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t == e || (t.message == e.message && t.kind == e.kind)
}

// KindOf returns the first kind set in err's chain. Wrappers created with
// New add context without classifying, so they are skipped.
func KindOf(err error) Kind {
	for err != nil {
		var ce *CustomError
		if !errors.As(err, &ce) {
			return KindUnknown
		}
		if ce.kind != KindUnknown {
			return ce.kind
		}
		err = ce.wrapped
	}
	return KindUnknown
}

// fullErrorString builds the error string in the format
// "{msg: <message>, args: <args>, wrappedError: {<wrapped error>}}".
func (e *CustomError) fullErrorString() string {
	var builder strings.Builder

	builder.WriteString("{msg: ")
	builder.WriteString(e.message)

	if len(e.args) > 0 {
		keys := make([]string, 0, len(e.args))
		for k := range e.args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s:%v", k, e.args[k]))
		}
		builder.WriteString(", args: map[" + strings.Join(parts, " ") + "]")
	}

	if e.wrapped != nil {
		var wrappedErr *CustomError
		if errors.As(e.wrapped, &wrappedErr) {
			builder.WriteString(", wrappedError: " + wrappedErr.fullErrorString())
		} else {
			builder.WriteString(fmt.Sprintf(", wrappedError: {%v}", e.wrapped.Error()))
		}
	}

	builder.WriteString("}")

	return builder.String()
}
