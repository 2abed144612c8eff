package domain

import (
	"errors"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrInvalidInput indicates empty or malformed caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates a required backend credential is absent.
	ErrConfiguration = errors.New("configuration error")

	// ErrParse indicates model output did not match the expected format.
	ErrParse = errors.New("parse error")

	// ErrStorage indicates an I/O failure persisting or deleting state.
	ErrStorage = errors.New("storage error")

	// ErrBackend indicates an opaque failure from the embedding or generation backend.
	ErrBackend = errors.New("backend error")
)

// Error carries an error kind, the operation that failed and the underlying cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

// E builds an *Error. cause may be nil.
func E(kind error, op string, cause error) error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the taxonomy kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrInvalidInput, ErrConfiguration, ErrParse, ErrStorage, ErrBackend} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
