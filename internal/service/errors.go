package service

import "fmt"

// ErrorKind classifies why an adapter call failed.
type ErrorKind string

const (
	KindTransport      ErrorKind = "transport_error"
	KindSchemaMismatch ErrorKind = "schema_mismatch"
	KindInvalidInput   ErrorKind = "invalid_input"
)

// Error is returned by every Analyzer operation. Message is written for the
// end user and is shown verbatim; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Sentinels for errors.Is: they match any *Error of the same kind.
var (
	ErrTransport      = &Error{Kind: KindTransport}
	ErrSchemaMismatch = &Error{Kind: KindSchemaMismatch}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) match by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func transportError(err error, format string, args ...any) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf(format, args...), Err: err}
}

func schemaError(err error, format string, args ...any) *Error {
	return &Error{Kind: KindSchemaMismatch, Message: fmt.Sprintf(format, args...), Err: err}
}

func inputError(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}
