// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-rawmem.

package api

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used across the library. Operations return *Error values
// whose Is method matches the sentinel of their code, so callers test with
// errors.Is(err, api.ErrOutOfRange) and friends.
var (
	ErrAllocationFailure    = fmt.Errorf("allocation failure")
	ErrOutOfRange           = fmt.Errorf("out of range")
	ErrUnsupportedOperation = fmt.Errorf("unsupported operation")
	ErrUseAfterFree         = fmt.Errorf("use after free")
	ErrInvalidArgument      = fmt.Errorf("invalid argument")
	ErrNotSupported         = fmt.Errorf("operation not supported on this platform")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeAllocationFailure
	ErrCodeOutOfRange
	ErrCodeUnsupportedOperation
	ErrCodeUseAfterFree
	ErrCodeInvalidArgument
	ErrCodeNotSupported
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeAllocationFailure:
		return "allocation_failure"
	case ErrCodeOutOfRange:
		return "out_of_range"
	case ErrCodeUnsupportedOperation:
		return "unsupported_operation"
	case ErrCodeUseAfterFree:
		return "use_after_free"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeNotSupported:
		return "not_supported"
	default:
		return "internal"
	}
}

// sentinel maps a code onto its package-level error value.
func (c ErrorCode) sentinel() error {
	switch c {
	case ErrCodeAllocationFailure:
		return ErrAllocationFailure
	case ErrCodeOutOfRange:
		return ErrOutOfRange
	case ErrCodeUnsupportedOperation:
		return ErrUnsupportedOperation
	case ErrCodeUseAfterFree:
		return ErrUseAfterFree
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeNotSupported:
		return ErrNotSupported
	}
	return nil
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		fmt.Fprintf(&b, " (context: %+v)", e.Context)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e.Code or an *Error with
// the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	s := e.Code.sentinel()
	return s != nil && s == target
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithOp records the operation that failed.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode carried by err, or ErrCodeInternal when err
// is not one of ours. A nil error maps to ErrCodeOK.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	for c := ErrCodeAllocationFailure; c < ErrCodeInternal; c++ {
		if errors.Is(err, c.sentinel()) {
			return c
		}
	}
	return ErrCodeInternal
}
