// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-canvas.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrTransportClosed   = fmt.Errorf("transport is closed")
	ErrProtocolViolation = fmt.Errorf("websocket protocol violation")
	ErrClientExit        = fmt.Errorf("client unloaded")
	ErrNoKeyTyped        = fmt.Errorf("client does not have a next key typed")
	ErrHashUnavailable   = fmt.Errorf("SHA-1 hash is not available on this platform")
	ErrNotEstablished    = fmt.Errorf("no websocket client is established")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeProtocol ErrorCode = iota + 1
	ErrCodeIO
	ErrCodeHandshake
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WrapError creates a structured error around a cause.
func WrapError(code ErrorCode, message string, err error) *Error {
	e := NewError(code, message)
	e.Err = err
	return e
}

// ProtocolError builds an ErrCodeProtocol error wrapping ErrProtocolViolation.
func ProtocolError(format string, args ...any) *Error {
	e := NewError(ErrCodeProtocol, fmt.Sprintf(format, args...))
	e.Err = ErrProtocolViolation
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

// Result tags the outcome of one session step.
type Result int

const (
	Ok Result = iota
	ProtocolErrorResult
	IOErrorResult
	ExitResult
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case ProtocolErrorResult:
		return "protocol_error"
	case IOErrorResult:
		return "io_error"
	case ExitResult:
		return "client_exit"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by the session layer to its Result tag.
func Classify(err error) Result {
	if err == nil {
		return Ok
	}
	if errors.Is(err, ErrClientExit) {
		return ExitResult
	}
	if errors.Is(err, ErrProtocolViolation) {
		return ProtocolErrorResult
	}
	var e *Error
	if errors.As(err, &e) && e.Code == ErrCodeProtocol {
		return ProtocolErrorResult
	}
	return IOErrorResult
}
