package courier

import (
	"errors"
	"fmt"
)

// ClientError represents the different failure modes of the dispatch pipeline
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error
type ErrorType string

const (
	// InvalidURLError means the request was never sent: base URL, path or
	// query could not be assembled into a valid URL.
	InvalidURLError ErrorType = "invalid_url"
	// InvalidResponseError means the request was sent but no interpretable
	// HTTP response came back. Never routed through the retry interceptor.
	InvalidResponseError ErrorType = "invalid_response"
	// SessionError is a transport-level failure (DNS, connection reset).
	// Routed through the retry interceptor.
	SessionError ErrorType = "session"
	// StatusError is an HTTP response with a non-2xx status code.
	// Routed through the retry interceptor.
	StatusError ErrorType = "status"
	// BuildError means the request body or multipart framing could not be
	// assembled. The request was never sent; never routed through the retry
	// interceptor.
	BuildError ErrorType = "build"
	// DecodeError is a 2xx response whose body does not match the expected
	// shape. Terminal: retrying cannot change the body.
	DecodeError ErrorType = "decode"
	// InterceptorError wraps a failure raised by the interceptor itself
	// during adapt or retry.
	InterceptorError ErrorType = "interceptor"
)

type invalidURLError struct {
	message string
	wrapped error
}

func (e *invalidURLError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("invalid URL: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("invalid URL: %s", e.message)
}

func (e *invalidURLError) Type() ErrorType { return InvalidURLError }

func (e *invalidURLError) Unwrap() error { return e.wrapped }

type invalidResponseError struct {
	message string
}

func (e *invalidResponseError) Error() string {
	return fmt.Sprintf("invalid HTTP response: %s", e.message)
}

func (e *invalidResponseError) Type() ErrorType { return InvalidResponseError }

type sessionError struct {
	message string
	wrapped error
}

func (e *sessionError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("session failed: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("session failed: %s", e.message)
}

func (e *sessionError) Type() ErrorType { return SessionError }

func (e *sessionError) Unwrap() error { return e.wrapped }

type statusError struct {
	statusCode int
	body       []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.statusCode)
}

func (e *statusError) Type() ErrorType { return StatusError }

// StatusCode returns the HTTP status code of the failed response
func (e *statusError) StatusCode() int { return e.statusCode }

// Body returns the raw response body of the failed response
func (e *statusError) Body() []byte { return e.body }

type buildError struct {
	message string
	wrapped error
}

func (e *buildError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("request build failed: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("request build failed: %s", e.message)
}

func (e *buildError) Type() ErrorType { return BuildError }

func (e *buildError) Unwrap() error { return e.wrapped }

type decodeError struct {
	message string
	wrapped error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decoding failed: %s: %v", e.message, e.wrapped)
}

func (e *decodeError) Type() ErrorType { return DecodeError }

func (e *decodeError) Unwrap() error { return e.wrapped }

type interceptorError struct {
	stage   string
	wrapped error
}

func (e *interceptorError) Error() string {
	return fmt.Sprintf("interceptor error (stage: %s): %v", e.stage, e.wrapped)
}

func (e *interceptorError) Type() ErrorType { return InterceptorError }

func (e *interceptorError) Unwrap() error { return e.wrapped }

// NewInvalidURLError creates a new invalid URL error
func NewInvalidURLError(message string, wrapped error) ClientError {
	return &invalidURLError{message: message, wrapped: wrapped}
}

// NewInvalidResponseError creates a new invalid response error
func NewInvalidResponseError(message string) ClientError {
	return &invalidResponseError{message: message}
}

// NewSessionError creates a new session error
func NewSessionError(message string, wrapped error) ClientError {
	return &sessionError{message: message, wrapped: wrapped}
}

// NewStatusError creates a new status error from a non-2xx response
func NewStatusError(statusCode int, body []byte) ClientError {
	return &statusError{statusCode: statusCode, body: body}
}

// NewBuildError creates a new request build error
func NewBuildError(message string, wrapped error) ClientError {
	return &buildError{message: message, wrapped: wrapped}
}

// NewDecodeError creates a new decode error
func NewDecodeError(message string, wrapped error) ClientError {
	return &decodeError{message: message, wrapped: wrapped}
}

// NewInterceptorError creates a new interceptor error
func NewInterceptorError(stage string, wrapped error) ClientError {
	return &interceptorError{stage: stage, wrapped: wrapped}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsRetryable reports whether the error category is eligible for the
// interceptor's retry decision. Session and status failures are; malformed
// URLs, uninterpretable responses and decode failures are not.
func IsRetryable(err error) bool {
	return IsErrorType(err, SessionError) || IsErrorType(err, StatusError)
}

// IsHTTPStatusError checks if an error is a status error with a specific code
func IsHTTPStatusError(err error, statusCode int) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode() == statusCode
	}
	return false
}

// StatusCodeFromError returns the HTTP status code carried by a status error
func StatusCodeFromError(err error) (int, bool) {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode(), true
	}
	return 0, false
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
