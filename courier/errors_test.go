package courier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypes(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      ClientError
		errType  ErrorType
		contains string
	}{
		{"invalid URL", NewInvalidURLError("bad path", cause), InvalidURLError, "invalid URL"},
		{"invalid response", NewInvalidResponseError("no response"), InvalidResponseError, "invalid HTTP response"},
		{"session", NewSessionError("dial failed", cause), SessionError, "session failed"},
		{"status", NewStatusError(502, []byte("bad gateway")), StatusError, "status 502"},
		{"build", NewBuildError("multipart boundary", cause), BuildError, "request build failed"},
		{"decode", NewDecodeError("body", cause), DecodeError, "decoding failed"},
		{"interceptor", NewInterceptorError("retry", cause), InterceptorError, "stage: retry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type())
			assert.Contains(t, tt.err.Error(), tt.contains)
			assert.True(t, IsErrorType(tt.err, tt.errType))
		})
	}
}

func TestIsErrorType(t *testing.T) {
	assert.False(t, IsErrorType(nil, SessionError))
	assert.False(t, IsErrorType(errors.New("plain"), SessionError))

	wrapped := fmt.Errorf("outer: %w", NewSessionError("inner", nil))
	assert.True(t, IsErrorType(wrapped, SessionError))
	assert.False(t, IsErrorType(wrapped, StatusError))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewSessionError("x", nil)))
	assert.True(t, IsRetryable(NewStatusError(500, nil)))
	assert.False(t, IsRetryable(NewInvalidURLError("x", nil)))
	assert.False(t, IsRetryable(NewInvalidResponseError("x")))
	assert.False(t, IsRetryable(NewBuildError("x", nil)))
	assert.False(t, IsRetryable(NewDecodeError("x", nil)))
	assert.False(t, IsRetryable(nil))
}

func TestStatusErrorAccessors(t *testing.T) {
	err := NewStatusError(404, []byte(`{"error":"nf"}`))

	assert.True(t, IsHTTPStatusError(err, 404))
	assert.False(t, IsHTTPStatusError(err, 500))

	code, ok := StatusCodeFromError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, code)

	_, ok = StatusCodeFromError(errors.New("plain"))
	assert.False(t, ok)

	var se interface {
		StatusCode() int
		Body() []byte
	}
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, []byte(`{"error":"nf"}`), se.Body())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	assert.ErrorIs(t, NewSessionError("x", cause), cause)
	assert.ErrorIs(t, NewInvalidURLError("x", cause), cause)
	assert.ErrorIs(t, NewBuildError("x", cause), cause)
	assert.ErrorIs(t, NewDecodeError("x", cause), cause)
	assert.ErrorIs(t, NewInterceptorError("adapt", cause), cause)
}

func TestIsSuccessStatus(t *testing.T) {
	assert.True(t, IsSuccessStatus(200))
	assert.True(t, IsSuccessStatus(299))
	assert.False(t, IsSuccessStatus(199))
	assert.False(t, IsSuccessStatus(300))
	assert.False(t, IsSuccessStatus(404))
}
