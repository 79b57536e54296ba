package courier

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// CachePolicy controls the Cache-Control directive applied to every request
// sent through the transport.
type CachePolicy string

const (
	// CacheDefault lets intermediaries apply their normal caching rules
	CacheDefault CachePolicy = "default"
	// CacheNoCache forces revalidation with the origin server
	CacheNoCache CachePolicy = "no-cache"
	// CacheNoStore forbids storing the request or response anywhere
	CacheNoStore CachePolicy = "no-store"
)

// Transport performs the actual network I/O for one wire request.
// Implementations must be safe for concurrent use by multiple in-flight
// dispatches.
type Transport interface {
	Send(ctx context.Context, req *WireRequest) (*RawResponse, error)
}

// HTTPTransport is the default Transport over net/http. Connection pooling,
// TLS and proxying are delegated entirely to the underlying http.Client.
type HTTPTransport struct {
	client      *http.Client
	cachePolicy CachePolicy
}

// NewHTTPTransport creates a transport with its own http.Client and the
// given request timeout and cache policy.
func NewHTTPTransport(timeout time.Duration, policy CachePolicy) *HTTPTransport {
	return &HTTPTransport{
		client:      &http.Client{Timeout: timeout},
		cachePolicy: policy,
	}
}

// NewHTTPTransportWithClient wraps an existing http.Client, for callers that
// need custom transport-level configuration.
func NewHTTPTransportWithClient(client *http.Client, policy CachePolicy) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client, cachePolicy: policy}
}

// Send performs the request and drains the response body. A transport-level
// failure surfaces as a session error; a response that cannot be interpreted
// as HTTP surfaces as an invalid response error.
func (t *HTTPTransport) Send(ctx context.Context, req *WireRequest) (*RawResponse, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), bodyReader)
	if err != nil {
		return nil, NewInvalidURLError("create HTTP request", err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	switch t.cachePolicy {
	case CacheNoCache:
		httpReq.Header.Set("Cache-Control", "no-cache")
	case CacheNoStore:
		httpReq.Header.Set("Cache-Control", "no-store")
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, NewSessionError("request execution failed", err)
	}
	if httpResp == nil {
		return nil, NewInvalidResponseError("transport returned no response")
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewSessionError("read response body", err)
	}

	return &RawResponse{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}
