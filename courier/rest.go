package courier

import (
	"context"
	"net/http"
)

// TypedResponse wraps a response with a decoded body of type T.
type TypedResponse[T any] struct {
	StatusCode int
	Header     http.Header
	Data       T
}

// RequestOption configures a single request built by the typed helpers.
type RequestOption func(*Descriptor)

// WithHeader adds a header to the request
func WithHeader(key, value string) RequestOption {
	return func(d *Descriptor) {
		if d.Headers == nil {
			d.Headers = make(map[string]any)
		}
		d.Headers[key] = value
	}
}

// WithQuery appends a query parameter to the request
func WithQuery(key, value string) RequestOption {
	return func(d *Descriptor) {
		d.Query = append(d.Query, QueryParam{Key: key, Value: value})
	}
}

// WithFormEncoding switches the request body to URL-encoded form
func WithFormEncoding() RequestOption {
	return func(d *Descriptor) {
		if d.Body != nil {
			d.Body.Encoding = EncodingURLForm
		}
	}
}

// Get performs a GET request and decodes the JSON response into type T
func Get[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*TypedResponse[T], error) {
	return Do[T](c, ctx, Descriptor{Method: MethodGet, Path: path}, opts...)
}

// Post performs a POST request with a JSON body and decodes the response into type T
func Post[T any](c *Client, ctx context.Context, path string, payload any, opts ...RequestOption) (*TypedResponse[T], error) {
	return Do[T](c, ctx, Descriptor{Method: MethodPost, Path: path, Body: JSONBody(payload)}, opts...)
}

// Put performs a PUT request with a JSON body and decodes the response into type T
func Put[T any](c *Client, ctx context.Context, path string, payload any, opts ...RequestOption) (*TypedResponse[T], error) {
	return Do[T](c, ctx, Descriptor{Method: MethodPut, Path: path, Body: JSONBody(payload)}, opts...)
}

// Patch performs a PATCH request with a JSON body and decodes the response into type T
func Patch[T any](c *Client, ctx context.Context, path string, payload any, opts ...RequestOption) (*TypedResponse[T], error) {
	return Do[T](c, ctx, Descriptor{Method: MethodPatch, Path: path, Body: JSONBody(payload)}, opts...)
}

// Delete performs a DELETE request and decodes the JSON response into type T
func Delete[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*TypedResponse[T], error) {
	return Do[T](c, ctx, Descriptor{Method: MethodDelete, Path: path}, opts...)
}

// Do dispatches the descriptor and decodes a successful response into type T.
// A non-2xx outcome surfaces as a status error; a 2xx body that does not fit
// T surfaces as a decode error with no additional send attempts.
func Do[T any](c *Client, ctx context.Context, d Descriptor, opts ...RequestOption) (*TypedResponse[T], error) {
	for _, opt := range opts {
		opt(&d)
	}

	var data T
	resp, err := c.DispatchInto(ctx, d, &data)
	if err != nil {
		return nil, err
	}
	return &TypedResponse[T]{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       data,
	}, nil
}
