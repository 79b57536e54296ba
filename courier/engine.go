package courier

import (
	"context"
)

// Dispatch drives one logical request to a terminal outcome: build, adapt,
// send, classify, and loop through the interceptor's retry decision until it
// resolves. On success the raw response is returned; every failure mode maps
// to the ClientError taxonomy.
//
// Session and status failures are offered to the interceptor; invalid URLs
// and uninterpretable responses short-circuit without consulting it. The
// core imposes no retry ceiling: an interceptor that always grants a retry
// loops forever, and bounding it (see MaxRetriesInterceptor) is the caller's
// responsibility.
//
// On a status failure the response is returned alongside the error so
// callers can inspect the body.
func (c *Client) Dispatch(ctx context.Context, d Descriptor, medias ...MediaPart) (*RawResponse, error) {
	boundary := ""
	if len(medias) > 0 {
		boundary = randomBoundary()
	}
	wire, err := BuildRequest(c.base, c.port, c.applyDefaults(d), medias, boundary)
	if err != nil {
		return nil, err
	}
	return c.dispatch(ctx, wire)
}

// DispatchInto dispatches the request and decodes a successful response body
// into out using the client's decoder. Decoding failures are terminal and
// never retried: by the time the body is decoded the retry loop has already
// resolved to success.
func (c *Client) DispatchInto(ctx context.Context, d Descriptor, out any, medias ...MediaPart) (*RawResponse, error) {
	resp, err := c.Dispatch(ctx, d, medias...)
	if err != nil {
		return resp, err
	}
	if out == nil || len(resp.Body) == 0 {
		return resp, nil
	}
	if err := c.decoder.Decode(resp.Body, out); err != nil {
		return resp, NewDecodeError("response body", err)
	}
	return resp, nil
}

// dispatch is the single synchronous core behind all calling conventions:
// Adapting -> Sending -> Classifying -> {success | Retrying -> Adapting | failure}.
// A retry re-sends the same wire request; adapt is re-applied on every pass.
func (c *Client) dispatch(ctx context.Context, wire *WireRequest) (*RawResponse, error) {
	for attempt := 1; ; attempt++ {
		adapted := wire
		if c.interceptor != nil {
			var err error
			adapted, err = c.interceptor.Adapt(ctx, wire)
			if err != nil {
				return nil, NewInterceptorError("adapt", err)
			}
			if adapted == nil {
				adapted = wire
			}
		}

		c.logRequest(adapted, attempt)

		resp, err := c.transport.Send(ctx, adapted)
		failure := c.classify(resp, err)

		c.logResponse(adapted, resp, failure, attempt)

		if failure == nil {
			return resp, nil
		}
		if !IsRetryable(failure) {
			// Invalid URL and invalid response outcomes bypass the interceptor.
			return resp, failure
		}
		if c.interceptor == nil {
			return resp, failure
		}

		decision, retryErr := c.interceptor.Retry(ctx, wire, failure)
		if retryErr != nil {
			return resp, NewInterceptorError("retry", retryErr)
		}
		if decision != RetryRequest {
			return resp, failure
		}
	}
}

// classify turns one send attempt into its outcome: nil for 2xx, a session
// error for transport failures, a status error otherwise. Exactly one of
// success/failure holds per attempt.
func (c *Client) classify(resp *RawResponse, err error) error {
	if err != nil {
		return err
	}
	if resp == nil {
		return NewInvalidResponseError("transport returned no response")
	}
	if IsSuccessStatus(resp.StatusCode) {
		return nil
	}
	return NewStatusError(resp.StatusCode, resp.Body)
}
