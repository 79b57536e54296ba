// Package courier is a convenience HTTP client: it builds wire requests
// from declarative descriptors, dispatches them over a pluggable transport,
// classifies outcomes, and consults a caller-supplied interceptor for
// adapt/retry policy before decoding JSON responses.
//
// Dispatch pipeline
//   - Descriptor -> BuildRequest -> WireRequest
//   - Interceptor.Adapt -> Transport.Send -> classify
//   - 2xx: success (optionally decoded); otherwise the interceptor's Retry
//     decision loops back to Adapt or terminates.
//
// Classification
//   - Status codes in [200,299] are success; everything else is a status
//     error carrying the code and body.
//   - Transport failures (DNS, connection) are session errors and flow into
//     the retry decision exactly like status errors.
//   - Malformed URLs, failed multipart assembly and uninterpretable responses
//     short-circuit without consulting the interceptor; nothing pre-send is
//     ever retryable.
//   - Decode failures happen strictly after the retry loop has resolved to
//     success and are never retried.
//
// Retries
//   - The core imposes no retry count limit and no backoff. An interceptor
//     that always grants a retry loops forever; wrap it with
//     MaxRetriesInterceptor to bound it.
//   - A retry re-sends the same original wire request; Adapt is re-applied
//     on every pass (e.g. to refresh an auth header) and must be idempotent.
//
// Calling conventions
// Dispatch (blocking), DispatchAsync (completion callback) and
// DispatchFuture (single-value future) share the same dispatch core and are
// semantically identical: same classification, same retry contract, same
// error taxonomy.
//
// Known lossy path: a body payload that fails to serialize is sent with NO
// body rather than failing the request. Marshal up front and check the error
// yourself if you need loud failure.
package courier
