package courier

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gaborage/go-courier/trace"
)

// RetryDecision is the interceptor's verdict after a failed attempt.
type RetryDecision int

const (
	// DoNotRetry terminates the dispatch with the original failure
	DoNotRetry RetryDecision = iota
	// RetryRequest loops back: adapt is re-applied and the request re-sent
	RetryRequest
)

// Interceptor is the caller-supplied policy object of the dispatch pipeline.
//
// Adapt may modify the outgoing request (e.g. refresh an auth header) and is
// called before every send attempt, so it must be idempotent across retries.
// Retry decides whether a failed attempt is re-sent. Both receive the
// dispatch context; an error from either terminates the dispatch.
//
// Implementations are shared by all in-flight dispatches of a client and
// must be safe for concurrent use.
type Interceptor interface {
	Adapt(ctx context.Context, req *WireRequest) (*WireRequest, error)
	Retry(ctx context.Context, req *WireRequest, cause error) (RetryDecision, error)
}

// InterceptorFuncs adapts plain functions to the Interceptor interface.
// Nil funcs fall back to the defaults: identity adapt, DoNotRetry.
type InterceptorFuncs struct {
	AdaptFunc func(ctx context.Context, req *WireRequest) (*WireRequest, error)
	RetryFunc func(ctx context.Context, req *WireRequest, cause error) (RetryDecision, error)
}

// Adapt implements Interceptor
func (f InterceptorFuncs) Adapt(ctx context.Context, req *WireRequest) (*WireRequest, error) {
	if f.AdaptFunc == nil {
		return req, nil
	}
	return f.AdaptFunc(ctx, req)
}

// Retry implements Interceptor
func (f InterceptorFuncs) Retry(ctx context.Context, req *WireRequest, cause error) (RetryDecision, error) {
	if f.RetryFunc == nil {
		return DoNotRetry, nil
	}
	return f.RetryFunc(ctx, req, cause)
}

// ChainInterceptor composes interceptors: adapt runs in order over the
// request; retry asks each in order and the first RetryRequest wins.
type ChainInterceptor struct {
	interceptors []Interceptor
}

// NewChainInterceptor creates a chain from the given interceptors
func NewChainInterceptor(interceptors ...Interceptor) *ChainInterceptor {
	return &ChainInterceptor{interceptors: interceptors}
}

// Adapt implements Interceptor
func (c *ChainInterceptor) Adapt(ctx context.Context, req *WireRequest) (*WireRequest, error) {
	var err error
	for _, ic := range c.interceptors {
		req, err = ic.Adapt(ctx, req)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// Retry implements Interceptor
func (c *ChainInterceptor) Retry(ctx context.Context, req *WireRequest, cause error) (RetryDecision, error) {
	for _, ic := range c.interceptors {
		decision, err := ic.Retry(ctx, req, cause)
		if err != nil {
			return DoNotRetry, err
		}
		if decision == RetryRequest {
			return RetryRequest, nil
		}
	}
	return DoNotRetry, nil
}

// MaxRetriesInterceptor caps the retries granted by an inner interceptor.
// The dispatch core itself imposes no limit; wrapping an aggressive policy
// with this guard is the opt-in way to bound it. The retry budget is carried
// on the wire request, so a single guard serves concurrent dispatches and
// holds no state of its own once a dispatch completes.
type MaxRetriesInterceptor struct {
	inner Interceptor
	max   int
}

// NewMaxRetriesInterceptor wraps inner with a retry ceiling of max
func NewMaxRetriesInterceptor(inner Interceptor, max int) *MaxRetriesInterceptor {
	return &MaxRetriesInterceptor{inner: inner, max: max}
}

// Adapt implements Interceptor
func (m *MaxRetriesInterceptor) Adapt(ctx context.Context, req *WireRequest) (*WireRequest, error) {
	return m.inner.Adapt(ctx, req)
}

// Retry implements Interceptor
func (m *MaxRetriesInterceptor) Retry(ctx context.Context, req *WireRequest, cause error) (RetryDecision, error) {
	if req.retriesGranted >= m.max {
		return DoNotRetry, nil
	}

	decision, err := m.inner.Retry(ctx, req, cause)
	if err != nil || decision != RetryRequest {
		return decision, err
	}
	req.retriesGranted++
	return RetryRequest, nil
}

// RateLimitInterceptor delays outgoing requests to honor a rate limit.
// Adapt blocks on the limiter (respecting context cancellation); it never
// grants retries.
type RateLimitInterceptor struct {
	limiter *rate.Limiter
}

// NewRateLimitInterceptor allows rps requests per second with the given burst
func NewRateLimitInterceptor(rps float64, burst int) *RateLimitInterceptor {
	return &RateLimitInterceptor{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Adapt implements Interceptor
func (r *RateLimitInterceptor) Adapt(ctx context.Context, req *WireRequest) (*WireRequest, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

// Retry implements Interceptor
func (r *RateLimitInterceptor) Retry(_ context.Context, _ *WireRequest, _ error) (RetryDecision, error) {
	return DoNotRetry, nil
}

// TraceInterceptor stamps outgoing requests with correlation headers:
// X-Request-ID plus W3C traceparent/tracestate. An active OpenTelemetry span
// in the context takes precedence; otherwise values are taken from the
// context (see the trace package) or generated.
type TraceInterceptor struct {
	propagator propagation.TextMapPropagator
}

// NewTraceInterceptor creates a trace interceptor using W3C trace context
// propagation.
func NewTraceInterceptor() *TraceInterceptor {
	return &TraceInterceptor{propagator: propagation.TraceContext{}}
}

// Adapt implements Interceptor
func (t *TraceInterceptor) Adapt(ctx context.Context, req *WireRequest) (*WireRequest, error) {
	if req.Header.Get(trace.HeaderXRequestID) == "" {
		req.Header.Set(trace.HeaderXRequestID, trace.EnsureRequestID(ctx))
	}

	if req.Header.Get(trace.HeaderTraceParent) == "" {
		if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			t.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
		} else if tp, ok := trace.ParentFromContext(ctx); ok {
			req.Header.Set(trace.HeaderTraceParent, tp)
			if ts, ok := trace.StateFromContext(ctx); ok {
				req.Header.Set(trace.HeaderTraceState, ts)
			}
		} else {
			req.Header.Set(trace.HeaderTraceParent, trace.GenerateTraceParent())
		}
	}
	return req, nil
}

// Retry implements Interceptor
func (t *TraceInterceptor) Retry(_ context.Context, _ *WireRequest, _ error) (RetryDecision, error) {
	return DoNotRetry, nil
}
