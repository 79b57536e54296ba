package courier

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the terminal outcome of an asynchronous dispatch.
type Result struct {
	Response *RawResponse
	Err      error
}

// DispatchAsync runs the dispatch on its own goroutine and invokes complete
// with the terminal outcome. Semantics are identical to Dispatch; the
// completion callback is invoked exactly once. Cancel via the context;
// discarding interest simply means passing a callback that ignores the
// result, the underlying request still runs to completion.
func (c *Client) DispatchAsync(ctx context.Context, d Descriptor, complete func(Result), medias ...MediaPart) {
	go func() {
		resp, err := c.Dispatch(ctx, d, medias...)
		if complete != nil {
			complete(Result{Response: resp, Err: err})
		}
	}()
}

// Future is a single-value promise of a dispatch outcome.
type Future struct {
	done chan struct{}
	resp *RawResponse
	err  error
}

// Done returns a channel closed when the outcome is available
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the outcome is available or ctx is cancelled.
// It is safe to call from multiple goroutines.
func (f *Future) Await(ctx context.Context) (*RawResponse, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DispatchFuture starts the dispatch and returns a Future resolving to the
// terminal outcome. Semantics are identical to Dispatch: one value, then
// completion. Dropping the Future abandons the observer, not the request.
func (c *Client) DispatchFuture(ctx context.Context, d Descriptor, medias ...MediaPart) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		f.resp, f.err = c.Dispatch(ctx, d, medias...)
		close(f.done)
	}()
	return f
}

// DispatchAll dispatches the descriptors concurrently, at most limit at a
// time (limit <= 0 means no bound). Results are positionally aligned with
// the input. The first failure cancels the remaining dispatches and is
// returned.
func (c *Client) DispatchAll(ctx context.Context, descriptors []Descriptor, limit int) ([]*RawResponse, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]*RawResponse, len(descriptors))
	for i, d := range descriptors {
		g.Go(func() error {
			resp, err := c.Dispatch(ctx, d)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
