package courier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchAsync(t *testing.T) {
	t.Run("delivers the outcome exactly once", func(t *testing.T) {
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			return okResponse(`{"id":1}`), nil
		}), nil)

		var calls atomic.Int32
		done := make(chan Result, 1)
		client.DispatchAsync(context.Background(), Descriptor{Method: MethodGet, Path: "/x"}, func(r Result) {
			calls.Add(1)
			done <- r
		})

		select {
		case r := <-done:
			require.NoError(t, r.Err)
			assert.Equal(t, 200, r.Response.StatusCode)
		case <-time.After(2 * time.Second):
			t.Fatal("completion callback never invoked")
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("propagates dispatch failure", func(t *testing.T) {
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			return nil, NewSessionError("dial", errors.New("refused"))
		}), nil)

		done := make(chan Result, 1)
		client.DispatchAsync(context.Background(), Descriptor{Method: MethodGet, Path: "/x"}, func(r Result) {
			done <- r
		})

		r := <-done
		require.Error(t, r.Err)
		assert.True(t, IsErrorType(r.Err, SessionError))
	})

	t.Run("nil callback is safe", func(t *testing.T) {
		sent := make(chan struct{})
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			close(sent)
			return okResponse("ok"), nil
		}), nil)

		client.DispatchAsync(context.Background(), Descriptor{Method: MethodGet, Path: "/x"}, nil)

		select {
		case <-sent:
		case <-time.After(2 * time.Second):
			t.Fatal("request never sent")
		}
	})
}

func TestDispatchFuture(t *testing.T) {
	t.Run("await returns the outcome", func(t *testing.T) {
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			return okResponse(`{"id":7}`), nil
		}), nil)

		f := client.DispatchFuture(context.Background(), Descriptor{Method: MethodGet, Path: "/x"})
		resp, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("await is repeatable and safe for concurrent callers", func(t *testing.T) {
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			return okResponse("ok"), nil
		}), nil)

		f := client.DispatchFuture(context.Background(), Descriptor{Method: MethodGet, Path: "/x"})

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := f.Await(context.Background())
				assert.NoError(t, err)
				assert.NotNil(t, resp)
			}()
		}
		wg.Wait()
	})

	t.Run("await honors its own context", func(t *testing.T) {
		release := make(chan struct{})
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			<-release
			return okResponse("ok"), nil
		}), nil)
		defer close(release)

		f := client.DispatchFuture(context.Background(), Descriptor{Method: MethodGet, Path: "/x"})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := f.Await(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("done channel closes on completion", func(t *testing.T) {
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			return okResponse("ok"), nil
		}), nil)

		f := client.DispatchFuture(context.Background(), Descriptor{Method: MethodGet, Path: "/x"})
		select {
		case <-f.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("future never resolved")
		}
	})
}

func TestDispatchAll(t *testing.T) {
	t.Run("results align with input order", func(t *testing.T) {
		client := newTestClient(t, transportFunc(func(_ context.Context, req *WireRequest) (*RawResponse, error) {
			return okResponse(req.URL.Path), nil
		}), nil)

		descriptors := make([]Descriptor, 5)
		for i := range descriptors {
			descriptors[i] = Descriptor{Method: MethodGet, Path: fmt.Sprintf("/item/%d", i)}
		}

		results, err := client.DispatchAll(context.Background(), descriptors, 2)
		require.NoError(t, err)
		require.Len(t, results, 5)
		for i, resp := range results {
			assert.Equal(t, fmt.Sprintf("/item/%d", i), string(resp.Body))
		}
	})

	t.Run("first failure wins", func(t *testing.T) {
		client := newTestClient(t, transportFunc(func(_ context.Context, req *WireRequest) (*RawResponse, error) {
			if req.URL.Path == "/bad" {
				return nil, NewSessionError("dial", errors.New("refused"))
			}
			return okResponse("ok"), nil
		}), nil)

		_, err := client.DispatchAll(context.Background(), []Descriptor{
			{Method: MethodGet, Path: "/a"},
			{Method: MethodGet, Path: "/bad"},
			{Method: MethodGet, Path: "/b"},
		}, 0)
		require.Error(t, err)
		assert.True(t, IsErrorType(err, SessionError))
	})

	t.Run("limit bounds concurrency", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return okResponse("ok"), nil
		}), nil)

		descriptors := make([]Descriptor, 8)
		for i := range descriptors {
			descriptors[i] = Descriptor{Method: MethodGet, Path: "/x"}
		}

		_, err := client.DispatchAll(context.Background(), descriptors, 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("empty input", func(t *testing.T) {
		client := newTestClient(t, transportFunc(func(_ context.Context, _ *WireRequest) (*RawResponse, error) {
			t.Error("no request expected")
			return nil, nil
		}), nil)

		results, err := client.DispatchAll(context.Background(), nil, 4)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
