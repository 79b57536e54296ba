package courier

import (
	crand "crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"time"

	"github.com/gaborage/go-courier/logger"
)

const (
	// DefaultTimeout is the default request timeout duration
	DefaultTimeout = 30 * time.Second
)

// Client drives declarative requests through the build/adapt/send/classify
// pipeline. A Client is immutable after construction and safe for concurrent
// use; each dispatch owns its wire request and outcome exclusively.
type Client struct {
	base           *url.URL
	port           int
	transport      Transport
	interceptor    Interceptor
	decoder        Decoder
	log            logger.Logger
	verbosity      Verbosity
	defaultHeaders map[string]string
}

// NewClient creates a client for the given base URL with default
// configuration: 30s timeout, default cache policy, summary logging,
// no interceptor.
func NewClient(baseURL string, log logger.Logger) (*Client, error) {
	return NewBuilder(log).WithBaseURL(baseURL).Build()
}

// Builder provides a fluent interface for configuring a Client
type Builder struct {
	baseURL        string
	port           int
	timeout        time.Duration
	cachePolicy    CachePolicy
	transport      Transport
	httpClient     *http.Client
	interceptor    Interceptor
	decoder        Decoder
	log            logger.Logger
	verbosity      Verbosity
	defaultHeaders map[string]string
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		timeout:        DefaultTimeout,
		cachePolicy:    CacheDefault,
		log:            log,
		verbosity:      VerbositySummary,
		defaultHeaders: make(map[string]string),
	}
}

// WithBaseURL sets the base URL; scheme and host of every dispatched request
// come exclusively from it.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.baseURL = baseURL
	return b
}

// WithPort overrides the port of the base URL
func (b *Builder) WithPort(port int) *Builder {
	b.port = port
	return b
}

// WithTimeout sets the request timeout of the default transport
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithCachePolicy sets the cache policy of the default transport
func (b *Builder) WithCachePolicy(policy CachePolicy) *Builder {
	b.cachePolicy = policy
	return b
}

// WithTransport replaces the default transport entirely
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithHTTPClient makes the default transport wrap an existing http.Client
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithInterceptor sets the adapt/retry policy for all dispatches
func (b *Builder) WithInterceptor(ic Interceptor) *Builder {
	b.interceptor = ic
	return b
}

// WithDecoder replaces the default JSON response decoder
func (b *Builder) WithDecoder(d Decoder) *Builder {
	b.decoder = d
	return b
}

// WithVerbosity sets the request/response logging verbosity
func (b *Builder) WithVerbosity(v Verbosity) *Builder {
	b.verbosity = v
	return b
}

// WithDefaultHeader adds a header applied to every request unless the
// descriptor overrides it.
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.defaultHeaders[key] = value
	return b
}

// Build creates the client. Fails with an invalid URL error when the base
// URL is missing or malformed.
func (b *Builder) Build() (*Client, error) {
	if b.baseURL == "" {
		return nil, NewInvalidURLError("base URL is required", nil)
	}
	base, err := url.Parse(b.baseURL)
	if err != nil {
		return nil, NewInvalidURLError("parse base URL", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, NewInvalidURLError("base URL must have scheme and host", nil)
	}

	transport := b.transport
	if transport == nil {
		if b.httpClient != nil {
			transport = NewHTTPTransportWithClient(b.httpClient, b.cachePolicy)
		} else {
			transport = NewHTTPTransport(b.timeout, b.cachePolicy)
		}
	}

	decoder := b.decoder
	if decoder == nil {
		decoder = &JSONDecoder{}
	}

	return &Client{
		base:           base,
		port:           b.port,
		transport:      transport,
		interceptor:    b.interceptor,
		decoder:        decoder,
		log:            b.log,
		verbosity:      b.verbosity,
		defaultHeaders: b.defaultHeaders,
	}, nil
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// applyDefaults merges the client's default headers into a copy of the
// descriptor; descriptor headers win.
func (c *Client) applyDefaults(d Descriptor) Descriptor {
	if len(c.defaultHeaders) == 0 {
		return d
	}
	merged := make(map[string]any, len(c.defaultHeaders)+len(d.Headers))
	for k, v := range c.defaultHeaders {
		merged[k] = v
	}
	for k, v := range d.Headers {
		merged[k] = v
	}
	d.Headers = merged
	return d
}

// randomBoundary generates a multipart boundary in the same shape the
// standard library uses.
func randomBoundary() string {
	var buf [30]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return "courierboundary"
	}
	return hex.EncodeToString(buf[:])
}
