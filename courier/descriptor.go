package courier

import (
	"net/http"
	"net/url"
)

// Method is the HTTP method of a Descriptor
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// Encoding selects how a Descriptor body payload is serialized on the wire
type Encoding string

const (
	// EncodingJSON serializes the payload as a JSON document
	EncodingJSON Encoding = "json"
	// EncodingURLForm serializes the payload as application/x-www-form-urlencoded
	EncodingURLForm Encoding = "url_form"
)

// QueryParam is a single query string pair. Descriptor queries are ordered,
// so they are carried as a slice rather than a map.
type QueryParam struct {
	Key   string
	Value string
}

// Body pairs a payload with its wire encoding.
//
// A payload that cannot be serialized (e.g. a JSON-incompatible value) does
// NOT fail the request: the body is simply omitted. Callers who need loud
// failure should marshal up front and check the error themselves.
type Body struct {
	Payload  any
	Encoding Encoding
}

// JSONBody is a convenience constructor for a JSON-encoded body
func JSONBody(payload any) *Body {
	return &Body{Payload: payload, Encoding: EncodingJSON}
}

// FormBody is a convenience constructor for a URL-encoded form body
func FormBody(payload any) *Body {
	return &Body{Payload: payload, Encoding: EncodingURLForm}
}

// Descriptor is the declarative description of a logical request, prior to
// building a wire-level request. It is passed by value through the pipeline
// and never mutated.
//
// Header values are applied only when they are strings; values of any other
// type are silently skipped. This permissive behavior is intentional.
type Descriptor struct {
	Method  Method
	Path    string
	Query   []QueryParam
	Headers map[string]any
	Body    *Body
}

// MediaPart is one file part of a multipart/form-data upload.
type MediaPart struct {
	Data      []byte
	FieldName string
	FileName  string
	MIMEType  string
}

// WireRequest is the mutable wire-level request built from a Descriptor.
// Each dispatch owns its WireRequest exclusively; a retry re-sends the same
// WireRequest after the interceptor has had another chance to adapt it.
type WireRequest struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte

	// retriesGranted counts the retries MaxRetriesInterceptor has granted
	// for this request. Carried on the request itself so the budget dies
	// with the dispatch.
	retriesGranted int
}

// Clone returns a deep copy of the wire request. Interceptors that want to
// adapt without touching the original can clone first.
func (w *WireRequest) Clone() *WireRequest {
	if w == nil {
		return nil
	}
	u := *w.URL
	body := make([]byte, len(w.Body))
	copy(body, w.Body)
	return &WireRequest{
		Method: w.Method,
		URL:    &u,
		Header: w.Header.Clone(),
		Body:   body,
	}
}

// RawResponse is the transport-level result of one send attempt.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess returns true if the status code is 2xx
func (r *RawResponse) IsSuccess() bool {
	return IsSuccessStatus(r.StatusCode)
}
