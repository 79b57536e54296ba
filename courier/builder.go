package courier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json"
	contentTypeForm   = "application/x-www-form-urlencoded"
)

// BuildRequest assembles a wire-level request from a declarative Descriptor.
//
// Scheme and host always come from the base URL; the descriptor path is
// appended to the base path and can never redirect the request to another
// host. A port > 0 overrides the base URL port. Media parts (with an
// optional explicit boundary) switch the body to multipart/form-data.
//
// Body serialization failures do not fail the build: the body is omitted and
// the request goes out without one. See the Body type for the rationale.
func BuildRequest(base *url.URL, port int, d Descriptor, medias []MediaPart, boundary string) (*WireRequest, error) {
	if base == nil || base.Scheme == "" || base.Host == "" {
		return nil, NewInvalidURLError("base URL must have scheme and host", nil)
	}

	host := base.Host
	if port > 0 {
		host = base.Hostname() + ":" + strconv.Itoa(port)
	}
	path := joinPath(base.Path, d.Path)
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// The path is carried strictly as path content: control characters and
	// malformed escapes fail the build before anything is sent, and reserved
	// characters like '?' or '#' are percent-encoded on the wire instead of
	// being reinterpreted as query or fragment.
	for _, r := range path {
		if r < 0x20 || r == 0x7f {
			return nil, NewInvalidURLError("control character in request path", nil)
		}
	}
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return nil, NewInvalidURLError("descriptor path", err)
	}

	// Scheme and host are set structurally, never parsed out of descriptor
	// input, so a path can never redirect the request to another host.
	final := &url.URL{
		Scheme:   base.Scheme,
		Host:     host,
		Path:     unescaped,
		RawPath:  path,
		RawQuery: appendQuery(base.RawQuery, d.Query),
	}

	header := make(http.Header)
	for key, value := range d.Headers {
		s, ok := value.(string)
		if !ok {
			// Non-string header values are skipped, not rejected.
			continue
		}
		header.Set(key, s)
	}

	var body []byte
	if len(medias) > 0 || boundary != "" {
		var contentType string
		body, contentType, err = encodeMultipart(d.Body, medias, boundary)
		if err != nil {
			return nil, err
		}
		header.Set(contentTypeHeader, contentType)
	} else if d.Body != nil {
		switch d.Body.Encoding {
		case EncodingURLForm:
			body = encodeURLForm(d.Body.Payload)
			if body != nil && header.Get(contentTypeHeader) == "" {
				header.Set(contentTypeHeader, contentTypeForm)
			}
		default:
			body = encodeJSON(d.Body.Payload)
			if body != nil && header.Get(contentTypeHeader) == "" {
				header.Set(contentTypeHeader, contentTypeJSON)
			}
		}
	}

	method := d.Method
	if method == "" {
		method = MethodGet
	}

	return &WireRequest{
		Method: string(method),
		URL:    final,
		Header: header,
		Body:   body,
	}, nil
}

// joinPath appends a descriptor path to the base path.
func joinPath(basePath, p string) string {
	if p == "" {
		return basePath
	}
	return strings.TrimSuffix(basePath, "/") + "/" + strings.TrimPrefix(p, "/")
}

// appendQuery appends ordered descriptor query params to an existing raw query.
func appendQuery(rawQuery string, params []QueryParam) string {
	if len(params) == 0 {
		return rawQuery
	}
	var sb strings.Builder
	sb.WriteString(rawQuery)
	for _, p := range params {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// encodeJSON serializes the payload to JSON bytes, or nil when the payload
// cannot be serialized (the body is then omitted from the request).
func encodeJSON(payload any) []byte {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// encodeURLForm serializes the payload as form-urlencoded key=value pairs,
// or nil when the payload cannot be reduced to a key/value map.
func encodeURLForm(payload any) []byte {
	m, err := payloadMap(payload)
	if err != nil {
		return nil
	}
	values := make(url.Values, len(m))
	for k, v := range m {
		values.Set(k, stringify(v))
	}
	return []byte(values.Encode())
}

// encodeMultipart builds a multipart/form-data body: simple payload fields
// first (deterministic sorted-key order), then media parts in list order,
// then the closing boundary marker. Returns the body and its Content-Type.
func encodeMultipart(b *Body, medias []MediaPart, boundary string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if boundary != "" {
		if err := w.SetBoundary(boundary); err != nil {
			return nil, "", NewBuildError("multipart boundary", err)
		}
	}

	if b != nil && b.Payload != nil {
		// Serialization failure keeps the lossy body contract: fields are
		// dropped, the media parts still go out.
		if m, err := payloadMap(b.Payload); err == nil {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if err := w.WriteField(k, stringify(m[k])); err != nil {
					return nil, "", NewBuildError("write multipart field", err)
				}
			}
		}
	}

	for _, media := range medias {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				escapeQuotes(media.FieldName), escapeQuotes(media.FileName)))
		if media.MIMEType != "" {
			h.Set(contentTypeHeader, media.MIMEType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", NewBuildError("create multipart part", err)
		}
		if _, err := part.Write(media.Data); err != nil {
			return nil, "", NewBuildError("write multipart part", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", NewBuildError("finalize multipart body", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// payloadMap reduces an arbitrary payload to a key/value map via JSON.
func payloadMap(payload any) (map[string]any, error) {
	switch m := payload.(type) {
	case map[string]any:
		return m, nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// escapeQuotes replaces special characters in multipart header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
