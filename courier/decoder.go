package courier

import (
	"bytes"
	"encoding/json"
)

// Decoder deserializes raw response bytes into a typed value. Decoders are
// pure and synchronous; the client's decoder is caller-suppliable to support
// custom number handling, strictness, or non-JSON payloads.
type Decoder interface {
	Decode(data []byte, v any) error
}

// JSONDecoder is the system-default decoder built on encoding/json.
type JSONDecoder struct {
	// UseNumber preserves numeric precision by decoding numbers as
	// json.Number instead of float64.
	UseNumber bool
	// DisallowUnknownFields rejects response bodies carrying fields the
	// target type does not declare.
	DisallowUnknownFields bool
}

// Decode implements Decoder
func (d *JSONDecoder) Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if d.UseNumber {
		dec.UseNumber()
	}
	if d.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}
