package transport

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
)

// JSONCodec decodes injection value blobs as JSON, satisfying
// kernel.Deserializer (spec.md §4.3 "opaque deserializer provided by
// the environment"). It decodes into interface{}, producing the usual
// json.Unmarshal dynamic shapes (float64, string, bool, map, slice).
type JSONCodec struct{}

// Decode implements kernel.Deserializer.
func (JSONCodec) Decode(blob []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(blob, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GobCodec decodes injection value blobs encoded with encoding/gob,
// for callers that inject already-typed Go values rather than JSON
// text.
type GobCodec struct{}

// Decode implements kernel.Deserializer.
func (GobCodec) Decode(blob []byte) (interface{}, error) {
	var v interface{}
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
