package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Reports are plain maps and slices of cells, so both JSON codecs produce
// the same bytes for them.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// MarshalIndent encodes the value to indented JSON.
func (JSON) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used for command output.
var Default IndentCodec = GoJSON{}
