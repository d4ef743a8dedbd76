// Package codec centralizes the persisted and printed formats of hexzone.
//
// Cell sets are stored as a compressed stream of 8-byte little-endian cell
// indexes in canonical order, without any header. Cell maps store
// (8-byte index, fixed-width value) records in iteration order. The
// compression is recognized from its magic bytes when reading, so files
// written with gzip, zstd or lz4 open alike.
//
// The Codec interface covers the JSON encodings used for reports printed by
// the command line tool.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// IndentCodec is a Codec that can also produce indented output.
type IndentCodec interface {
	Codec
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests and static tables.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
