package codec

import "errors"

var (
	// ErrTruncated is returned when a stream ends inside a record and the
	// reader is strict, or when a map record lacks its value.
	ErrTruncated = errors.New("truncated record")

	// ErrUnknownCompression is returned when the compression of a stream
	// cannot be recognized or named.
	ErrUnknownCompression = errors.New("unknown compression")
)
