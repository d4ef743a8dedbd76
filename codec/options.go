package codec

import "bufio"

type options struct {
	compression Compression
	forced      bool
	level       int
	strict      bool
	bufferSize  int
}

func newOptions(optFns []Option) options {
	o := options{
		compression: Gzip,
		level:       DefaultLevel,
		bufferSize:  64 << 10,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.bufferSize < 16 {
		o.bufferSize = 16
	}
	return o
}

// Option configures readers and writers.
type Option func(*options)

// WithCompression selects the compression of a writer. On a reader it
// disables detection and forces the given compression, which is the only
// way to read None streams.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
		o.forced = true
	}
}

// WithLevel sets the compression level of a writer. The meaning follows the
// selected compression: gzip levels 1-9, zstd levels 1-22, lz4 levels 0-9
// where 0 is the fast mode. DefaultLevel selects each compressor's own
// default.
func WithLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithStrict makes readers fail with ErrTruncated when the stream ends inside
// a record. By default a partial trailing record ends the stream silently,
// which keeps files cut short by older writers readable.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithBufferSize sets the size of the buffers between the record layer and
// the compressor.
func WithBufferSize(n int) Option {
	return func(o *options) {
		o.bufferSize = n
	}
}

func (o options) newBufReader(r *eofTracker) *bufio.Reader {
	return bufio.NewReaderSize(r, o.bufferSize)
}
