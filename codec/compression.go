package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the compressor wrapped around a record stream.
type Compression uint8

const (
	// Gzip is the default; it is the format of all legacy files.
	Gzip Compression = iota
	// Zstd trades a little speed for a better ratio.
	Zstd
	// LZ4 writes lz4 frames and is the fastest to decode.
	LZ4
	// None writes records as they are. It is never detected and must be
	// forced with WithCompression when reading.
	None
)

// DefaultLevel selects the default level of the chosen compressor.
const DefaultLevel = -1

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case None:
		return "none"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression returns the compression with the given name.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	case "none", "raw":
		return None, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// Detect returns the compression announced by the magic bytes at the start
// of data.
func Detect(data []byte) (Compression, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip, nil
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd, nil
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4, nil
	default:
		return 0, ErrUnknownCompression
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newCompressor(w io.Writer, c Compression, level int) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		if level == DefaultLevel {
			level = gzip.DefaultCompression
		}
		return gzip.NewWriterLevel(w, level)
	case Zstd:
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
		if level != DefaultLevel {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		return zstd.NewWriter(w, opts...)
	case LZ4:
		zw := lz4.NewWriter(w)
		if level != DefaultLevel {
			if level < 0 || level >= len(lz4Levels) {
				return nil, fmt.Errorf("lz4: invalid level %d", level)
			}
			if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
				return nil, err
			}
		}
		return zw, nil
	case None:
		return nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}
}

// decompressor is the reading side of a record stream.
type decompressor struct {
	io.Reader
	close func() error
}

func (d decompressor) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

var errEmptyStream = errors.New("empty stream")

// newDecompressor opens r with the forced compression, or detects it.
// It returns errEmptyStream if r holds no bytes at all.
func newDecompressor(r io.Reader, o options) (decompressor, error) {
	br := bufio.NewReader(r)
	c := o.compression
	if !o.forced {
		magic, err := br.Peek(len(zstdMagic))
		if len(magic) == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				return decompressor{}, errEmptyStream
			}
			return decompressor{}, err
		}
		c, err = Detect(magic)
		if err != nil {
			return decompressor{}, fmt.Errorf("%w: magic %x", err, magic)
		}
	}

	switch c {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return decompressor{}, errEmptyStream
			}
			return decompressor{}, fmt.Errorf("gzip: %w", err)
		}
		return decompressor{Reader: zr, close: zr.Close}, nil
	case Zstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return decompressor{}, fmt.Errorf("zstd: %w", err)
		}
		return decompressor{Reader: zr, close: func() error { zr.Close(); return nil }}, nil
	case LZ4:
		return decompressor{Reader: lz4.NewReader(br)}, nil
	case None:
		return decompressor{Reader: br}, nil
	default:
		return decompressor{}, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}
}

// eofTracker remembers whether the decompressor ended cleanly, so a short
// record can be told apart from a damaged compressed stream.
type eofTracker struct {
	r   io.Reader
	eof bool
}

func (t *eofTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err == io.EOF {
		t.eof = true
	}
	return n, err
}
