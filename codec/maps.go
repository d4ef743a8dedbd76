package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/hexzone/cell"
	"github.com/hupe1980/hexzone/hextree"
)

// ValueCodec encodes the fixed-width values of a cell map.
type ValueCodec[V any] interface {
	// Size returns the encoded width in bytes.
	Size() int
	// Put encodes v into b, which has length Size.
	Put(b []byte, v V)
	// Get decodes a value from b, which has length Size.
	Get(b []byte) (V, error)
}

// Uint32 encodes uint32 values as 4 little-endian bytes.
type Uint32 struct{}

// Size implements ValueCodec.
func (Uint32) Size() int { return 4 }

// Put implements ValueCodec.
func (Uint32) Put(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// Get implements ValueCodec.
func (Uint32) Get(b []byte) (uint32, error) { return binary.LittleEndian.Uint32(b), nil }

// WriteMap writes every entry of m in iteration order.
func WriteMap[V any](w io.Writer, m *hextree.Map[V], vc ValueCodec[V], optFns ...Option) error {
	o := newOptions(optFns)
	zw, err := newCompressor(w, o.compression, o.level)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(zw, o.bufferSize)

	rec := make([]byte, cellSize+vc.Size())
	for c, v := range m.All() {
		binary.LittleEndian.PutUint64(rec, uint64(c))
		vc.Put(rec[cellSize:], v)
		if _, err := bw.Write(rec); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// ReadMap reads a map stream and inserts every record into a new Map using
// compactor. A record whose cell is complete but whose value is cut short is
// always ErrTruncated; a partial cell follows the leniency of WithStrict.
func ReadMap[V any](r io.Reader, vc ValueCodec[V], compactor hextree.Compactor[V], optFns ...Option) (*hextree.Map[V], error) {
	o := newOptions(optFns)
	m := hextree.New[V](compactor)

	dec, err := newDecompressor(r, o)
	if errors.Is(err, errEmptyStream) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	src := &eofTracker{r: dec}
	br := o.newBufReader(src)
	key := make([]byte, cellSize)
	val := make([]byte, vc.Size())

	for {
		if err := readRecord(br, src, key, o.strict); err != nil {
			if errors.Is(err, io.EOF) {
				return m, nil
			}
			return nil, err
		}
		c, err := cell.FromUint64(binary.LittleEndian.Uint64(key))
		if err != nil {
			return nil, err
		}
		if err := readRecord(br, src, val, true); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: missing value for cell %s", ErrTruncated, c)
			}
			return nil, err
		}
		v, err := vc.Get(val)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", c, err)
		}
		m.Insert(c, v)
	}
}
