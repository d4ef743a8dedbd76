package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/hexzone/cell"
	"github.com/hupe1980/hexzone/cellset"
)

const cellSize = 8

// CellWriter streams cells into a compressed record stream.
type CellWriter struct {
	zw  io.WriteCloser
	bw  *bufio.Writer
	buf [cellSize]byte
	n   int64
}

// NewCellWriter returns a CellWriter writing to w. Close must be called to
// complete the stream; it does not close w.
func NewCellWriter(w io.Writer, optFns ...Option) (*CellWriter, error) {
	o := newOptions(optFns)
	zw, err := newCompressor(w, o.compression, o.level)
	if err != nil {
		return nil, err
	}
	return &CellWriter{zw: zw, bw: bufio.NewWriterSize(zw, o.bufferSize)}, nil
}

// Write appends c to the stream.
func (w *CellWriter) Write(c cell.Cell) error {
	binary.LittleEndian.PutUint64(w.buf[:], uint64(c))
	if _, err := w.bw.Write(w.buf[:]); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of cells written so far.
func (w *CellWriter) Count() int64 { return w.n }

// Close flushes buffered records and finishes the compressed stream.
func (w *CellWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.zw.Close()
		return err
	}
	return w.zw.Close()
}

// CellReader reads cells from a record stream.
type CellReader struct {
	dec    decompressor
	src    *eofTracker
	br     *bufio.Reader
	strict bool
	buf    [cellSize]byte
	done   bool
}

// NewCellReader returns a CellReader for r. The compression is detected from
// the magic bytes unless forced with WithCompression. An empty r yields an
// empty stream.
func NewCellReader(r io.Reader, optFns ...Option) (*CellReader, error) {
	o := newOptions(optFns)
	dec, err := newDecompressor(r, o)
	if errors.Is(err, errEmptyStream) {
		return &CellReader{done: true}, nil
	}
	if err != nil {
		return nil, err
	}
	src := &eofTracker{r: dec}
	return &CellReader{dec: dec, src: src, br: o.newBufReader(src), strict: o.strict}, nil
}

// Next returns the next cell. It returns io.EOF at the end of the stream.
// Values that are not valid cells are reported as *cell.InvalidCellError.
func (r *CellReader) Next() (cell.Cell, error) {
	if r.done {
		return 0, io.EOF
	}
	if err := readRecord(r.br, r.src, r.buf[:], r.strict); err != nil {
		r.done = true
		return 0, err
	}
	return cell.FromUint64(binary.LittleEndian.Uint64(r.buf[:]))
}

// Close releases the decompressor. It does not close the underlying reader.
func (r *CellReader) Close() error {
	r.done = true
	return r.dec.Close()
}

// readRecord fills buf with the next record. A stream ending exactly on a
// record boundary gives io.EOF. A stream ending inside the record gives
// io.EOF when lenient and ErrTruncated when strict, but only if the
// decompressor itself ended cleanly; otherwise its error is returned.
func readRecord(br *bufio.Reader, src *eofTracker, buf []byte, strict bool) error {
	n, err := io.ReadFull(br, buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && n == 0:
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF) && src.eof:
		if strict {
			return fmt.Errorf("%w: %d trailing bytes", ErrTruncated, n)
		}
		return io.EOF
	default:
		return fmt.Errorf("decompress: %w", err)
	}
}

// WriteCells writes cells to w. Cells that are not in canonical order are
// sorted and deduplicated on a copy first, so the stream is always canonical.
func WriteCells(w io.Writer, cells []cell.Cell, optFns ...Option) error {
	if !cellset.IsCanonical(cells) {
		cells = cellset.Dedup(slices.Clone(cells))
	}
	cw, err := NewCellWriter(w, optFns...)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if err := cw.Write(c); err != nil {
			_ = cw.Close()
			return err
		}
	}
	return cw.Close()
}

// ReadCells reads a whole cell stream.
func ReadCells(r io.Reader, optFns ...Option) (cellset.CellSet, error) {
	cr, err := NewCellReader(r, optFns...)
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	set := cellset.CellSet{}
	for {
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return set, nil
		}
		if err != nil {
			return nil, err
		}
		set = append(set, c)
	}
}

// EncodeCells returns the encoded form of cells.
func EncodeCells(cells []cell.Cell, optFns ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCells(&buf, cells, optFns...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCells decodes a cell stream held in memory.
func DecodeCells(data []byte, optFns ...Option) (cellset.CellSet, error) {
	return ReadCells(bytes.NewReader(data), optFns...)
}
