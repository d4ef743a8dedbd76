package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hexzone/cell"
	"github.com/hupe1980/hexzone/cellset"
	"github.com/hupe1980/hexzone/hextree"
	"github.com/hupe1980/hexzone/testutil"
)

var compressions = []Compression{Gzip, Zstd, LZ4, None}

func sampleSet(t *testing.T, seed int64) cellset.CellSet {
	t.Helper()
	rng := testutil.NewRNG(seed)
	set, err := cellset.Compact(rng.Descendants(rng.Cell(2), 7, 2000))
	require.NoError(t, err)
	require.NotEmpty(t, set)
	return set
}

func readOpts(c Compression) []Option {
	if c == None {
		return []Option{WithCompression(None)}
	}
	return nil
}

func TestCells_RoundTrip(t *testing.T) {
	set := sampleSet(t, 1)

	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			data, err := EncodeCells(set, WithCompression(c))
			require.NoError(t, err)

			if c != None {
				detected, err := Detect(data)
				require.NoError(t, err)
				assert.Equal(t, c, detected)
			} else {
				assert.Len(t, data, 8*len(set))
			}

			got, err := DecodeCells(data, readOpts(c)...)
			require.NoError(t, err)
			assert.Equal(t, set, got)

			// forcing the right compression works too
			got, err = DecodeCells(data, WithCompression(c))
			require.NoError(t, err)
			assert.Equal(t, set, got)
		})
	}
}

func TestCells_Levels(t *testing.T) {
	set := sampleSet(t, 2)
	for _, tt := range []struct {
		c     Compression
		level int
	}{
		{Gzip, 9}, {Gzip, 1}, {Zstd, 19}, {LZ4, 9}, {LZ4, 0},
	} {
		data, err := EncodeCells(set, WithCompression(tt.c), WithLevel(tt.level))
		require.NoError(t, err, "%v/%d", tt.c, tt.level)
		got, err := DecodeCells(data)
		require.NoError(t, err)
		assert.Equal(t, set, got)
	}

	for _, level := range []int{10, 12, -2} {
		_, err := EncodeCells(set, WithCompression(LZ4), WithLevel(level))
		assert.Error(t, err, "lz4/%d", level)
	}
}

func TestCells_LegacyLayout(t *testing.T) {
	set := sampleSet(t, 3)

	// A plain gzip stream of little-endian ids, as written by older tools.
	var raw bytes.Buffer
	for _, c := range set {
		require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint64(c)))
	}
	var gz bytes.Buffer
	w, err := newCompressor(&gz, Gzip, DefaultLevel)
	require.NoError(t, err)
	_, err = w.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := DecodeCells(gz.Bytes())
	require.NoError(t, err)
	assert.Equal(t, set, got)

	encoded, err := EncodeCells(set)
	require.NoError(t, err)
	plain, err := DecodeCells(encoded)
	require.NoError(t, err)
	assert.Equal(t, set, plain)
}

func TestCells_NonCanonicalInput(t *testing.T) {
	a := cell.MustParse("8928308280fffff")
	b := cell.MustParse("85283473fffffff")
	input := []cell.Cell{a, b, a}

	data, err := EncodeCells(input)
	require.NoError(t, err)
	got, err := DecodeCells(data)
	require.NoError(t, err)
	assert.Equal(t, cellset.CellSet{b, a}, got)
	assert.Equal(t, []cell.Cell{a, b, a}, input)
}

func TestCells_Empty(t *testing.T) {
	got, err := DecodeCells(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	data, err := EncodeCells(nil)
	require.NoError(t, err)
	got, err = DecodeCells(data)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = DecodeCells(nil, WithCompression(Gzip))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCells_Truncation(t *testing.T) {
	set := sampleSet(t, 4)

	var raw bytes.Buffer
	for _, c := range set {
		require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint64(c)))
	}
	raw.Write([]byte{1, 2, 3}) // partial trailing record

	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			zw, err := newCompressor(&buf, c, DefaultLevel)
			require.NoError(t, err)
			_, err = zw.Write(raw.Bytes())
			require.NoError(t, err)
			require.NoError(t, zw.Close())

			got, err := DecodeCells(buf.Bytes(), readOpts(c)...)
			require.NoError(t, err)
			assert.Equal(t, set, got)

			_, err = DecodeCells(buf.Bytes(), append(readOpts(c), WithStrict())...)
			assert.ErrorIs(t, err, ErrTruncated)
		})
	}
}

func TestCells_CorruptStream(t *testing.T) {
	set := sampleSet(t, 5)
	data, err := EncodeCells(set, WithCompression(Gzip))
	require.NoError(t, err)

	t.Run("cut compressed stream", func(t *testing.T) {
		_, err := DecodeCells(data[:len(data)/2])
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrTruncated))
	})

	t.Run("unknown magic", func(t *testing.T) {
		_, err := DecodeCells([]byte("definitely not compressed"))
		assert.ErrorIs(t, err, ErrUnknownCompression)
	})
}

func TestCells_InvalidID(t *testing.T) {
	var raw bytes.Buffer
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint64(42)))

	_, err := DecodeCells(raw.Bytes(), WithCompression(None))
	require.ErrorIs(t, err, cell.ErrInvalidCell)

	var ice *cell.InvalidCellError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, uint64(42), ice.Value)
}

func TestCellReader_EmptyClose(t *testing.T) {
	r, err := NewCellReader(bytes.NewReader(nil))
	require.NoError(t, err)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}

func TestCellReader_Stream(t *testing.T) {
	set := sampleSet(t, 6)

	var buf bytes.Buffer
	w, err := NewCellWriter(&buf, WithCompression(Zstd), WithBufferSize(64))
	require.NoError(t, err)
	for _, c := range set {
		require.NoError(t, w.Write(c))
	}
	assert.Equal(t, int64(len(set)), w.Count())
	require.NoError(t, w.Close())

	r, err := NewCellReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	var got cellset.CellSet
	for {
		c, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, c)
	}
	assert.Equal(t, set, got)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]Compression{
		"": Gzip, "gzip": Gzip, "ZSTD": Zstd, "lz4": LZ4, "none": None,
	} {
		got, err := ParseCompression(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
		if name != "" && name != "ZSTD" {
			assert.Equal(t, name, got.String())
		}
	}
	_, err := ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestMap_RoundTrip(t *testing.T) {
	rng := testutil.NewRNG(8)
	m := hextree.New[uint32](hextree.EqCompactor[uint32])
	var inserted []cell.Cell
	for v := range uint32(5) {
		cells := rng.Descendants(rng.Cell(1), 6, 300)
		for _, c := range cells {
			m.Insert(c, v)
		}
		inserted = append(inserted, cells...)
	}

	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteMap[uint32](&buf, m, Uint32{}, WithCompression(c)))

			got, err := ReadMap[uint32](&buf, Uint32{}, hextree.EqCompactor[uint32], readOpts(c)...)
			require.NoError(t, err)

			assert.Equal(t, m.Cells(), got.Cells())
			for _, ic := range inserted {
				want, ok := m.Get(ic)
				require.True(t, ok)
				v, ok := got.Get(ic)
				require.True(t, ok)
				assert.Equal(t, want, v)
			}
		})
	}
}

func TestMap_TruncatedValue(t *testing.T) {
	var raw bytes.Buffer
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint64(cell.MustParse("85283473fffffff"))))
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint32(840)))
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint64(cell.MustParse("8928308280fffff"))))
	raw.Write([]byte{1, 2})

	_, err := ReadMap[uint32](bytes.NewReader(raw.Bytes()), Uint32{}, hextree.EqCompactor[uint32], WithCompression(None))
	assert.ErrorIs(t, err, ErrTruncated)

	m, err := ReadMap[uint32](bytes.NewReader(raw.Bytes()[:12]), Uint32{}, hextree.EqCompactor[uint32], WithCompression(None))
	require.NoError(t, err)
	v, ok := m.Get(cell.MustParse("85283473fffffff"))
	require.True(t, ok)
	assert.Equal(t, uint32(840), v)

	m, err = ReadMap[uint32](bytes.NewReader(nil), Uint32{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestJSONCodecs(t *testing.T) {
	v := map[string][]cell.Cell{"a": {cell.MustParse("85283473fffffff")}}
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())

		data := MustMarshal(c, v)
		assert.JSONEq(t, `{"a":["85283473fffffff"]}`, string(data))

		var back map[string][]cell.Cell
		require.NoError(t, c.Unmarshal(data, &back))
		assert.Equal(t, v, back)

		indented, err := c.(IndentCodec).MarshalIndent(v, "", "  ")
		require.NoError(t, err)
		assert.Contains(t, string(indented), "\n  \"a\"")
	}

	_, ok := ByName("yaml")
	assert.False(t, ok)
}
