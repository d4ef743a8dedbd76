package geo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hexzone/cell"
	"github.com/hupe1980/hexzone/cellset"
)

const boxGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "box"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-122.6, 37.2], [-121.6, 37.2], [-121.6, 38.2], [-122.6, 38.2], [-122.6, 37.2]]]
      }
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[10.0, 50.0], [10.5, 50.0], [10.5, 50.5], [10.0, 50.5], [10.0, 50.0]]],
          [[[11.0, 50.0], [11.5, 50.0], [11.5, 50.5], [11.0, 50.5], [11.0, 50.0]]]
        ]
      }
    }
  ]
}`

func TestReadGeoJSON(t *testing.T) {
	t.Run("feature collection", func(t *testing.T) {
		g, err := ReadGeoJSON(strings.NewReader(boxGeoJSON))
		require.NoError(t, err)

		polys, err := Polygons(g)
		require.NoError(t, err)
		assert.Len(t, polys, 3)
	})

	t.Run("feature", func(t *testing.T) {
		doc := `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`
		g, err := ReadGeoJSON(strings.NewReader(doc))
		require.NoError(t, err)
		assert.IsType(t, orb.Polygon{}, g)
	})

	t.Run("geometry collection", func(t *testing.T) {
		doc := `{"type":"GeometryCollection","geometries":[
			{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},
			{"type":"MultiPolygon","coordinates":[[[[2,2],[3,2],[3,3],[2,2]]]]}
		]}`
		g, err := ReadGeoJSON(strings.NewReader(doc))
		require.NoError(t, err)
		polys, err := Polygons(g)
		require.NoError(t, err)
		assert.Len(t, polys, 2)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ReadGeoJSON(strings.NewReader(`{"features": []}`))
		assert.Error(t, err)
		_, err = ReadGeoJSON(strings.NewReader(`not json`))
		assert.Error(t, err)
	})
}

func TestPolygons(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}

	tests := []struct {
		name string
		g    orb.Geometry
		want int
	}{
		{"nil", nil, 0},
		{"polygon", square, 1},
		{"multipolygon", orb.MultiPolygon{square, square}, 2},
		{"ring", square[0], 1},
		{"bound", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, 1},
		{"nested collection", orb.Collection{square, orb.Collection{orb.MultiPolygon{square}, nil}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			polys, err := Polygons(tt.g)
			require.NoError(t, err)
			assert.Len(t, polys, tt.want)
		})
	}

	for _, g := range []orb.Geometry{orb.Point{1, 2}, orb.LineString{{0, 0}, {1, 1}}, orb.Collection{square, orb.MultiPoint{{0, 0}}}} {
		_, err := Polygons(g)
		assert.ErrorIs(t, err, ErrUnsupportedGeometry)
	}
}

func TestFromLatLng(t *testing.T) {
	c, err := FromLatLng(37.3615593, -122.0553238, 7)
	require.NoError(t, err)
	assert.Equal(t, cell.MustParse("87283472bffffff"), c)

	lat, lng := Center(c)
	assert.InDelta(t, 37.36, lat, 0.05)
	assert.InDelta(t, -122.05, lng, 0.05)

	_, err = FromLatLng(91, 0, 7)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	_, err = FromLatLng(0, 181, 7)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	_, err = FromLatLng(0, 0, 16)
	assert.ErrorIs(t, err, cell.ErrInvalidResolution)
}

func TestRasterize(t *testing.T) {
	g, err := ReadGeoJSON(strings.NewReader(boxGeoJSON))
	require.NoError(t, err)
	polys, err := Polygons(g)
	require.NoError(t, err)

	chunks, err := Rasterize(t.Context(), polys, 6, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk)
		for _, c := range chunk {
			assert.Equal(t, 6, c.Resolution())
		}
	}

	set, err := cellset.MergeChunks(t.Context(), chunks, 2)
	require.NoError(t, err)

	center, err := FromLatLng(37.7, -122.1, 6)
	require.NoError(t, err)
	found := false
	for _, c := range set {
		if c.Contains(center) {
			found = true
		}
	}
	assert.True(t, found, "center of the box is covered")

	_, err = Rasterize(t.Context(), polys, 17, 1)
	assert.ErrorIs(t, err, cell.ErrInvalidResolution)
}

func TestBoundaryAndExport(t *testing.T) {
	c := cell.MustParse("85283473fffffff")
	poly := Boundary(c)
	require.Len(t, poly, 1)
	assert.Len(t, poly[0], 7, "six vertices plus the closing point")
	assert.Equal(t, poly[0][0], poly[0][6])

	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, []cell.Cell{c, cell.MustParse("8009fffffffffff")}))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "85283473fffffff", fc.Features[0].Properties["h3"])
	assert.Equal(t, "Polygon", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, 0, int(fc.Features[1].Properties["resolution"].(float64)))
}
