// Package geo converts between geometries and cells.
//
// GeoJSON is read and written through paulmach/orb. Any input geometry is
// flattened into simple polygons first; polygons are then filled with cells
// by uber/h3-go, one polygon per worker.
package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	gojson "github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/uber/h3-go/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hexzone/cell"
)

var (
	// ErrUnsupportedGeometry is returned for geometries without area, such as
	// points and lines.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")

	// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or
	// longitudes outside [-180, 180].
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// ReadGeoJSON decodes a GeoJSON document: a FeatureCollection, a Feature or a
// bare geometry. Feature collections become an orb.Collection of their
// feature geometries.
func ReadGeoJSON(r io.Reader) (orb.Geometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := gojson.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		out := make(orb.Collection, 0, len(fc.Features))
		for _, f := range fc.Features {
			out = append(out, f.Geometry)
		}
		return out, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return f.Geometry, nil
	case "":
		return nil, fmt.Errorf("geojson: missing type member")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		return g.Geometry(), nil
	}
}

// Polygons flattens g into its simple polygons, in document order. Nil
// geometries contribute nothing; geometries without area are rejected with
// ErrUnsupportedGeometry.
func Polygons(g orb.Geometry) ([]orb.Polygon, error) {
	return appendPolygons(nil, g)
}

func appendPolygons(dst []orb.Polygon, g orb.Geometry) ([]orb.Polygon, error) {
	switch g := g.(type) {
	case nil:
		return dst, nil
	case orb.Polygon:
		return append(dst, g), nil
	case orb.MultiPolygon:
		return append(dst, g...), nil
	case orb.Ring:
		return append(dst, orb.Polygon{g}), nil
	case orb.Bound:
		return append(dst, g.ToPolygon()), nil
	case orb.Collection:
		var err error
		for _, sub := range g {
			if dst, err = appendPolygons(dst, sub); err != nil {
				return nil, err
			}
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// Rasterize fills every polygon with the cells of resolution res whose
// centers lie inside it. The result holds one slice per polygon, ready for
// cellset.MergeChunks. workers <= 0 means one worker per polygon.
func Rasterize(ctx context.Context, polygons []orb.Polygon, res, workers int) ([][]cell.Cell, error) {
	if err := cell.ValidateResolution(res); err != nil {
		return nil, err
	}
	out := make([][]cell.Cell, len(polygons))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, p := range polygons {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cells, err := fill(p, res)
			if err != nil {
				return fmt.Errorf("polygon %d: %w", i, err)
			}
			out[i] = cells
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func fill(p orb.Polygon, res int) ([]cell.Cell, error) {
	if len(p) == 0 || len(p[0]) < 3 {
		return nil, nil
	}
	gp := h3.GeoPolygon{Geofence: toGeoCoords(p[0])}
	for _, hole := range p[1:] {
		if len(hole) >= 3 {
			gp.Holes = append(gp.Holes, toGeoCoords(hole))
		}
	}

	indexes := h3.Polyfill(gp, res)
	cells := make([]cell.Cell, 0, len(indexes))
	for _, idx := range indexes {
		if uint64(idx) == 0 {
			continue
		}
		c, err := cell.FromUint64(uint64(idx))
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

func toGeoCoords(r orb.Ring) []h3.GeoCoord {
	// h3 closes loops itself.
	if len(r) > 1 && r[0] == r[len(r)-1] {
		r = r[:len(r)-1]
	}
	coords := make([]h3.GeoCoord, len(r))
	for i, pt := range r {
		coords[i] = h3.GeoCoord{Latitude: pt.Lat(), Longitude: pt.Lon()}
	}
	return coords
}

// FromLatLng returns the cell of resolution res containing the point at
// lat, lng degrees.
func FromLatLng(lat, lng float64, res int) (cell.Cell, error) {
	if err := cell.ValidateResolution(res); err != nil {
		return 0, err
	}
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, fmt.Errorf("%w: %g, %g", ErrInvalidCoordinate, lat, lng)
	}
	idx := h3.FromGeo(h3.GeoCoord{Latitude: lat, Longitude: lng}, res)
	return cell.FromUint64(uint64(idx))
}

// Center returns the center of c as lat, lng degrees.
func Center(c cell.Cell) (lat, lng float64) {
	g := h3.ToGeo(h3.H3Index(uint64(c)))
	return g.Latitude, g.Longitude
}

// Boundary returns the outline of c as a closed polygon.
func Boundary(c cell.Cell) orb.Polygon {
	b := h3.ToGeoBoundary(h3.H3Index(uint64(c)))
	ring := make(orb.Ring, 0, len(b)+1)
	for _, v := range b {
		ring = append(ring, orb.Point{v.Longitude, v.Latitude})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// FeatureCollection returns one polygon feature per cell. Each feature
// carries the cell string in the "h3" property and its resolution in
// "resolution".
func FeatureCollection(cells []cell.Cell) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range cells {
		f := geojson.NewFeature(Boundary(c))
		f.Properties["h3"] = c.String()
		f.Properties["resolution"] = c.Resolution()
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the feature collection for cells to w.
func WriteGeoJSON(w io.Writer, cells []cell.Cell) error {
	data, err := FeatureCollection(cells).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
