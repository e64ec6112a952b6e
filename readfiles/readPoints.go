package readfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadXYBoundary reads a closed planar outline. Text files hold whitespace separated
// "x y" pairs, .geojson files the outer ring of the first polygon found. The closing
// point is dropped when it repeats the first one.
func ReadXYBoundary(filename string) (ring orb.Ring, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return nil, fmt.Errorf("failed to read xy boundary: %w", err)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".geojson", ".json":
		ring, err = geoJSONRing(data)
	default:
		var f []float64
		if f, err = parseFloats(string(data)); err == nil && len(f)%2 != 0 {
			err = fmt.Errorf("%w: odd number of coordinates %d", ErrFormat, len(f))
		}
		for i := 0; err == nil && i+1 < len(f); i += 2 {
			ring = append(ring, orb.Point{f[i], f[i+1]})
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse xy boundary %s: %w", filename, err)
	}
	if len(ring) > 1 && ring.Closed() {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: xy boundary %s has %d points", ErrFormat, filename, len(ring))
	}
	return
}

func geoJSONRing(data []byte) (ring orb.Ring, err error) {
	var fc *geojson.FeatureCollection
	if fc, err = geojson.UnmarshalFeatureCollection(data); err != nil {
		return
	}
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) != 0 {
				return g[0].Clone(), nil
			}
		case orb.MultiPolygon:
			if len(g) != 0 && len(g[0]) != 0 {
				return g[0][0].Clone(), nil
			}
		case orb.Ring:
			return g.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: no polygon feature", ErrFormat)
}

// ReadXYZ reads whitespace separated "x y z" triples
func ReadXYZ(filename string) (points []r3.Vec, err error) {
	var (
		data []byte
		f    []float64
	)
	if data, err = os.ReadFile(filename); err != nil {
		return nil, fmt.Errorf("failed to read points: %w", err)
	}
	if f, err = parseFloats(string(data)); err != nil {
		return nil, fmt.Errorf("failed to parse points %s: %w", filename, err)
	}
	for i := 0; i+2 < len(f); i += 3 {
		points = append(points, r3.Vec{X: f[i], Y: f[i+1], Z: f[i+2]})
	}
	return
}
