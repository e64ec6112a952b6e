//go:build triangle

package geometry2D

import (
	"fmt"

	"github.com/pradeep-pyro/triangle"
)

// TriangleLib runs the Triangle C library with the options read from the switches.
// Input points come back first and in order, as with Engine.
type TriangleLib struct{}

func (TriangleLib) Triangulate(in *PSLG, switches string) (out *Triangulation, err error) {
	var sw Switches
	if sw, err = ParseSwitches(switches); err != nil {
		return
	}
	if err = in.validate(); err != nil {
		return
	}
	var (
		pts   = make([][2]float64, len(in.X))
		geom  = make([]Point, len(in.X))
		segs  = make([][2]int32, len(in.Segments))
		holes = make([][2]float64, len(in.Holes))
	)
	for i := range in.X {
		pts[i] = [2]float64{in.X[i], in.Y[i]}
		geom[i] = Point{X: pts[i]}
	}
	for i, s := range in.Segments {
		segs[i] = [2]int32{int32(s[0]), int32(s[1])}
	}
	for i, h := range in.Holes {
		holes[i] = h.X
	}

	opts := triangle.NewOptions()
	opts.ConformingDelaunay = false
	opts.Area = sw.MaxArea
	if opts.Area <= 0 {
		// Unconstrained, no triangle can exceed the bounding box
		opts.Area = 2 * NewBoundingBox(geom).Area()
	}
	opts.Angle = 0
	if sw.Quality {
		opts.Angle = sw.MinAngle
	}
	if sw.NoBoundarySteiner {
		opts.SegmentSplitting = triangle.NoSplittingInBoundary
	}

	tin := triangle.NewTriangulateIO()
	defer triangle.FreeTriangulateIO(tin)
	tin.SetPoints(pts)
	tin.SetPointMarkers(make([]int32, len(pts)))
	// The setters index element zero, so empty lists are left unset
	if sw.PSLG && len(segs) > 0 {
		tin.SetSegments(segs)
		tin.SetSegmentMarkers(make([]int32, len(segs)))
	}
	if sw.PSLG && len(holes) > 0 {
		tin.SetHoles(holes)
	}
	tout := triangle.Triangulate(tin, opts, !sw.Quiet)
	defer triangle.FreeTriangulateIO(tout)

	var (
		verts = tout.Points()
		faces = tout.Triangles()
	)
	if len(faces) == 0 {
		return nil, ErrNoTriangles
	}
	if len(verts) < len(pts) {
		return nil, fmt.Errorf("triangle returned %d of %d input points", len(verts), len(pts))
	}
	out = &Triangulation{
		X:          make([]float64, len(verts)),
		Y:          make([]float64, len(verts)),
		Triangles:  make([][3]int, len(faces)),
		InputCount: len(in.X),
	}
	for i, v := range verts {
		out.X[i], out.Y[i] = v[0], v[1]
	}
	for i, f := range faces {
		out.Triangles[i] = [3]int{int(f[0]), int(f[1]), int(f[2])}
	}
	return
}
