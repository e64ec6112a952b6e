package geometry2D

import (
	"errors"
	"fmt"
)

var ErrNoTriangles = errors.New("triangulation produced no triangles")

// PSLG is the planar straight line graph handed to a triangulator
type PSLG struct {
	X, Y     []float64
	Segments [][2]int
	Holes    []Point
}

// Triangulation is the result of triangulating a PSLG. The first InputCount points are the
// input points in input order, Steiner points follow.
type Triangulation struct {
	X, Y       []float64
	Triangles  [][3]int
	InputCount int
}

// Engine is the pure Go constrained Delaunay triangulator
type Engine struct{}

func (Engine) Triangulate(in *PSLG, switches string) (out *Triangulation, err error) {
	var sw Switches
	if sw, err = ParseSwitches(switches); err != nil {
		return
	}
	return Triangulate(in, sw)
}

// Triangulate builds a constrained Delaunay triangulation of in, then refines it per sw
func Triangulate(in *PSLG, sw Switches) (out *Triangulation, err error) {
	if err = in.validate(); err != nil {
		return
	}
	tm := NewTriMesh(in.X, in.Y)
	// Input point i is vertex i+3, behind the super triangle
	for i := range in.X {
		var v int
		if v, err = tm.AddPoint(in.X[i], in.Y[i]); err != nil {
			return nil, fmt.Errorf("failed to insert point %d (%g, %g): %w", i, in.X[i], in.Y[i], err)
		}
		if v != i+3 {
			return nil, fmt.Errorf("point %d inserted as vertex %d", i, v)
		}
	}
	if sw.PSLG {
		for _, s := range in.Segments {
			if err = tm.InsertSegment(s[0]+3, s[1]+3); err != nil {
				return nil, fmt.Errorf("failed to insert segment %v: %w", s, err)
			}
		}
		if err = tm.MarkExterior(in.Holes); err != nil {
			return
		}
	}
	if err = tm.Refine(sw); err != nil {
		return
	}
	return tm.Export(len(in.X))
}

func (in *PSLG) validate() error {
	if len(in.X) != len(in.Y) {
		return fmt.Errorf("mismatched coordinate lengths %d and %d", len(in.X), len(in.Y))
	}
	if len(in.X) < 3 {
		return fmt.Errorf("need at least 3 points, have %d", len(in.X))
	}
	for _, s := range in.Segments {
		if s[0] < 0 || s[1] < 0 || s[0] >= len(in.X) || s[1] >= len(in.X) {
			return fmt.Errorf("segment %v references a missing point", s)
		}
	}
	return nil
}

// Export drops the super triangle and renumbers vertices so that input points come first
func (tm *TriMesh) Export(inputCount int) (out *Triangulation, err error) {
	n := len(tm.Points) - 3
	out = &Triangulation{
		X:          make([]float64, n),
		Y:          make([]float64, n),
		InputCount: inputCount,
	}
	for i, p := range tm.Points[3:] {
		out.X[i], out.Y[i] = p.X[0], p.X[1]
	}
	for _, tri := range tm.Triangles() {
		out.Triangles = append(out.Triangles, [3]int{tri[0] - 3, tri[1] - 3, tri[2] - 3})
	}
	if len(out.Triangles) == 0 {
		return nil, ErrNoTriangles
	}
	return
}
