package figure

import (
	"fmt"
	"strconv"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Slice is a planar cut of a RectBoundary through (center x, center y, Z) with unit Normal
type Slice struct {
	Z      float64
	Normal r3.Vec
}

// RectBoundary is a box cut into stacked blocks by sloping slices. Every slice is a
// contact between the block above and the block below it, the blocks are pulled
// apart along z by ContactShift. Opposite side walls are paired when IsContinuous.
type RectBoundary struct {
	P1, P2       r3.Vec
	Slices       []Slice
	IsContinuous bool
	ContactShift float64
}

func newRectBoundary(p *InputParameters.Profile, section string) (ShapeDescriptor, error) {
	rb := &RectBoundary{
		IsContinuous: flag(p, section, "is_continuous"),
		ContactShift: InputParameters.Request(p, section, "contact_shift", 5000.),
	}
	for i, axis := range []string{"x", "y", "z"} {
		r := InputParameters.Request(p, section, axis, []float64(nil))
		if len(r) != 2 || r[1] <= r[0] {
			return nil, fmt.Errorf("%w: %s.%s must be an increasing pair, have %v", ErrBadShape, section, axis, r)
		}
		switch i {
		case 0:
			rb.P1.X, rb.P2.X = r[0], r[1]
		case 1:
			rb.P1.Y, rb.P2.Y = r[0], r[1]
		case 2:
			rb.P1.Z, rb.P2.Z = r[0], r[1]
		}
	}
	ns := InputParameters.Request(p, section, "number_of_slices", 0)
	for i := 1; i <= ns; i++ {
		prefix := "slice" + strconv.Itoa(i)
		n := InputParameters.Request(p, section, prefix+"_normal", r3.Vec{Z: 1})
		if r3.Norm(n) == 0 {
			return nil, fmt.Errorf("%w: %s.%s_normal is zero", ErrBadShape, section, prefix)
		}
		rb.Slices = append(rb.Slices, Slice{
			Z:      InputParameters.Request(p, section, prefix+"_z", 0.),
			Normal: r3.Unit(n),
		})
	}
	return rb, nil
}

func (rb *RectBoundary) Kind() string { return "Rect_boundary" }

// zPoint is the point above (x, y) on the plane of slice sl
func (rb *RectBoundary) zPoint(sl Slice, x, y float64) r3.Vec {
	return r3.Vec{X: x, Y: y,
		Z: sl.Z + sl.Normal.X*((rb.P1.X+rb.P2.X)/2-x) + sl.Normal.Y*((rb.P1.Y+rb.P2.Y)/2-y)}
}

func (rb *RectBoundary) Shape(surface.Triangulator) (sh *Shape, err error) {
	var (
		p1, p2 = rb.P1, rb.P2
		s      = len(rb.Slices)
		down   = func(k int) r3.Vec { return r3.Vec{Z: -rb.ContactShift * float64(k)} }
	)
	sh = &Shape{}
	sh.Points = append(sh.Points,
		r3.Vec{X: p2.X, Y: p1.Y, Z: p2.Z},
		r3.Vec{X: p1.X, Y: p1.Y, Z: p2.Z},
		r3.Vec{X: p1.X, Y: p2.Y, Z: p2.Z},
		r3.Vec{X: p2.X, Y: p2.Y, Z: p2.Z},
	)
	for i, sl := range rb.Slices {
		for _, k := range []int{i, i + 1} {
			sh.Points = append(sh.Points,
				r3.Add(rb.zPoint(sl, p2.X, p1.Y), down(k)),
				r3.Add(rb.zPoint(sl, p1.X, p1.Y), down(k)),
				r3.Add(rb.zPoint(sl, p1.X, p2.Y), down(k)),
				r3.Add(rb.zPoint(sl, p2.X, p2.Y), down(k)),
			)
		}
	}
	sh.Points = append(sh.Points,
		r3.Add(r3.Vec{X: p2.X, Y: p1.Y, Z: p1.Z}, down(s)),
		r3.Add(r3.Vec{X: p1.X, Y: p1.Y, Z: p1.Z}, down(s)),
		r3.Add(r3.Vec{X: p1.X, Y: p2.Y, Z: p1.Z}, down(s)),
		r3.Add(r3.Vec{X: p2.X, Y: p2.Y, Z: p1.Z}, down(s)),
	)
	b := 8 * s
	sh.Facets = append(sh.Facets, []int{0, 1, 2, 3}, []int{4 + b, 5 + b, 6 + b, 7 + b})
	// Front, left, back and right walls, one facet per block
	for _, w := range [4][4]int{{0, 4, 5, 1}, {1, 5, 6, 2}, {2, 6, 7, 3}, {3, 7, 4, 0}} {
		for i := 0; i <= s; i++ {
			sh.Facets = append(sh.Facets, []int{w[0] + 8*i, w[1] + 8*i, w[2] + 8*i, w[3] + 8*i})
		}
	}
	if rb.IsContinuous {
		for i := 0; i <= s; i++ {
			sh.Contacts = append(sh.Contacts,
				[2]int{2 + i, 2 + 2*(s+1) + i},
				[2]int{2 + (s + 1) + i, 2 + 3*(s+1) + i})
		}
	}
	for i := 0; i < s; i++ {
		sh.Facets = append(sh.Facets,
			[]int{4 + 8*i, 5 + 8*i, 6 + 8*i, 7 + 8*i},
			[]int{8 + 8*i, 9 + 8*i, 10 + 8*i, 11 + 8*i})
		sh.Contacts = append(sh.Contacts, [2]int{len(sh.Facets) - 2, len(sh.Facets) - 1})
	}
	return
}

// FaceTypes buckets the contacts one per contact pair and the boundary as top, bottom
// and then the walls
func (rb *RectBoundary) FaceTypes(f *Figure) (boundaryCounts, contactCounts []int) {
	for _, c := range f.Contacts {
		contactCounts = append(contactCounts, trifacetCount(f, c[0]))
	}
	boundaryCounts = []int{trifacetCount(f, 0), trifacetCount(f, 1)}
	return
}
