package surface

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/geometry2D"
	"github.com/notargets/meshbuilder/geometry3D"
)

var (
	ErrDegenerateFacet     = errors.New("facet needs at least 3 non collinear points")
	ErrTriangulation       = errors.New("facet triangulation failed")
	ErrNotTriangulated     = errors.New("source facet is not triangulated")
	ErrAlreadyTriangulated = errors.New("facet is already triangulated")
	ErrContactMismatch     = errors.New("contact facets do not correspond")
)

// Facet is a planar polygon of a figure given by its corner cycle.
// After triangulation Points holds the corners, then the interior points of every
// bounding edge, then the points added by the triangulator. Tris indexes the
// store's trifacets and Local holds the same triangles as indices into Points.
type Facet struct {
	Corners []int
	Edges   []int
	Points  []int
	Tris    []int
	Local   []Trifacet
	// TwinOf[i] is the source trifacet matching Tris[i] for a facet built by Take
	TwinOf   []int
	boundary int
}

func NewFacet(corners ...int) *Facet {
	return &Facet{Corners: corners}
}

func (f *Facet) Triangulated() bool { return len(f.Tris) != 0 }

// BoundaryCount is the number of leading Points that lie on the facet boundary
func (f *Facet) BoundaryCount() int { return f.boundary }

// AddEdgesByPoints resolves the edges of the corner cycle in st, sharing existing ones
func (f *Facet) AddEdgesByPoints(st *Store) {
	if len(f.Edges) != 0 {
		return
	}
	n := len(f.Corners)
	for i := range f.Corners {
		f.Edges = append(f.Edges, st.EdgeIndex(f.Corners[i], f.Corners[(i+1)%n]))
	}
}

// Make triangulates the facet in its own plane. New points are appended to st.
func (f *Facet) Make(st *Store, step float64, sf SizeField, tri Triangulator) (err error) {
	if f.Triangulated() {
		return ErrAlreadyTriangulated
	}
	if len(f.Corners) < 3 {
		return fmt.Errorf("%w: %d corners", ErrDegenerateFacet, len(f.Corners))
	}
	f.AddEdgesByPoints(st)
	f.Points = append([]int(nil), f.Corners...)
	for _, ei := range f.Edges {
		e := st.Edges[ei]
		if err = e.Triangulate(st, step, sf); err != nil {
			return
		}
		f.Points = append(f.Points, e.Points[1:len(e.Points)-1]...)
	}
	var frame geometry3D.Frame
	if frame, err = geometry3D.NewFrame(st.Point(f.Points[0]), st.Point(f.Points[1]), st.Point(f.Points[2])); err != nil {
		return fmt.Errorf("%w: %v", ErrDegenerateFacet, err)
	}
	local := make(map[int]int, len(f.Points))
	in := &geometry2D.PSLG{
		X: make([]float64, len(f.Points)),
		Y: make([]float64, len(f.Points)),
	}
	for i, p := range f.Points {
		local[p] = i
		in.X[i], in.Y[i] = frame.ProjX(st.Point(p)), frame.ProjY(st.Point(p))
	}
	for _, ei := range f.Edges {
		chain := st.Edges[ei].Points
		for j := 0; j < len(chain)-1; j++ {
			in.Segments = append(in.Segments, [2]int{local[chain[j]], local[chain[j+1]]})
		}
	}
	var out *geometry2D.Triangulation
	if out, err = tri.Triangulate(in, fmt.Sprintf("pzqQYa%g", step*step/2)); err != nil {
		return fmt.Errorf("%w: %v", ErrTriangulation, err)
	}
	if len(out.Triangles) == 0 || len(out.X) < len(in.X) {
		return fmt.Errorf("%w: %d triangles from %d of %d points", ErrTriangulation,
			len(out.Triangles), len(out.X), len(in.X))
	}
	f.boundary = len(in.X)
	for i := len(in.X); i < len(out.X); i++ {
		f.Points = append(f.Points, st.AddPoint(frame.Lift(out.X[i], out.Y[i])))
	}
	for _, t := range out.Triangles {
		f.Local = append(f.Local, Trifacet{t[0], t[1], t[2]})
		f.Tris = append(f.Tris, st.AddTrifacet(Trifacet{f.Points[t[0]], f.Points[t[1]], f.Points[t[2]]}))
	}
	return
}

// Take reproduces the triangulation of src on this facet. Corner i of the facet pairs
// with corner i of src. Edge points keep their parameter along the paired edge and
// the remaining points are carried over by twinMap. Triangles are replayed in src
// order and TwinOf records the pairing.
func (f *Facet) Take(st *Store, src *Facet) (err error) {
	switch {
	case !src.Triangulated():
		return ErrNotTriangulated
	case f.Triangulated():
		return ErrAlreadyTriangulated
	case len(f.Corners) < 3:
		return fmt.Errorf("%w: %d corners", ErrDegenerateFacet, len(f.Corners))
	case len(f.Corners) != len(src.Corners):
		return fmt.Errorf("%w: %d corners against %d", ErrContactMismatch, len(f.Corners), len(src.Corners))
	}
	f.AddEdgesByPoints(st)
	carry, err := twinMap(st, f.Corners, src.Corners)
	if err != nil {
		return
	}
	var (
		n      = len(f.Corners)
		mapped = make(map[int]int)
	)
	for i, ei := range src.Edges {
		var (
			a, b  = f.Corners[i], f.Corners[(i+1)%n]
			te    = st.Edges[f.Edges[i]]
			sc    = st.Edges[ei].Chain(src.Corners[i])
			chain []int
		)
		if te.Triangulated() {
			if chain = te.Chain(a); len(chain) != len(sc) {
				return fmt.Errorf("%w: edge %d-%d has %d points, its twin has %d", ErrContactMismatch,
					a, b, len(chain), len(sc))
			}
		} else {
			var (
				s0     = st.Point(sc[0])
				length = r3.Norm(r3.Sub(st.Point(sc[len(sc)-1]), s0))
				pa, pb = st.Point(a), st.Point(b)
			)
			chain = []int{a}
			for _, p := range sc[1 : len(sc)-1] {
				t := r3.Norm(r3.Sub(st.Point(p), s0)) / length
				chain = append(chain, st.AddPoint(r3.Add(pa, r3.Scale(t, r3.Sub(pb, pa)))))
			}
			chain = append(chain, b)
			te.Points = chain
			if te.Start != a {
				te.Points = te.Chain(a)
			}
		}
		for j, p := range sc {
			mapped[p] = chain[j]
		}
	}
	f.Points = make([]int, len(src.Points))
	for k, p := range src.Points {
		if k < src.boundary {
			q, ok := mapped[p]
			if !ok {
				return fmt.Errorf("%w: source point %d is not on a paired edge", ErrContactMismatch, p)
			}
			f.Points[k] = q
			continue
		}
		f.Points[k] = st.AddPoint(carry(st.Point(p)))
	}
	f.boundary = src.boundary
	for i, l := range src.Local {
		f.Local = append(f.Local, l)
		f.Tris = append(f.Tris, st.AddTrifacet(Trifacet{f.Points[l[0]], f.Points[l[1]], f.Points[l[2]]}))
		f.TwinOf = append(f.TwinOf, src.Tris[i])
	}
	return
}

// twinMap returns the map carrying points of the src facet onto the plane of corners.
// It is the projection along the mean corner displacement when that
// projection lands every src corner on its paired corner, otherwise the affine map
// fitted to the corner pairs.
func twinMap(st *Store, corners, src []int) (carry func(r3.Vec) r3.Vec, err error) {
	var (
		p0, p1, p2 = st.Point(corners[0]), st.Point(corners[1]), st.Point(corners[2])
		normal     r3.Vec
		dif        r3.Vec
		scale      float64
	)
	if normal, err = geometry3D.Normal(p0, p1, p2); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateFacet, err)
	}
	for i := range corners {
		dif = r3.Add(dif, r3.Sub(st.Point(corners[i]), st.Point(src[i])))
		scale = math.Max(scale, r3.Norm(r3.Sub(st.Point(corners[i]), p0)))
	}
	if r3.Norm(dif) < geometry3D.Tolerance {
		dif = normal
	} else {
		dif = r3.Unit(dif)
	}
	if math.Abs(r3.Dot(dif, normal)) > 1e-12 {
		m0 := geometry3D.Centroid(p0, p1, p2)
		carry = func(p r3.Vec) r3.Vec {
			return r3.Add(p, r3.Scale(r3.Dot(r3.Sub(m0, p), normal)/r3.Dot(dif, normal), dif))
		}
		exact := true
		for i := range corners {
			if r3.Norm(r3.Sub(carry(st.Point(src[i])), st.Point(corners[i]))) > 1e-9*scale {
				exact = false
				break
			}
		}
		if exact {
			return
		}
	}
	return affineMap(st, corners, src)
}

// affineMap fits, in the least squares sense, the affine map from the planar
// coordinates of the src corners onto the paired corners
func affineMap(st *Store, corners, src []int) (carry func(r3.Vec) r3.Vec, err error) {
	var frame geometry3D.Frame
	if frame, err = geometry3D.NewFrame(st.Point(src[0]), st.Point(src[1]), st.Point(src[2])); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateFacet, err)
	}
	n := len(corners)
	M, Y := mat.NewDense(n, 3, nil), mat.NewDense(n, 3, nil)
	for i := range corners {
		s, c := st.Point(src[i]), st.Point(corners[i])
		M.SetRow(i, []float64{frame.ProjX(s), frame.ProjY(s), 1})
		Y.SetRow(i, []float64{c.X, c.Y, c.Z})
	}
	var A mat.Dense
	if err = A.Solve(M, Y); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContactMismatch, err)
	}
	carry = func(p r3.Vec) r3.Vec {
		u, v := frame.ProjX(p), frame.ProjY(p)
		return r3.Vec{
			X: u*A.At(0, 0) + v*A.At(1, 0) + A.At(2, 0),
			Y: u*A.At(0, 1) + v*A.At(1, 1) + A.At(2, 1),
			Z: u*A.At(0, 2) + v*A.At(1, 2) + A.At(2, 2),
		}
	}
	return
}
