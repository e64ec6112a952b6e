package geometry2D

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDuplicatePoint = errors.New("duplicate point")
	ErrOnSegment      = errors.New("point lies on a constrained edge")
	ErrOutside        = errors.New("point outside of triangulation")
)

type Point struct {
	X [2]float64
}

// Tri is a counter-clockwise triangle. Edge i is the edge opposite Verts[i],
// Nbrs[i] is the triangle across it (-1 on the hull) and Fixed[i] marks a constrained edge.
type Tri struct {
	Verts   [3]int
	Nbrs    [3]int
	Fixed   [3]bool
	Outside bool
}

// TriMesh is an incremental Delaunay triangulation with constrained edges.
// The first three points are the vertices of an enclosing super triangle.
type TriMesh struct {
	Tris    []Tri
	Points  []Point
	vt      []int // One triangle incident on each vertex
	last    int   // Start of the next point location walk
	touched []int // Triangles created or changed since the last drain
}

func IsIllegalEdge(prX, prY, piX, piY, pjX, pjY, pkX, pkY float64) bool {
	/*
		pr is a new point for candidate triangle pi-pj-pr
		pi-pj is a shared edge between pi-pj-pk and pi-pj-pr
		if pr lies inside the circle defined by pi-pj-pk:
			- The edge pi-pj should be swapped with pr-pk to make two new triangles:
				pi-pr-pk and pj-pk-pr
	*/
	inCircle := func(ax, ay, bx, by, cx, cy, dx, dy float64) (inside bool) {
		// Calculate handedness, counter-clockwise is (positive) and clockwise is (negative)
		signBit := math.Signbit((bx-ax)*(cy-ay) - (cx-ax)*(by-ay))
		ax_ := ax - dx
		ay_ := ay - dy
		bx_ := bx - dx
		by_ := by - dy
		cx_ := cx - dx
		cy_ := cy - dy
		det := (ax_*ax_+ay_*ay_)*(bx_*cy_-cx_*by_) -
			(bx_*bx_+by_*by_)*(ax_*cy_-cx_*ay_) +
			(cx_*cx_+cy_*cy_)*(ax_*by_-bx_*ay_)
		if signBit {
			return det < 0
		} else {
			return det > 0
		}
	}
	return inCircle(piX, piY, pjX, pjY, pkX, pkY, prX, prY)
}

// Orient is twice the signed area of a-b-c, positive when counter-clockwise
func Orient(a, b, c Point) float64 {
	return (b.X[0]-a.X[0])*(c.X[1]-a.X[1]) - (c.X[0]-a.X[0])*(b.X[1]-a.X[1])
}

// NewTriMesh starts a triangulation able to receive points inside the box spanning X, Y
func NewTriMesh(X, Y []float64) (tm *TriMesh) {
	pts := make([]Point, len(X))
	for i, x := range X {
		pts[i].X[0] = x
		pts[i].X[1] = Y[i]
	}
	box := NewBoundingBox(pts)
	var (
		c    = box.Centroid()
		size = math.Max(box.XMax[0]-box.XMin[0], box.XMax[1]-box.XMin[1])
	)
	if size == 0 {
		size = 1
	}
	r := 64 * size
	tm = &TriMesh{
		Points: []Point{
			{X: [2]float64{c.X[0] - 2*r, c.X[1] - r}},
			{X: [2]float64{c.X[0] + 2*r, c.X[1] - r}},
			{X: [2]float64{c.X[0], c.X[1] + 2*r}},
		},
		vt: []int{0, 0, 0},
	}
	tm.Tris = []Tri{{Verts: [3]int{0, 1, 2}, Nbrs: [3]int{-1, -1, -1}}}
	return
}

// IsSuper reports whether vertex v belongs to the enclosing super triangle
func (tm *TriMesh) IsSuper(v int) bool { return v < 3 }

func (tm *TriMesh) pt(v int) Point { return tm.Points[v] }

func (tm *TriMesh) setTri(t int, tri Tri) {
	tm.Tris[t] = tri
	for _, v := range tri.Verts {
		tm.vt[v] = t
	}
	tm.touched = append(tm.touched, t)
}

func (tm *TriMesh) newTri() int {
	tm.Tris = append(tm.Tris, Tri{})
	return len(tm.Tris) - 1
}

// replaceNbr points the neighbor of old across the shared edge to nu
func (tm *TriMesh) replaceNbr(t, old, nu int) {
	if t < 0 {
		return
	}
	for i := 0; i < 3; i++ {
		if tm.Tris[t].Nbrs[i] == old {
			tm.Tris[t].Nbrs[i] = nu
			return
		}
	}
}

func (tm *TriMesh) nbrIndex(t, nb int) int {
	for i := 0; i < 3; i++ {
		if tm.Tris[t].Nbrs[i] == nb {
			return i
		}
	}
	panic(fmt.Sprintf("triangle %d is not adjacent to %d", nb, t))
}

// Locate walks from the last visited triangle to the one containing p.
// Returns the triangle and, when p is on one of its edges, that edge index, else -1.
func (tm *TriMesh) Locate(p Point) (t, onEdge int, err error) {
	t = tm.last
	if t >= len(tm.Tris) {
		t = 0
	}
	for steps := 0; steps < 4*len(tm.Tris)+16; steps++ {
		moved := false
		for i := 0; i < 3; i++ {
			tri := tm.Tris[t]
			a, b := tm.pt(tri.Verts[(i+1)%3]), tm.pt(tri.Verts[(i+2)%3])
			if Orient(a, b, p) < 0 && tri.Nbrs[i] >= 0 {
				t = tri.Nbrs[i]
				moved = true
				break
			}
		}
		if !moved {
			if tm.contains(t, p) {
				tm.last = t
				return t, tm.edgeOf(t, p), nil
			}
			break
		}
	}
	// The walk can cycle in a constrained triangulation
	for t = range tm.Tris {
		if tm.contains(t, p) {
			tm.last = t
			return t, tm.edgeOf(t, p), nil
		}
	}
	return -1, -1, ErrOutside
}

func (tm *TriMesh) contains(t int, p Point) bool {
	tri := tm.Tris[t]
	for i := 0; i < 3; i++ {
		a, b := tm.pt(tri.Verts[(i+1)%3]), tm.pt(tri.Verts[(i+2)%3])
		if Orient(a, b, p) < -tm.eps(a, b) {
			return false
		}
	}
	return true
}

// eps is the orientation tolerance for points near the segment a-b
func (tm *TriMesh) eps(a, b Point) float64 {
	dx, dy := b.X[0]-a.X[0], b.X[1]-a.X[1]
	return 1e-12 * (dx*dx + dy*dy)
}

func (tm *TriMesh) edgeOf(t int, p Point) int {
	tri := tm.Tris[t]
	for i := 0; i < 3; i++ {
		a, b := tm.pt(tri.Verts[(i+1)%3]), tm.pt(tri.Verts[(i+2)%3])
		if math.Abs(Orient(a, b, p)) <= tm.eps(a, b) {
			return i
		}
	}
	return -1
}

// AddPoint inserts (x, y) and restores the Delaunay property around it.
// Returns the index of the new vertex.
func (tm *TriMesh) AddPoint(x, y float64) (v int, err error) {
	p := Point{X: [2]float64{x, y}}
	t, onEdge, err := tm.Locate(p)
	if err != nil {
		return -1, err
	}
	return tm.insertAt(p, t, onEdge)
}

func (tm *TriMesh) insertAt(p Point, t, onEdge int) (v int, err error) {
	for _, w := range tm.Tris[t].Verts {
		q := tm.pt(w)
		if math.Hypot(q.X[0]-p.X[0], q.X[1]-p.X[1]) < 1e-12*(1+math.Hypot(q.X[0], q.X[1])) {
			return w, ErrDuplicatePoint
		}
	}
	if onEdge >= 0 && tm.Tris[t].Fixed[onEdge] {
		return -1, ErrOnSegment
	}
	v = len(tm.Points)
	tm.Points = append(tm.Points, p)
	tm.vt = append(tm.vt, t)
	var fresh []int
	if onEdge >= 0 {
		fresh = tm.splitEdge(t, onEdge, v)
	} else {
		fresh = tm.splitTri(t, v)
	}
	for _, nt := range fresh {
		tm.LegalizeEdge(nt, 0)
	}
	return
}

// splitTri replaces t = (a,b,c) by (v,b,c), (v,c,a), (v,a,b)
func (tm *TriMesh) splitTri(t, v int) []int {
	old := tm.Tris[t]
	a, b, c := old.Verts[0], old.Verts[1], old.Verts[2]
	nBC, nCA, nAB := old.Nbrs[0], old.Nbrs[1], old.Nbrs[2]
	t1, t2 := tm.newTri(), tm.newTri()
	tm.setTri(t, Tri{Verts: [3]int{v, b, c}, Nbrs: [3]int{nBC, t1, t2},
		Fixed: [3]bool{old.Fixed[0]}, Outside: old.Outside})
	tm.setTri(t1, Tri{Verts: [3]int{v, c, a}, Nbrs: [3]int{nCA, t2, t},
		Fixed: [3]bool{old.Fixed[1]}, Outside: old.Outside})
	tm.setTri(t2, Tri{Verts: [3]int{v, a, b}, Nbrs: [3]int{nAB, t, t1},
		Fixed: [3]bool{old.Fixed[2]}, Outside: old.Outside})
	tm.replaceNbr(nCA, t, t1)
	tm.replaceNbr(nAB, t, t2)
	return []int{t, t1, t2}
}

// splitEdge inserts v on edge i of t, splitting t and its neighbor across that edge
func (tm *TriMesh) splitEdge(t, i, v int) []int {
	old := tm.rotated(t, i)
	a, b, c := old.Verts[0], old.Verts[1], old.Verts[2]
	nBC, nCA, nAB := old.Nbrs[0], old.Nbrs[1], old.Nbrs[2]
	u := nBC
	t2 := tm.newTri()
	if u < 0 {
		tm.setTri(t, Tri{Verts: [3]int{v, c, a}, Nbrs: [3]int{nCA, t2, -1},
			Fixed: [3]bool{old.Fixed[1]}, Outside: old.Outside})
		tm.setTri(t2, Tri{Verts: [3]int{v, a, b}, Nbrs: [3]int{nAB, -1, t},
			Fixed: [3]bool{old.Fixed[2]}, Outside: old.Outside})
		tm.replaceNbr(nAB, t, t2)
		return []int{t, t2}
	}
	oldU := tm.rotated(u, tm.nbrIndex(u, t))
	d := oldU.Verts[0] // oldU = (d, c, b)
	nBD, nDC := oldU.Nbrs[1], oldU.Nbrs[2]
	t4 := tm.newTri()
	tm.setTri(t, Tri{Verts: [3]int{v, c, a}, Nbrs: [3]int{nCA, t2, t4},
		Fixed: [3]bool{old.Fixed[1]}, Outside: old.Outside})
	tm.setTri(t2, Tri{Verts: [3]int{v, a, b}, Nbrs: [3]int{nAB, u, t},
		Fixed: [3]bool{old.Fixed[2]}, Outside: old.Outside})
	tm.setTri(u, Tri{Verts: [3]int{v, b, d}, Nbrs: [3]int{nBD, t4, t2},
		Fixed: [3]bool{oldU.Fixed[1]}, Outside: oldU.Outside})
	tm.setTri(t4, Tri{Verts: [3]int{v, d, c}, Nbrs: [3]int{nDC, t, u},
		Fixed: [3]bool{oldU.Fixed[2]}, Outside: oldU.Outside})
	tm.replaceNbr(nAB, t, t2)
	tm.replaceNbr(nDC, u, t4)
	return []int{t, t2, u, t4}
}

// rotated returns triangle t with vertex i moved to position 0
func (tm *TriMesh) rotated(t, i int) (tri Tri) {
	src := tm.Tris[t]
	for k := 0; k < 3; k++ {
		j := (i + k) % 3
		tri.Verts[k], tri.Nbrs[k], tri.Fixed[k] = src.Verts[j], src.Nbrs[j], src.Fixed[j]
	}
	tri.Outside = src.Outside
	return
}

// flip swaps the diagonal across edge i of t. With t = (a,b,c) and the neighbor (d,c,b)
// the result is t = (a,b,d) and the neighbor (a,d,c).
func (tm *TriMesh) flip(t, i int) (u int) {
	old := tm.rotated(t, i)
	u = old.Nbrs[0]
	oldU := tm.rotated(u, tm.nbrIndex(u, t))
	var (
		a, b, c = old.Verts[0], old.Verts[1], old.Verts[2]
		d       = oldU.Verts[0]
		nCA     = old.Nbrs[1]
		nAB     = old.Nbrs[2]
		nBD     = oldU.Nbrs[1]
		nDC     = oldU.Nbrs[2]
	)
	tm.setTri(t, Tri{Verts: [3]int{a, b, d}, Nbrs: [3]int{nBD, u, nAB},
		Fixed: [3]bool{oldU.Fixed[1], false, old.Fixed[2]}, Outside: old.Outside})
	tm.setTri(u, Tri{Verts: [3]int{a, d, c}, Nbrs: [3]int{nDC, nCA, t},
		Fixed: [3]bool{oldU.Fixed[2], old.Fixed[1], false}, Outside: oldU.Outside})
	tm.replaceNbr(nBD, u, t)
	tm.replaceNbr(nCA, t, u)
	return
}

// LegalizeEdge restores the Delaunay property across edge i of t, recursing on the
// edges exposed by each flip. Vertex i of t must be the newly inserted point.
func (tm *TriMesh) LegalizeEdge(t, i int) {
	type job struct{ t, i int }
	stack := []job{{t, i}}
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tri := tm.Tris[j.t]
		if tri.Fixed[j.i] || tri.Nbrs[j.i] < 0 {
			continue
		}
		u := tri.Nbrs[j.i]
		d := tm.Tris[u].Verts[tm.nbrIndex(u, j.t)]
		var (
			pr = tm.pt(d)
			pi = tm.pt(tri.Verts[(j.i+1)%3])
			pj = tm.pt(tri.Verts[(j.i+2)%3])
			pk = tm.pt(tri.Verts[j.i])
		)
		if IsIllegalEdge(pr.X[0], pr.X[1], pi.X[0], pi.X[1], pj.X[0], pj.X[1], pk.X[0], pk.X[1]) {
			if j.i != 0 {
				tm.Tris[j.t] = tm.rotated(j.t, j.i)
			}
			u = tm.flip(j.t, 0)
			// After the flip the inserted point sits at position 0 of both triangles
			stack = append(stack, job{j.t, 0}, job{u, 0})
		}
	}
}

// Triangles returns the vertex triples of every live, inside triangle not touching the super triangle
func (tm *TriMesh) Triangles() (tris [][3]int) {
	for _, tri := range tm.Tris {
		if tri.Outside || tm.IsSuper(tri.Verts[0]) || tm.IsSuper(tri.Verts[1]) || tm.IsSuper(tri.Verts[2]) {
			continue
		}
		tris = append(tris, tri.Verts)
	}
	return
}

// Area of triangle t
func (tm *TriMesh) Area(t int) float64 {
	v := tm.Tris[t].Verts
	return 0.5 * Orient(tm.pt(v[0]), tm.pt(v[1]), tm.pt(v[2]))
}
