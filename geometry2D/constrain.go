package geometry2D

import (
	"errors"
	"fmt"
)

var ErrSegmentCrossesVertex = errors.New("segment passes through a vertex")

// around returns the triangles incident on vertex v
func (tm *TriMesh) around(v int) (fan []int) {
	start := tm.vt[v]
	// Counter-clockwise first, then clockwise if the fan is open (hull vertex)
	for t := start; ; {
		fan = append(fan, t)
		k := tm.vertIndex(t, v)
		t = tm.Tris[t].Nbrs[(k+1)%3]
		if t < 0 {
			break
		}
		if t == start {
			return
		}
	}
	for t := start; ; {
		k := tm.vertIndex(t, v)
		t = tm.Tris[t].Nbrs[(k+2)%3]
		if t < 0 || t == start {
			return
		}
		fan = append(fan, t)
	}
}

func (tm *TriMesh) vertIndex(t, v int) int {
	for i := 0; i < 3; i++ {
		if tm.Tris[t].Verts[i] == v {
			return i
		}
	}
	panic(fmt.Sprintf("vertex %d not in triangle %d", v, t))
}

// FindEdge returns a triangle holding edge a-b and the index of that edge, or -1
func (tm *TriMesh) FindEdge(a, b int) (t, i int) {
	for _, t = range tm.around(a) {
		k := tm.vertIndex(t, a)
		for _, j := range []int{(k + 1) % 3, (k + 2) % 3} {
			if tm.Tris[t].Verts[j] == b {
				// The edge a-b is opposite the third vertex
				return t, 3 - k - j
			}
		}
	}
	return -1, -1
}

func (tm *TriMesh) setFixed(t, i int, fixed bool) {
	tm.Tris[t].Fixed[i] = fixed
	if u := tm.Tris[t].Nbrs[i]; u >= 0 {
		tm.Tris[u].Fixed[tm.nbrIndex(u, t)] = fixed
	}
}

// segmentsCross reports whether the open segments p1-p2 and q1-q2 properly intersect
func segmentsCross(p1, p2, q1, q2 Point) bool {
	d1, d2 := Orient(p1, p2, q1), Orient(p1, p2, q2)
	d3, d4 := Orient(q1, q2, p1), Orient(q1, q2, p2)
	return d1*d2 < 0 && d3*d4 < 0
}

// InsertSegment forces the edge a-b into the triangulation and marks it constrained.
// Crossing edges are removed by repeated diagonal flips.
func (tm *TriMesh) InsertSegment(a, b int) (err error) {
	if a == b {
		return fmt.Errorf("degenerate segment %d-%d", a, b)
	}
	if t, i := tm.FindEdge(a, b); t >= 0 {
		tm.setFixed(t, i, true)
		return
	}
	var crossing [][2]int
	if crossing, err = tm.crossingEdges(a, b); err != nil {
		return
	}
	var (
		pa, pb   = tm.pt(a), tm.pt(b)
		created  [][2]int
		maxSteps = 64*len(crossing)*len(crossing) + 64
	)
	for steps := 0; len(crossing) > 0; steps++ {
		if steps > maxSteps {
			return fmt.Errorf("failed to recover segment %d-%d", a, b)
		}
		e := crossing[0]
		crossing = crossing[1:]
		t, i := tm.FindEdge(e[0], e[1])
		if t < 0 {
			continue
		}
		tri := tm.rotated(t, i)
		u := tri.Nbrs[0]
		d := tm.Tris[u].Verts[tm.nbrIndex(u, t)]
		c := tri.Verts[0]
		// Only a strictly convex quad can be flipped
		if !segmentsCross(tm.pt(c), tm.pt(d), tm.pt(e[0]), tm.pt(e[1])) {
			crossing = append(crossing, e)
			continue
		}
		tm.Tris[t] = tri
		tm.flip(t, 0)
		ne := [2]int{c, d}
		if c != a && c != b && d != a && d != b && segmentsCross(pa, pb, tm.pt(c), tm.pt(d)) {
			crossing = append(crossing, ne)
		} else {
			created = append(created, ne)
		}
	}
	t, i := tm.FindEdge(a, b)
	if t < 0 {
		return fmt.Errorf("failed to recover segment %d-%d", a, b)
	}
	tm.setFixed(t, i, true)
	tm.relegalize(created)
	return
}

// crossingEdges walks from a towards b collecting every edge properly crossed by a-b
func (tm *TriMesh) crossingEdges(a, b int) (edges [][2]int, err error) {
	pa, pb := tm.pt(a), tm.pt(b)
	t := -1
	for _, f := range tm.around(a) {
		k := tm.vertIndex(f, a)
		c1, c2 := tm.Tris[f].Verts[(k+1)%3], tm.Tris[f].Verts[(k+2)%3]
		o1, o2 := Orient(pa, pb, tm.pt(c1)), Orient(pa, pb, tm.pt(c2))
		if (o1 == 0 && dot(pa, pb, tm.pt(c1)) > 0) || (o2 == 0 && dot(pa, pb, tm.pt(c2)) > 0) {
			return nil, fmt.Errorf("%w: %d-%d", ErrSegmentCrossesVertex, a, b)
		}
		if o1 < 0 && o2 > 0 {
			t = f
			edges = append(edges, [2]int{c1, c2})
			break
		}
	}
	if t < 0 {
		return nil, fmt.Errorf("no triangle at %d faces %d", a, b)
	}
	for steps := 0; steps < len(tm.Tris); steps++ {
		last := edges[len(edges)-1]
		_, i := tm.edgeIn(t, last[0], last[1])
		u := tm.Tris[t].Nbrs[i]
		if u < 0 {
			return nil, fmt.Errorf("segment %d-%d leaves the triangulation", a, b)
		}
		j := tm.nbrIndex(u, t)
		d := tm.Tris[u].Verts[j]
		if d == b {
			return
		}
		od := Orient(pa, pb, tm.pt(d))
		if od == 0 {
			return nil, fmt.Errorf("%w: %d-%d at %d", ErrSegmentCrossesVertex, a, b, d)
		}
		// last = (c1 right of a-b, c2 left of a-b); d replaces the vertex on its own side
		if od < 0 {
			edges = append(edges, [2]int{d, last[1]})
		} else {
			edges = append(edges, [2]int{last[0], d})
		}
		t = u
	}
	return nil, fmt.Errorf("segment %d-%d walk did not terminate", a, b)
}

func dot(a, b, c Point) float64 {
	return (b.X[0]-a.X[0])*(c.X[0]-a.X[0]) + (b.X[1]-a.X[1])*(c.X[1]-a.X[1])
}

// edgeIn finds the index of edge v1-v2 within triangle t
func (tm *TriMesh) edgeIn(t, v1, v2 int) (int, int) {
	tri := tm.Tris[t]
	for i := 0; i < 3; i++ {
		x, y := tri.Verts[(i+1)%3], tri.Verts[(i+2)%3]
		if (x == v1 && y == v2) || (x == v2 && y == v1) {
			return t, i
		}
	}
	panic(fmt.Sprintf("edge %d-%d not in triangle %d", v1, v2, t))
}

// relegalize flips the listed unconstrained edges until each one is locally Delaunay
func (tm *TriMesh) relegalize(edges [][2]int) {
	for pass := 0; pass < 4*len(edges)+4; pass++ {
		changed := false
		for k, e := range edges {
			t, i := tm.FindEdge(e[0], e[1])
			if t < 0 || tm.Tris[t].Fixed[i] || tm.Tris[t].Nbrs[i] < 0 {
				continue
			}
			tri := tm.Tris[t]
			u := tri.Nbrs[i]
			d := tm.Tris[u].Verts[tm.nbrIndex(u, t)]
			var (
				pr = tm.pt(d)
				pi = tm.pt(tri.Verts[(i+1)%3])
				pj = tm.pt(tri.Verts[(i+2)%3])
				pk = tm.pt(tri.Verts[i])
			)
			if !IsIllegalEdge(pr.X[0], pr.X[1], pi.X[0], pi.X[1], pj.X[0], pj.X[1], pk.X[0], pk.X[1]) {
				continue
			}
			tm.Tris[t] = tm.rotated(t, i)
			tm.flip(t, 0)
			edges[k] = [2]int{tri.Verts[i], d}
			changed = true
		}
		if !changed {
			return
		}
	}
}

// MarkExterior flags every triangle reachable from the super triangle or from a hole seed
// without crossing a constrained edge. With closed boundaries this leaves only the domain inside.
func (tm *TriMesh) MarkExterior(holes []Point) (err error) {
	var seeds []int
	for t, tri := range tm.Tris {
		if tm.IsSuper(tri.Verts[0]) || tm.IsSuper(tri.Verts[1]) || tm.IsSuper(tri.Verts[2]) {
			seeds = append(seeds, t)
		}
	}
	for _, h := range holes {
		var t int
		if t, _, err = tm.Locate(h); err != nil {
			return fmt.Errorf("failed to locate hole %v: %w", h.X, err)
		}
		seeds = append(seeds, t)
	}
	tm.flood(seeds)
	return
}

func (tm *TriMesh) flood(seeds []int) {
	for _, t := range seeds {
		tm.Tris[t].Outside = true
	}
	for len(seeds) > 0 {
		t := seeds[len(seeds)-1]
		seeds = seeds[:len(seeds)-1]
		for i := 0; i < 3; i++ {
			u := tm.Tris[t].Nbrs[i]
			if u < 0 || tm.Tris[t].Fixed[i] || tm.Tris[u].Outside {
				continue
			}
			tm.Tris[u].Outside = true
			seeds = append(seeds, u)
		}
	}
}
