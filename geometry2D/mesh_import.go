package geometry2D

import (
	"fmt"
	"math"
)

// FromTriangles rebuilds a TriMesh from an existing triangulation so that it can be refined.
// Segments become constrained edges, as do hull edges. Triangles are reoriented counter-clockwise.
func FromTriangles(X, Y []float64, tris [][3]int, segments [][2]int) (tm *TriMesh, err error) {
	inf := math.Inf(1)
	tm = &TriMesh{
		// Placeholders standing in for the super triangle, referenced by no triangle
		Points: []Point{{X: [2]float64{inf, inf}}, {X: [2]float64{inf, inf}}, {X: [2]float64{inf, inf}}},
		vt:     make([]int, len(X)+3),
	}
	for i := range X {
		tm.Points = append(tm.Points, Point{X: [2]float64{X[i], Y[i]}})
	}
	type key [2]int
	edgeKey := func(a, b int) key {
		if a > b {
			a, b = b, a
		}
		return key{a, b}
	}
	type side struct{ t, i int }
	edges := make(map[key][]side)
	for t, tri := range tris {
		v := [3]int{tri[0] + 3, tri[1] + 3, tri[2] + 3}
		for _, w := range v {
			if w < 3 || w >= len(tm.Points) {
				return nil, fmt.Errorf("triangle %d references missing point %d", t, w-3)
			}
		}
		if Orient(tm.pt(v[0]), tm.pt(v[1]), tm.pt(v[2])) < 0 {
			v[1], v[2] = v[2], v[1]
		}
		tm.Tris = append(tm.Tris, Tri{Verts: v, Nbrs: [3]int{-1, -1, -1}})
		for i := 0; i < 3; i++ {
			k := edgeKey(v[(i+1)%3], v[(i+2)%3])
			edges[k] = append(edges[k], side{t, i})
			tm.vt[v[i]] = t
		}
	}
	for k, sides := range edges {
		switch len(sides) {
		case 1:
			tm.Tris[sides[0].t].Fixed[sides[0].i] = true
		case 2:
			a, b := sides[0], sides[1]
			tm.Tris[a.t].Nbrs[a.i] = b.t
			tm.Tris[b.t].Nbrs[b.i] = a.t
		default:
			return nil, fmt.Errorf("edge %d-%d is shared by %d triangles", k[0]-3, k[1]-3, len(sides))
		}
	}
	for _, s := range segments {
		if t, i := tm.FindEdge(s[0]+3, s[1]+3); t >= 0 {
			tm.setFixed(t, i, true)
		}
	}
	return
}
