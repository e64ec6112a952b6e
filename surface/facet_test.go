package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/geometry2D"
	"github.com/notargets/meshbuilder/geometry3D"
)

func trifacetArea(st *Store, t Trifacet) float64 {
	return geometry3D.TriangleArea(st.Point(t[0]), st.Point(t[1]), st.Point(t[2]))
}

// twoQuads returns two unit squares in the z = 0 plane sharing the edge x = 1
func twoQuads() (st *Store, a, b *Facet) {
	st = NewStore([]r3.Vec{
		{X: 0}, {X: 1}, {X: 2},
		{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1},
	})
	return st, NewFacet(0, 1, 4, 3), NewFacet(1, 2, 5, 4)
}

func TestFacetMake(t *testing.T) {
	st, a, _ := twoQuads()
	step := 0.25
	require.NoError(t, a.Make(st, step, nil, geometry2D.Engine{}))
	assert.Equal(t, 4, len(a.Edges))
	assert.Equal(t, 16, a.BoundaryCount())
	assert.Equal(t, len(a.Tris), len(a.Local))
	var area float64
	for i, ti := range a.Tris {
		tri := st.Trifacets[ti]
		for j := 0; j < 3; j++ {
			assert.Equal(t, a.Points[a.Local[i][j]], tri[j])
			p := st.Point(tri[j])
			assert.InDelta(t, 0, p.Z, 1e-12)
			assert.True(t, p.X > -1e-12 && p.X < 1+1e-12 && p.Y > -1e-12 && p.Y < 1+1e-12)
		}
		ar := trifacetArea(st, tri)
		assert.LessOrEqual(t, ar, step*step/2+1e-9)
		area += ar
	}
	assert.InDelta(t, 1, area, 1e-9)
	require.ErrorIs(t, a.Make(st, step, nil, geometry2D.Engine{}), ErrAlreadyTriangulated)
}

func TestFacetSharedEdge(t *testing.T) {
	st, a, b := twoQuads()
	require.NoError(t, a.Make(st, 0.25, nil, geometry2D.Engine{}))
	before := append([]r3.Vec(nil), st.Points()...)
	require.NoError(t, b.Make(st, 0.25, nil, geometry2D.Engine{}))
	// The point table only grows
	require.GreaterOrEqual(t, st.NumPoints(), len(before))
	assert.Equal(t, before, st.Points()[:len(before)])
	shared := st.FindEdge(1, 4)
	require.GreaterOrEqual(t, shared, 0)
	assert.Contains(t, a.Edges, shared)
	assert.Contains(t, b.Edges, shared)
	for _, p := range st.Edges[shared].Points {
		assert.Contains(t, a.Points, p)
		assert.Contains(t, b.Points, p)
	}
	// No point was created twice along the shared edge
	pts := st.Points()
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			require.False(t, geometry3D.Equal(pts[i], pts[j]), "points %d and %d coincide", i, j)
		}
	}
}

func TestFacetDegenerate(t *testing.T) {
	st := NewStore([]r3.Vec{{}, {X: 1}, {X: 2}})
	require.ErrorIs(t, NewFacet(0, 1).Make(st, 0.5, nil, geometry2D.Engine{}), ErrDegenerateFacet)
	require.ErrorIs(t, NewFacet(0, 1, 2).Make(st, 0.5, nil, geometry2D.Engine{}), ErrDegenerateFacet)
}

type failing struct{}

func (failing) Triangulate(*geometry2D.PSLG, string) (*geometry2D.Triangulation, error) {
	return &geometry2D.Triangulation{}, nil
}

func TestFacetTriangulatorFailure(t *testing.T) {
	st, a, _ := twoQuads()
	require.ErrorIs(t, a.Make(st, 0.5, nil, failing{}), ErrTriangulation)
}

func TestFacetTake(t *testing.T) {
	// Source square centered on the origin, twin offset along z
	st := NewStore([]r3.Vec{
		{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5},
		{X: -0.5, Y: -0.5, Z: 1e-3}, {X: 0.5, Y: -0.5, Z: 1e-3}, {X: 0.5, Y: 0.5, Z: 1e-3}, {X: -0.5, Y: 0.5, Z: 1e-3},
	})
	src, twin := NewFacet(0, 1, 2, 3), NewFacet(4, 5, 6, 7)
	require.ErrorIs(t, twin.Take(st, src), ErrNotTriangulated)
	require.NoError(t, src.Make(st, 0.3, nil, geometry2D.Engine{}))
	require.NoError(t, twin.Take(st, src))
	require.Equal(t, len(src.Tris), len(twin.Tris))
	assert.Equal(t, src.Local, twin.Local)
	assert.Equal(t, src.Tris, twin.TwinOf)
	for i := range src.Tris {
		s, w := st.Trifacets[src.Tris[i]], st.Trifacets[twin.Tris[i]]
		for j := 0; j < 3; j++ {
			ps, pw := st.Point(s[j]), st.Point(w[j])
			assert.InDelta(t, ps.X, pw.X, 1e-12)
			assert.InDelta(t, ps.Y, pw.Y, 1e-12)
			assert.InDelta(t, 1e-3, pw.Z, 1e-12)
		}
	}
}

func TestFacetTakeReversedEdge(t *testing.T) {
	// Wall p is resolved before the twin square, so the edge 4-5 starts at 5.
	// q is wall p moved by shift and takes its triangulation.
	shift := r3.Vec{Y: -1e-3}
	wall := []r3.Vec{{X: 0.5, Y: -0.5, Z: 1e-3}, {X: -0.5, Y: -0.5, Z: 1e-3}, {X: -0.5, Y: -0.5, Z: 1}, {X: 0.5, Y: -0.5, Z: 1}}
	pts := []r3.Vec{
		{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5},
		{X: -0.5, Y: -0.5, Z: 1e-3}, {X: 0.5, Y: -0.5, Z: 1e-3}, {X: 0.5, Y: 0.5, Z: 1e-3}, {X: -0.5, Y: 0.5, Z: 1e-3},
		wall[2], wall[3],
	}
	for _, w := range wall {
		pts = append(pts, r3.Add(w, shift))
	}
	st := NewStore(pts)
	var (
		src, twin = NewFacet(0, 1, 2, 3), NewFacet(4, 5, 6, 7)
		p, q      = NewFacet(5, 4, 8, 9), NewFacet(10, 11, 12, 13)
	)
	p.AddEdgesByPoints(st)
	require.Equal(t, 5, st.Edges[st.FindEdge(4, 5)].Start)
	require.NoError(t, src.Make(st, 0.3, nil, geometry2D.Engine{}))
	require.NoError(t, twin.Take(st, src))
	require.NoError(t, p.Make(st, 0.3, nil, geometry2D.Engine{}))
	require.NoError(t, q.Take(st, p))

	for i, e := range st.Edges {
		if !e.Triangulated() {
			continue
		}
		assert.Equal(t, e.Start, e.Points[0], "edge %d", i)
		assert.Equal(t, e.Finish, e.Points[len(e.Points)-1], "edge %d", i)
	}
	require.Equal(t, len(p.Points), len(q.Points))
	for k := range p.Points {
		ps, pq := st.Point(p.Points[k]), st.Point(q.Points[k])
		assert.InDelta(t, 0, r3.Norm(r3.Sub(r3.Add(ps, shift), pq)), 1e-9, "point %d", k)
	}
}

func TestFacetTakeMirror(t *testing.T) {
	// Two walls meeting along the z axis edge 0-1, mirror images through x = 0.
	// The summed corner direction lies in both planes, so the corner fit is used.
	st := NewStore([]r3.Vec{
		{Y: -1, Z: -1}, {Y: -1, Z: 1},
		{X: -0.1, Y: 0, Z: 1}, {X: -0.1, Y: 0, Z: -1},
		{X: 0.1, Y: 0, Z: 1}, {X: 0.1, Y: 0, Z: -1},
	})
	src, twin := NewFacet(0, 1, 2, 3), NewFacet(0, 1, 4, 5)
	require.NoError(t, src.Make(st, 0.4, nil, geometry2D.Engine{}))
	require.NoError(t, twin.Take(st, src))
	require.Equal(t, len(src.Tris), len(twin.Tris))
	// The shared edge is reused verbatim
	shared := st.Edges[st.FindEdge(0, 1)].Points
	for _, p := range shared {
		assert.Contains(t, twin.Points, p)
	}
	for i := range src.Tris {
		s, w := st.Trifacets[src.Tris[i]], st.Trifacets[twin.Tris[i]]
		for j := 0; j < 3; j++ {
			ps, pw := st.Point(s[j]), st.Point(w[j])
			assert.InDelta(t, -ps.X, pw.X, 1e-9)
			assert.InDelta(t, ps.Y, pw.Y, 1e-9)
			assert.InDelta(t, ps.Z, pw.Z, 1e-9)
		}
		assert.InDelta(t, trifacetArea(st, s), trifacetArea(st, w), 1e-9)
	}
}

func TestFacetTakeMismatch(t *testing.T) {
	st, a, _ := twoQuads()
	require.NoError(t, a.Make(st, 0.5, nil, geometry2D.Engine{}))
	tri := NewFacet(1, 2, 5)
	require.ErrorIs(t, tri.Take(st, a), ErrContactMismatch)
}
