package geometry2D

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// polygon returns a closed PSLG for the given corners, each side split into n pieces
func polygon(corners [][2]float64, n int) (in *PSLG) {
	in = &PSLG{}
	for i, c := range corners {
		d := corners[(i+1)%len(corners)]
		for k := 0; k < n; k++ {
			s := float64(k) / float64(n)
			in.X = append(in.X, c[0]+s*(d[0]-c[0]))
			in.Y = append(in.Y, c[1]+s*(d[1]-c[1]))
		}
	}
	np := len(in.X)
	for i := 0; i < np; i++ {
		in.Segments = append(in.Segments, [2]int{i, (i + 1) % np})
	}
	return
}

func triArea(out *Triangulation, tri [3]int) float64 {
	a, b, c := tri[0], tri[1], tri[2]
	return 0.5 * ((out.X[b]-out.X[a])*(out.Y[c]-out.Y[a]) - (out.X[c]-out.X[a])*(out.Y[b]-out.Y[a]))
}

func totalArea(out *Triangulation) (area float64) {
	for _, tri := range out.Triangles {
		area += triArea(out, tri)
	}
	return
}

func hasEdge(out *Triangulation, a, b int) bool {
	for _, tri := range out.Triangles {
		for i := 0; i < 3; i++ {
			x, y := tri[i], tri[(i+1)%3]
			if (x == a && y == b) || (x == b && y == a) {
				return true
			}
		}
	}
	return false
}

func TestIsIllegalEdge(t *testing.T) {
	// Unit right triangle, its circumcircle is centered at (0.5, 0.5)
	assert.True(t, IsIllegalEdge(0.9, 0.9, 0, 0, 1, 0, 0, 1))
	assert.False(t, IsIllegalEdge(1.5, 1.5, 0, 0, 1, 0, 0, 1))
	// Handedness of the reference triangle does not matter
	assert.True(t, IsIllegalEdge(0.9, 0.9, 0, 0, 0, 1, 1, 0))
}

func TestParseSwitches(t *testing.T) {
	sw, err := ParseSwitches("pzqQYa0.125")
	require.NoError(t, err)
	assert.Equal(t, Switches{PSLG: true, ZeroBased: true, Quality: true, MinAngle: 20,
		Quiet: true, NoBoundarySteiner: true, MaxArea: 0.125}, sw)
	sw, err = ParseSwitches("pq28.5a2")
	require.NoError(t, err)
	assert.Equal(t, 28.5, sw.MinAngle)
	assert.Equal(t, 2., sw.MaxArea)
	_, err = ParseSwitches("pa")
	assert.Error(t, err)
	_, err = ParseSwitches("px")
	assert.Error(t, err)
	sw, err = ParseSwitches(sw.String())
	require.NoError(t, err)
	assert.Equal(t, 2., sw.MaxArea)
}

func TestTriangulateSquare(t *testing.T) {
	in := polygon([][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, 1)
	out, err := Engine{}.Triangulate(in, "pzQY")
	require.NoError(t, err)
	assert.Equal(t, 2, len(out.Triangles))
	assert.Equal(t, 4, len(out.X))
	assert.InDelta(t, 1., totalArea(out), 1e-12)
	for _, tri := range out.Triangles {
		assert.Greater(t, triArea(out, tri), 0.)
	}
}

func TestTriangulateRefined(t *testing.T) {
	in := polygon([][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, 4)
	maxArea := 0.02
	out, err := Engine{}.Triangulate(in, "pzqQYa0.02")
	require.NoError(t, err)
	assert.Equal(t, len(in.X), out.InputCount)
	for i := range in.X {
		assert.Equal(t, in.X[i], out.X[i], "input point %d moved", i)
		assert.Equal(t, in.Y[i], out.Y[i], "input point %d moved", i)
	}
	assert.Greater(t, len(out.X), len(in.X), "refinement should add Steiner points")
	for i := out.InputCount; i < len(out.X); i++ {
		inside := out.X[i] > 0 && out.X[i] < 1 && out.Y[i] > 0 && out.Y[i] < 1
		assert.True(t, inside, "Steiner point %d on the boundary: (%g, %g)", i, out.X[i], out.Y[i])
	}
	for k, tri := range out.Triangles {
		assert.LessOrEqual(t, triArea(out, tri), maxArea+1e-12, "triangle %d too large", k)
	}
	assert.InDelta(t, 1., totalArea(out), 1e-9)
	for _, s := range in.Segments {
		assert.True(t, hasEdge(out, s[0], s[1]), "segment %v missing", s)
	}
}

func TestTriangulateNonConvex(t *testing.T) {
	in := polygon([][2]float64{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}, 2)
	out, err := Engine{}.Triangulate(in, "pzQYa0.1")
	require.NoError(t, err)
	assert.InDelta(t, 3., totalArea(out), 1e-9)
	for _, tri := range out.Triangles {
		cx := (out.X[tri[0]] + out.X[tri[1]] + out.X[tri[2]]) / 3
		cy := (out.Y[tri[0]] + out.Y[tri[1]] + out.Y[tri[2]]) / 3
		assert.False(t, cx > 1 && cy > 1, "triangle centroid (%g, %g) in the notch", cx, cy)
	}
}

func TestTriangulateHole(t *testing.T) {
	outer := polygon([][2]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, 1)
	inner := polygon([][2]float64{{0.5, 0.5}, {1.5, 0.5}, {1.5, 1.5}, {0.5, 1.5}}, 1)
	in := &PSLG{X: outer.X, Y: outer.Y, Segments: outer.Segments}
	off := len(in.X)
	in.X = append(in.X, inner.X...)
	in.Y = append(in.Y, inner.Y...)
	for _, s := range inner.Segments {
		in.Segments = append(in.Segments, [2]int{s[0] + off, s[1] + off})
	}
	in.Holes = []Point{{X: [2]float64{1, 1}}}
	out, err := Triangulate(in, Switches{PSLG: true, ZeroBased: true})
	require.NoError(t, err)
	assert.InDelta(t, 3., totalArea(out), 1e-12)
}

func TestDelaunayProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	in := &PSLG{}
	for i := 0; i < 200; i++ {
		in.X = append(in.X, rng.Float64())
		in.Y = append(in.Y, rng.Float64())
	}
	out, err := Triangulate(in, Switches{})
	require.NoError(t, err)
	for k, tri := range out.Triangles {
		a, b, c := tri[0], tri[1], tri[2]
		for p := range out.X {
			if p == a || p == b || p == c {
				continue
			}
			illegal := IsIllegalEdge(out.X[p], out.Y[p], out.X[a], out.Y[a], out.X[b], out.Y[b], out.X[c], out.Y[c])
			require.False(t, illegal, "point %d inside circumcircle of triangle %d", p, k)
		}
	}
}

func TestSegmentRecovery(t *testing.T) {
	// A long thin diamond forces the diagonal segment 0-2 against the Delaunay choice
	in := &PSLG{
		X:        []float64{0, 1, 2, 1},
		Y:        []float64{0, -0.1, 0, 0.1},
		Segments: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}},
	}
	out, err := Triangulate(in, Switches{PSLG: true})
	require.NoError(t, err)
	assert.True(t, hasEdge(out, 0, 2))
	assert.Equal(t, 2, len(out.Triangles))
	assert.InDelta(t, 0.2, totalArea(out), 1e-12)
}

func TestFromTrianglesRefine(t *testing.T) {
	X := []float64{0, 1, 1, 0}
	Y := []float64{0, 0, 1, 1}
	// Second triangle deliberately clockwise
	tm, err := FromTriangles(X, Y, [][3]int{{0, 1, 2}, {0, 3, 2}}, nil)
	require.NoError(t, err)
	require.NoError(t, tm.Refine(Switches{MaxArea: 0.05}))
	out, err := tm.Export(4)
	require.NoError(t, err)
	assert.InDelta(t, 1., totalArea(out), 1e-9)
	for _, tri := range out.Triangles {
		assert.LessOrEqual(t, triArea(out, tri), 0.05+1e-12)
		assert.Greater(t, triArea(out, tri), 0.)
	}
	for i := 4; i < len(out.X); i++ {
		assert.False(t, math.Abs(out.X[i]) < 1e-12 || math.Abs(out.Y[i]) < 1e-12, "Steiner point on the hull")
	}
}
