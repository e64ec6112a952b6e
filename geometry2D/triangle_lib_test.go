//go:build triangle

package geometry2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangleLibFacetSwitches(t *testing.T) {
	var (
		in      = polygon([][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, 4)
		step    = 0.25
		maxArea = step * step / 2
	)
	out, err := TriangleLib{}.Triangulate(in, "pzqQYa0.03125")
	require.NoError(t, err)
	assert.Equal(t, len(in.X), out.InputCount)
	require.GreaterOrEqual(t, len(out.X), len(in.X))
	for i := range in.X {
		assert.Equal(t, in.X[i], out.X[i])
		assert.Equal(t, in.Y[i], out.Y[i])
	}
	// Y keeps every boundary segment whole
	for _, s := range in.Segments {
		assert.True(t, hasEdge(out, s[0], s[1]), "segment %v split", s)
	}
	for k, tri := range out.Triangles {
		ar := triArea(out, tri)
		if ar < 0 {
			ar = -ar
		}
		assert.LessOrEqual(t, ar, maxArea+1e-12, "triangle %d too large", k)
	}
	total := 0.
	for _, tri := range out.Triangles {
		ar := triArea(out, tri)
		if ar < 0 {
			ar = -ar
		}
		total += ar
	}
	assert.InDelta(t, 1, total, 1e-9)
}

func TestTriangleLibBadInput(t *testing.T) {
	_, err := TriangleLib{}.Triangulate(&PSLG{X: []float64{0, 1}, Y: []float64{0, 0}}, "pzQ")
	assert.Error(t, err)
	_, err = TriangleLib{}.Triangulate(polygon([][2]float64{{0, 0}, {1, 0}, {0, 1}}, 1), "pzx")
	assert.Error(t, err)
}
