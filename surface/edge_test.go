package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestEdgeUniform(t *testing.T) {
	st := NewStore([]r3.Vec{{}, {X: 1}})
	e := NewEdge(0, 1)
	require.NoError(t, e.Triangulate(st, 0.3, nil))
	// ceil(1/0.3) = 4 pieces, 3 interior points
	assert.Equal(t, 5, len(e.Points))
	assert.Equal(t, 0, e.Points[0])
	assert.Equal(t, 1, e.Points[4])
	for j := 1; j < len(e.Points); j++ {
		d := r3.Norm(r3.Sub(st.Point(e.Points[j]), st.Point(e.Points[j-1])))
		assert.InDelta(t, 0.25, d, 1e-12)
	}
	// Once populated the chain is never recomputed
	np := st.NumPoints()
	chain := append([]int(nil), e.Points...)
	require.NoError(t, e.Triangulate(st, 0.1, nil))
	assert.Equal(t, chain, e.Points)
	assert.Equal(t, np, st.NumPoints())
}

func TestEdgeShort(t *testing.T) {
	st := NewStore([]r3.Vec{{}, {X: 0.1}, {X: 0.1}})
	e := NewEdge(0, 1)
	require.NoError(t, e.Triangulate(st, 1, nil))
	assert.Equal(t, []int{0, 1}, e.Points)
	// Coincident ends give no pieces at all
	e = NewEdge(1, 2)
	require.NoError(t, e.Triangulate(st, 1, nil))
	assert.Equal(t, []int{1, 2}, e.Points)
	assert.Equal(t, 3, st.NumPoints())
	assert.Error(t, NewEdge(0, 1).Triangulate(st, 0, nil))
}

func TestEdgeSizeField(t *testing.T) {
	st := NewStore([]r3.Vec{{}, {X: 1}})
	e := NewEdge(0, 1)
	half := func(r3.Vec) float64 { return 0.5 }
	require.NoError(t, e.Triangulate(st, 0.3, half))
	// Steps of 0.15 until no more than 0.3 remains
	require.Equal(t, 7, len(e.Points))
	for j := 1; j < 6; j++ {
		assert.InDelta(t, 0.15*float64(j), st.Point(e.Points[j]).X, 1e-12)
	}
	bad := func(r3.Vec) float64 { return 0 }
	assert.Error(t, NewEdge(1, 0).Triangulate(st, 0.3, bad))
}

func TestEdgeChain(t *testing.T) {
	e := &Edge{Start: 3, Finish: 7, Points: []int{3, 10, 11, 7}}
	assert.True(t, e.SameEnds(7, 3))
	assert.False(t, e.SameEnds(3, 10))
	assert.Equal(t, []int{3, 10, 11, 7}, e.Chain(3))
	assert.Equal(t, []int{7, 11, 10, 3}, e.Chain(7))
}
