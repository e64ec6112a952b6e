package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var meshProfile = []byte(`
title = sample // global entry
[Mesh]
quality = 1.4
average_step = 0.5 ; half a unit
// a whole line comment
[Segments]
number_of_segments_x = 2
number_of_segments_y = 1
number_of_segments_z = 1
[Figures]
number_of_figures = 2
figure1_type = Cube
figure1_is_empty = false
figure1_position = 0 0 0
figure2_type = Fracture
figure2_is_empty = TRUE
figure2_position = 1 2 3
figure2_angles = 0.1 0.2 0.3
[Cube]
size = 1
flagged
list = 1  2   3.5 4
`)

func TestProfile(t *testing.T) {
	p, err := NewProfile(meshProfile)
	require.NoError(t, err)
	assert.Equal(t, "sample", Request(p, "", "title", ""))
	assert.Equal(t, 1.4, Request(p, "Mesh", "quality", -1.))
	assert.Equal(t, 0.5, Request(p, "Mesh", "average_step", -1.))
	assert.Equal(t, 2, Request(p, "Segments", "number_of_segments_x", -1))
	assert.Equal(t, int64(1), Request(p, "Segments", "number_of_segments_y", int64(-1)))
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, Request(p, "Figures", "figure2_position", r3.Vec{}))
	assert.True(t, Request(p, "Figures", "figure2_is_empty", false))
	assert.Equal(t, []float64{1, 2, 3.5, 4}, Request(p, "Cube", "list", []float64(nil)))
	assert.True(t, p.Query("Cube", "flagged"))
	assert.Equal(t, "", Request(p, "Cube", "flagged", "none"))
	assert.Empty(t, p.Defaulted())

	// Fallbacks are recorded
	assert.Equal(t, 7., Request(p, "Cube", "missing", 7.))
	assert.Equal(t, -1, Request(p, "Figures", "figure1_type", -1))
	assert.Equal(t, []string{"Cube.missing", "Figures.figure1_type"}, p.Defaulted())

	_, err = Demand[float64](p, "Mesh", "absent")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = Demand[float64](p, "Nowhere", "absent")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = Demand[int](p, "Figures", "figure1_type")
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "<Figures.figure1_type>: <Cube>")
	_, err = Demand[r3.Vec](p, "Cube", "list")
	require.ErrorIs(t, err, ErrParse)

	assert.Contains(t, p.Unused(), "Figures.figure1_is_empty")
}

func TestMeshParameters(t *testing.T) {
	p, err := NewProfile(meshProfile)
	require.NoError(t, err)
	mp, err := NewMeshParameters(p)
	require.NoError(t, err)
	assert.Equal(t, 1.4, mp.Quality)
	assert.Equal(t, 0.5, mp.AverageStep)
	assert.Equal(t, [3]int{2, 1, 1}, [3]int{mp.SegmentsX, mp.SegmentsY, mp.SegmentsZ})
	require.Equal(t, 2, len(mp.Figures))
	assert.Equal(t, FigureEntry{Index: 1, Type: "Cube"}, mp.Figures[0])
	assert.Equal(t, FigureEntry{Index: 2, Type: "Fracture", IsEmpty: true,
		Position: r3.Vec{X: 1, Y: 2, Z: 3}, Angles: [3]float64{0.1, 0.2, 0.3}}, mp.Figures[1])

	p, err = NewProfile([]byte("[Mesh]\nquality = 0\n"))
	require.NoError(t, err)
	_, err = NewMeshParameters(p)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSplitManifest(t *testing.T) {
	var sm SplitManifest
	require.NoError(t, sm.Parse([]byte("SegmentsX: 4\nSegmentsZ: 2\nDataDir: out/regions\n")))
	assert.Equal(t, SplitManifest{SegmentsX: 4, SegmentsZ: 2, DataDir: "out/regions"}, sm)
	mp := &MeshParameters{SegmentsX: 1, SegmentsY: 3, SegmentsZ: 1}
	sm.Apply(mp)
	assert.Equal(t, [3]int{4, 3, 2}, [3]int{mp.SegmentsX, mp.SegmentsY, mp.SegmentsZ})
}
