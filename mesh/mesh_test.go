package mesh

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/figure"
	"github.com/notargets/meshbuilder/geometry2D"
	"github.com/notargets/meshbuilder/geometry3D"
	"github.com/notargets/meshbuilder/readfiles"
)

const twoCubes = `
[Mesh]
quality = 1.4
average_step = 0.5
[Segments]
number_of_segments_x = 1
number_of_segments_y = 1
number_of_segments_z = 1
[Figures]
number_of_figures = 2
figure1_type = Cube
figure2_type = Cube
figure2_position = 3 0 0
figure2_is_empty = true
[Cube]
size = 1
[Fracture]
height = 1
length = 2
thickness = 0.1
hpart = 0.5
lpart = 0.5
is_contact = true
`

// fanMesher fills every closed skin with tetrahedra from the centroid of the
// complex points and records how it was called
type fanMesher struct {
	switches []string
	volumes  []float64
}

func (fm *fanMesher) Tetrahedralize(_ context.Context, plc *PLC, switches string) (*TetMesh, error) {
	fm.switches = append(fm.switches, switches)
	tm := &TetMesh{Points: append([]r3.Vec{}, plc.Points...)}
	c := len(tm.Points)
	tm.Points = append(tm.Points, geometry3D.Centroid(plc.Points...))
	for _, f := range plc.Facets {
		tm.Tets = append(tm.Tets, [4]int{f[0], f[1], f[2], c})
	}
	return tm, nil
}

func (fm *fanMesher) Refine(_ context.Context, tm *TetMesh, volumes []float64, switches string) (*TetMesh, error) {
	fm.switches = append(fm.switches, switches)
	fm.volumes = volumes
	return tm, nil
}

func newMesh(t *testing.T, text string) *Mesh {
	p, err := InputParameters.NewProfile([]byte(text))
	require.NoError(t, err)
	mp, err := InputParameters.NewMeshParameters(p)
	require.NoError(t, err)
	figures, err := figure.FromParameters(p, mp, geometry2D.Engine{})
	require.NoError(t, err)
	for _, f := range figures {
		require.NoError(t, f.MakeTriangulation(geometry2D.Engine{}))
	}
	m, err := NewMesh(figures, mp)
	require.NoError(t, err)
	return m
}

func TestAssemble(t *testing.T) {
	m := newMesh(t, twoCubes)
	require.NoError(t, m.Assemble())
	var (
		f1, f2 = m.Figures[0], m.Figures[1]
		n1     = f1.NumPoints()
	)
	require.Equal(t, n1+f2.NumPoints(), len(m.Points))
	assert.Equal(t, r3.Vec{X: 2.5, Y: -0.5, Z: -0.5}, m.Points[n1])
	assert.Equal(t, len(f1.Trifacets)+len(f2.Trifacets), len(m.Boundaries))
	assert.Empty(t, m.Contacts)
	assert.Equal(t, []r3.Vec{{X: 3}}, m.Holes)
	assert.Equal(t, []int{len(f1.Trifacets), len(f2.Trifacets)}, m.BoundaryTypes)
	// Faces of the second cube are shifted past the first one and lie in its box
	for _, b := range m.Boundaries[len(f1.Trifacets):] {
		for _, p := range b {
			require.GreaterOrEqual(t, p, n1)
			assert.InDelta(t, 3, m.Points[p].X, 0.5+1e-12)
		}
	}
	plc := m.PLC()
	assert.Equal(t, len(m.Boundaries), len(plc.Facets))
	for _, mk := range plc.Markers {
		assert.Equal(t, BoundaryMarker, mk)
	}
}

func TestContactFaces(t *testing.T) {
	m := newMesh(t, strings.Replace(twoCubes, "figure1_type = Cube\nfigure2_type = Cube",
		"figure1_type = Fracture\nfigure2_type = Fracture", 1))
	require.NoError(t, m.Assemble())
	f := m.Figures[0]
	require.Equal(t, 2*f.ContactCount(), len(m.Contacts))
	assert.Empty(t, m.Boundaries)
	assert.Equal(t, []int{f.ContactCount(), m.Figures[1].ContactCount()}, m.ContactTypes)
	for _, c := range m.Contacts[:f.ContactCount()] {
		for j := 0; j < 3; j++ {
			p, q := m.Points[c[0][j]], m.Points[c[1][j]]
			assert.InDelta(t, p.X, -q.X, 1e-9)
			assert.InDelta(t, p.Y, q.Y, 1e-9)
			assert.InDelta(t, p.Z, q.Z, 1e-9)
		}
	}
	plc := m.PLC()
	require.Equal(t, 2*len(m.Contacts), len(plc.Facets))
	assert.Equal(t, BoundaryFace(m.Contacts[0][0]), plc.Facets[0])
	assert.Equal(t, BoundaryFace(m.Contacts[0][1]), plc.Facets[1])
	for _, mk := range plc.Markers {
		assert.Equal(t, ContactMarker, mk)
	}
}

func TestSwitches(t *testing.T) {
	m := &Mesh{Quality: 1.4, AverageStep: 0.5}
	first, refine := m.Switches()
	assert.Equal(t, "pq1.4a0.020833Y", first)
	assert.Equal(t, "rq1.4aa0.020833Y", refine)
	m.Quality = 0
	first, refine = m.Switches()
	assert.Equal(t, "pa0.020833Y", first)
	assert.Equal(t, "raa0.020833Y", refine)
}

func TestBuildAndSave(t *testing.T) {
	m := newMesh(t, twoCubes)
	fm := &fanMesher{}
	require.ErrorIs(t, m.Save(filepath.Join(t.TempDir(), "out")), ErrNotAssembled)
	require.NoError(t, m.Build(context.Background(), fm))
	assert.Equal(t, []string{"pq1.4a0.020833Y"}, fm.switches)
	require.NotNil(t, m.Out)
	assert.Equal(t, len(m.Boundaries), len(m.Out.Tets))

	dir := t.TempDir()
	require.NoError(t, m.Save(filepath.Join(dir, "out")))
	for _, name := range []string{"in.node", "in.poly", "out.node", "out.ele", "out.face"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	file, err := os.Open(filepath.Join(dir, "out.node"))
	require.NoError(t, err)
	defer file.Close()
	points, first, err := readfiles.ReadNode(file)
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	assert.Equal(t, len(m.Out.Points), len(points))

	face, err := os.Open(filepath.Join(dir, "out.face"))
	require.NoError(t, err)
	defer face.Close()
	faces, markers, err := readfiles.ReadFace(face, 0)
	require.NoError(t, err)
	assert.Equal(t, len(m.Boundaries), len(faces))
	assert.Equal(t, [3]int(m.Boundaries[0]), faces[0])
	assert.Equal(t, BoundaryMarker, markers[0])
}

func TestFanVolume(t *testing.T) {
	m := newMesh(t, strings.Replace(twoCubes, "number_of_figures = 2", "number_of_figures = 1", 1))
	require.NoError(t, m.Build(context.Background(), &fanMesher{}))
	// A fan from the cube center fills it exactly
	assert.InDelta(t, 1, TotalVolume(m.Out), 1e-9)
	assert.Empty(t, m.Holes)
}

func TestBuildRefine(t *testing.T) {
	m := newMesh(t, twoCubes)
	m.SizeField = func(r3.Vec) float64 { return 0.5 }
	fm := &fanMesher{}
	require.NoError(t, m.Build(context.Background(), fm))
	assert.Equal(t, []string{"pq1.4a0.020833Y", "rq1.4aa0.020833Y"}, fm.switches)
	require.Equal(t, len(m.Out.Tets), len(fm.volumes))
	for _, v := range fm.volumes {
		assert.InDelta(t, 0.25*0.25*0.25/6, v, 1e-15)
	}
}

func TestMeshErrors(t *testing.T) {
	p, err := InputParameters.NewProfile([]byte(twoCubes))
	require.NoError(t, err)
	mp, err := InputParameters.NewMeshParameters(p)
	require.NoError(t, err)
	figures, err := figure.FromParameters(p, mp, geometry2D.Engine{})
	require.NoError(t, err)

	_, err = NewMesh(nil, mp)
	require.ErrorIs(t, err, ErrNoFigures)
	_, err = NewMesh(figures, &InputParameters.MeshParameters{AverageStep: 0})
	require.ErrorIs(t, err, InputParameters.ErrInvalidParameter)

	m, err := NewMesh(figures, mp)
	require.NoError(t, err)
	require.ErrorIs(t, m.Init(), ErrNotTriangulated)
	require.ErrorIs(t, m.Build(context.Background(), &fanMesher{}), ErrNotTriangulated)
}

func TestRadialSizeField(t *testing.T) {
	sf := RadialSizeField(r3.Vec{X: 1}, 1, 0.25)
	assert.Equal(t, 0.25, sf(r3.Vec{X: 1.5}))
	assert.InDelta(t, 0.625, sf(r3.Vec{X: 2.5}), 1e-12)
	assert.Equal(t, 1., sf(r3.Vec{X: -2}))
}

func TestTetGenMesher(t *testing.T) {
	path, err := exec.LookPath("tetgen")
	if err != nil {
		t.Skip("tetgen executable not found")
	}
	m := newMesh(t, twoCubes)
	require.NoError(t, m.Build(context.Background(), &TetGenMesher{Path: path, TempDir: t.TempDir()}))
	assert.GreaterOrEqual(t, len(m.Out.Points), len(m.Points))
	// The second cube is a hole
	assert.InDelta(t, 1, TotalVolume(m.Out), 1e-6)
}
