package splitter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/mesh"
	"github.com/notargets/meshbuilder/readfiles"
)

// tetStrip chains n tetrahedra, tet k uses nodes k..k+3
func tetStrip(n int) (points []r3.Vec, cells [][4]int) {
	for k := 0; k < n; k++ {
		cells = append(cells, [4]int{k, k + 1, k + 2, k + 3})
	}
	for i := 0; i < n+3; i++ {
		points = append(points, r3.Vec{X: float64(i), Y: float64(i % 2), Z: float64(i % 3)})
	}
	return
}

// gridTets splits an nx × ny × nz block of unit cubes into six Kuhn tetrahedra each
func gridTets(nx, ny, nz int) (points []r3.Vec, cells [][4]int) {
	id := func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				points = append(points, r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)})
			}
		}
	}
	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for _, p := range perms {
					var (
						v    = [3]int{i, j, k}
						cell [4]int
					)
					cell[0] = id(v[0], v[1], v[2])
					for s, axis := range p {
						v[axis]++
						cell[s+1] = id(v[0], v[1], v[2])
					}
					cells = append(cells, cell)
				}
			}
		}
	}
	return
}

func TestRegionBuilder(t *testing.T) {
	cells := [][4]int{{0, 1, 2, 3}, {4, 5, 6, 7}}
	contacts := []mesh.ContactFace{{{1, 2, 3}, {5, 6, 7}}}
	{ // Contacts make both sides visible to each other
		rb := &RegionBuilder{}
		require.NoError(t, rb.LoadMesh(cells, []int{0, 1}, contacts))
		assert.Equal(t, 8, rb.NodesCount())
		assert.Equal(t, []int{0}, rb.NodeRegions(0))
		assert.Equal(t, []int{0, 1}, rb.NodeRegions(1))
		assert.Equal(t, []int{1, 0}, rb.NodeRegions(5))
		assert.Equal(t, []int{1}, rb.NodeRegions(4))
		assert.Nil(t, rb.NodeRegions(8))
	}
	{ // Node regions spread to every node of the cell
		rb := &RegionBuilder{}
		require.NoError(t, rb.LoadMeshByNodes(cells, []int{0, 0, 1, 1, 2, 2, 2, 2}, nil))
		for n := 0; n < 4; n++ {
			assert.Equal(t, []int{0, 1}, rb.NodeRegions(n))
		}
		assert.Equal(t, []int{2}, rb.NodeRegions(7))
	}
	{
		rb := &RegionBuilder{}
		assert.ErrorIs(t, rb.LoadMesh(cells, []int{0}, nil), ErrBadMesh)
		assert.ErrorIs(t, rb.LoadMesh(cells, []int{0, 1}, []mesh.ContactFace{{{1, 2, 3}, {5, 6, 9}}}), ErrBadMesh)
	}
}

func newStripSplitter(t *testing.T, quotas []int) *MeshSplitter {
	_, cells := tetStrip(8)
	var (
		ms         = &MeshSplitter{}
		boundaries = []mesh.BoundaryFace{{0, 1, 2}, {4, 5, 6}, {8, 9, 10}}
	)
	require.NoError(t, ms.LoadBaseMeshes(cells, []int{0, 0, 0, 0, 1, 1, 1, 1}, quotas,
		nil, nil, boundaries, []int{2, 1}))
	return ms
}

func TestSplitStrip(t *testing.T) {
	ms := newStripSplitter(t, []int{11})
	require.Equal(t, 2, ms.MeshesCount())
	assert.Equal(t, 8, ms.CellsCount())
	assert.Equal(t, 14, ms.ExpandedCellsCount())
	for r := 0; r < 2; r++ {
		assert.Equal(t, 7, ms.LocalCellsCount(r))
		assert.Equal(t, 10, ms.NodesCount(r))
		assert.Equal(t, 1, ms.SharedRegionsCount(r))
		assert.Equal(t, 1-r, ms.SharedRegionDstID(r, 0))
		assert.Equal(t, 3, ms.SharedCellsCount(r, 0))
		assert.Equal(t, 6, ms.TransitionNodesCount(r, 0))
		assert.Equal(t, []int{10}, ms.LocalSubmeshNodesCount(r))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, ms.LocalNodesGlobalIndices(0))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ms.LocalNodesGlobalIndices(1))
	assert.Equal(t, -1, ms.NodeLocalIndex(1, 0))
	assert.Equal(t, 9, ms.NodeLocalIndex(1, 10))
	assert.Equal(t, -1, ms.NodeLocalIndex(0, 11))

	// Own cells come first in input order, then the copies
	assert.Equal(t, [4]int{0, 1, 2, 3}, ms.CellLocalIndices(0)[0])
	assert.Equal(t, [4]int{3, 4, 5, 6}, ms.CellLocalIndices(1)[0])
	assert.Equal(t, [4]int{0, 1, 2, 3}, ms.CellLocalIndices(1)[4])

	// Region 0 sends cells 1..3 over nodes 1..6, region 1 sends cells 4..6 over nodes 4..9
	assert.Equal(t, [][4]int{{0, 1, 2, 3}, {1, 2, 3, 4}, {2, 3, 4, 5}}, ms.SharedCells(0, 0))
	tn := ms.TransitionNodes(1, 0)
	require.Len(t, tn, 6)
	assert.Equal(t, TransitionNode{Native: 3, Target: 4}, tn[0])

	for r := 0; r < 2; r++ {
		dst := ms.SharedRegionDstID(r, 0)
		var (
			own   = ms.LocalNodesGlobalIndices(r)
			other = ms.LocalNodesGlobalIndices(dst)
		)
		for _, p := range ms.TransitionNodes(r, 0) {
			assert.Equal(t, own[p.Native], other[p.Target])
		}
	}

	assert.Equal(t, 2, ms.LocalBoundaryTypesCount(0))
	assert.Equal(t, 2, ms.LocalBoundaryFacesCount(0, 0))
	assert.Equal(t, 0, ms.LocalBoundaryFacesCount(0, 1))
	assert.Equal(t, []mesh.BoundaryFace{{0, 1, 2}, {4, 5, 6}}, ms.LocalBoundaryFaces(0))
	assert.Equal(t, 1, ms.LocalBoundaryFacesCount(1, 0))
	assert.Equal(t, 1, ms.LocalBoundaryFacesCount(1, 1))
	assert.Equal(t, []mesh.BoundaryFace{{3, 4, 5}, {7, 8, 9}}, ms.LocalBoundaryFaces(1))
	assert.Equal(t, 0, ms.LocalContactTypesCount(0))

	A := ms.RegionAdjacency()
	assert.Equal(t, 7., A.At(0, 0))
	assert.Equal(t, 6., A.At(0, 1))
	assert.Equal(t, 7., A.At(1, 1))
}

func TestSubmeshQuotas(t *testing.T) {
	ms := newStripSplitter(t, []int{5, 6})
	assert.Equal(t, 2, ms.LocalSubmeshesCount(0))
	assert.Equal(t, []int{5, 5}, ms.LocalSubmeshNodesCount(0))
	assert.Equal(t, []int{4, 6}, ms.LocalSubmeshNodesCount(1))

	_, cells := tetStrip(8)
	regions := []int{0, 0, 0, 0, 1, 1, 1, 1}
	for _, q := range [][]int{{10}, {12}, {12, -1}, nil} {
		ms = &MeshSplitter{}
		assert.ErrorIs(t, ms.LoadBaseMeshes(cells, regions, q, nil, nil, nil, nil), ErrSubmeshQuota)
	}
	ms = &MeshSplitter{}
	assert.ErrorIs(t, ms.LoadBaseMeshes(cells, regions, []int{11}, nil, nil,
		[]mesh.BoundaryFace{{0, 1, 2}}, []int{2}), ErrFaceTypes)
	assert.ErrorIs(t, ms.LoadBaseMeshes(nil, nil, []int{0}, nil, nil, nil, nil), ErrBadMesh)
}

func TestSplitContacts(t *testing.T) {
	var (
		cells    = [][4]int{{0, 1, 2, 3}, {4, 5, 6, 7}}
		contacts = []mesh.ContactFace{{{1, 2, 3}, {5, 6, 7}}}
		ms       = &MeshSplitter{}
	)
	require.NoError(t, ms.LoadBaseMeshes(cells, []int{0, 1}, []int{8}, contacts, []int{1}, nil, nil))
	// Cells facing each other through a contact are copied across it
	for r := 0; r < 2; r++ {
		assert.Equal(t, 2, ms.LocalCellsCount(r))
		assert.Equal(t, 8, ms.NodesCount(r))
		assert.Equal(t, 1, ms.LocalContactTypesCount(r))
		assert.Equal(t, 1, ms.LocalContactFacesCount(r, 0))
		assert.Equal(t, contacts, ms.LocalContactFaces(r))
	}
	assert.Equal(t, [][4]int{{0, 1, 2, 3}}, ms.SharedCells(0, 0))
	assert.Equal(t, 4, ms.TransitionNodesCount(1, 0))
}

func TestSegmentRegions(t *testing.T) {
	points, cells := gridTets(2, 1, 1)
	regions, err := SegmentRegions(points, cells, 2, 1, 1)
	require.NoError(t, err)
	// Centroids sit at x offsets 0.25, 0.5 and 0.75 in each cube, the split point is the
	// sorted value at index 6, 1.25, and only larger values move up
	for c, r := range regions {
		if c < 6 {
			assert.Equal(t, 0, r)
			continue
		}
		x := (points[cells[c][0]].X + points[cells[c][1]].X + points[cells[c][2]].X + points[cells[c][3]].X) / 4
		if x > 1.25 {
			assert.Equal(t, 1, r)
		} else {
			assert.Equal(t, 0, r)
		}
	}

	points, cells = gridTets(2, 2, 2)
	regions, err = SegmentRegions(points, cells, 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, regions[0])
	// The last cell has its centroid at (1.25, 1.5, 1.75), a tie on x stays low
	assert.Equal(t, 6, regions[len(cells)-1])

	regions, err = SegmentRegions(points, cells, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, make([]int, len(cells)), regions)

	_, err = SegmentRegions(points, cells, 0, 1, 1)
	assert.ErrorIs(t, err, ErrBadMesh)
	_, err = SegmentRegions(points, [][4]int{{0, 1, 2, 99}}, 1, 1, 1)
	assert.ErrorIs(t, err, ErrBadMesh)
}

func TestSMRoundTrip(t *testing.T) {
	points, _ := tetStrip(8)
	ms := newStripSplitter(t, []int{11})
	rf := ms.Region(1, points)

	var buf bytes.Buffer
	require.NoError(t, WriteSM(&buf, rf))
	// Header, cells, coordinates, submeshes, no contact types, boundaries, one shared region
	size := 8 * (2 + 7*4 + 10*3 + 2 + 1 + 3 + 2*3 + 1 + 2 + 3*4 + 1 + 6*2)
	assert.Equal(t, size, buf.Len())

	back, err := ReadSM(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, rf.Cells, back.Cells)
	assert.Equal(t, rf.Nodes, back.Nodes)
	assert.Equal(t, rf.SubmeshNodes, back.SubmeshNodes)
	assert.Empty(t, back.Contacts)
	assert.Equal(t, rf.BoundaryCounts, back.BoundaryCounts)
	assert.Equal(t, rf.Boundaries, back.Boundaries)
	assert.Equal(t, rf.Shared, back.Shared)

	_, err = ReadSM(bytes.NewReader(buf.Bytes()[:buf.Len()-8]))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestSplitAndSave(t *testing.T) {
	points, cells := gridTets(2, 1, 1)
	m := &mesh.Mesh{Out: &mesh.TetMesh{Points: points, Tets: cells}}
	_, err := SplitAndSave(&mesh.Mesh{}, Options{})
	require.ErrorIs(t, err, mesh.ErrNotBuilt)

	dir := filepath.Join(t.TempDir(), "Data")
	ms, err := SplitAndSave(m, Options{DataDir: dir, SegmentsX: 2, SegmentsY: 1, SegmentsZ: 1})
	require.NoError(t, err)
	require.Equal(t, 2, ms.MeshesCount())
	assert.Equal(t, 12, ms.CellsCount())

	for r := 0; r < 2; r++ {
		base := filepath.Join(dir, "Mesh"+string(rune('0'+r)))
		file, err := os.Open(base + ".sm")
		require.NoError(t, err)
		rf, err := ReadSM(file)
		file.Close()
		require.NoError(t, err)
		assert.Equal(t, ms.CellLocalIndices(r), rf.Cells)
		require.Len(t, rf.Nodes, ms.NodesCount(r))
		for i, n := range ms.LocalNodesGlobalIndices(r) {
			assert.Equal(t, points[n], rf.Nodes[i])
		}
		assert.Equal(t, []int{ms.NodesCount(r)}, rf.SubmeshNodes)

		node, err := os.Open(base + ".node")
		require.NoError(t, err)
		nodes, first, err := readfiles.ReadNode(node)
		require.NoError(t, err)
		assert.Equal(t, rf.Nodes, nodes)
		ele, err := os.Open(base + ".ele")
		require.NoError(t, err)
		tets, err := readfiles.ReadEle(ele, first)
		require.NoError(t, err)
		assert.Equal(t, rf.Cells, tets)
		node.Close()
		ele.Close()
	}
}

func TestSplitEmptyRegion(t *testing.T) {
	points, cells := tetStrip(1)
	m := &mesh.Mesh{Out: &mesh.TetMesh{Points: points, Tets: cells}}
	dir := t.TempDir()
	// A single cell cannot fill both x segments
	ms, err := SplitAndSave(m, Options{DataDir: dir, SegmentsX: 2, SegmentsY: 1, SegmentsZ: 1})
	require.NoError(t, err)
	require.Equal(t, 2, ms.MeshesCount())
	assert.Equal(t, 1, ms.LocalCellsCount(0))
	assert.Equal(t, 0, ms.LocalCellsCount(1))
	assert.Equal(t, 0, ms.NodesCount(1))

	file, err := os.Open(filepath.Join(dir, "Mesh1.sm"))
	require.NoError(t, err)
	defer file.Close()
	rf, err := ReadSM(file)
	require.NoError(t, err)
	assert.Empty(t, rf.Cells)
	assert.Empty(t, rf.Nodes)
	assert.Equal(t, []int{0}, rf.SubmeshNodes)
	assert.Empty(t, rf.Shared)
	for _, ext := range []string{".node", ".ele"} {
		assert.FileExists(t, filepath.Join(dir, "Mesh1"+ext))
	}

	// Without a region count only ids that hold cells get a local mesh
	ms = &MeshSplitter{}
	require.NoError(t, ms.LoadBaseMeshes(cells, []int{0}, []int{4}, nil, nil, nil, nil))
	assert.Equal(t, 1, ms.MeshesCount())
	ms = &MeshSplitter{RegionsCount: 3}
	require.NoError(t, ms.LoadBaseMeshes(cells, []int{0}, []int{4}, nil, nil, nil, nil))
	assert.Equal(t, 3, ms.MeshesCount())
}
