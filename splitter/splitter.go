package splitter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/notargets/meshbuilder/mesh"
)

var (
	ErrSubmeshQuota = errors.New("submesh node quotas do not match the nodes")
	ErrFaceTypes    = errors.New("face type counts do not match the faces")
)

// TransitionNode pairs the local index of a node in its own region with the local
// index of the same node in the neighbouring region
type TransitionNode struct {
	Native, Target int
}

type sharedRegion struct {
	dst             int
	cells           [][4]int // Global corners
	transition      [][4]int // Corners as positions in transitionNodes
	transitionNodes []int    // Sorted global nodes of cells
}

type localMesh struct {
	nodeGlobal     []int
	cells          [][4]int // Global corners
	origins        []int    // Input cell of every local cell
	shared         []*sharedRegion
	submeshNodes   []int
	contactCounts  []int
	contacts       []mesh.ContactFace // Local corners
	boundaryCounts []int
	boundaries     []mesh.BoundaryFace // Local corners
}

type nodeInfo struct {
	regions []int
	local   []int
}

// MeshSplitter decomposes a tetrahedral mesh whose cells carry region ids into one
// local mesh per region. Every region keeps its own cells plus a copy of each foreign
// cell touching one of its nodes, so neighbouring regions overlap by one cell layer.
type MeshSplitter struct {
	// RegionsCount is the least number of regions, ids without cells get an empty local mesh
	RegionsCount int

	meshes         []*localMesh
	nodes          []nodeInfo
	cellsCount     int
	expandedOrigin []int // Original cell of every expanded cell
}

// LoadBaseMeshes splits cells by cellRegion. Contact faces are pairs of node triples,
// contactTypeCounts and boundaryTypeCounts give consecutive runs of faces of one type.
// subMeshQuotas assign consecutive node runs to sub-meshes and must add up to the node count.
func (ms *MeshSplitter) LoadBaseMeshes(cells [][4]int, cellRegion []int, subMeshQuotas []int,
	contacts []mesh.ContactFace, contactTypeCounts []int,
	boundaries []mesh.BoundaryFace, boundaryTypeCounts []int) (err error) {
	if len(cells) == 0 {
		return fmt.Errorf("%w: no cells", ErrBadMesh)
	}
	if lo.Sum(contactTypeCounts) != len(contacts) {
		return fmt.Errorf("%w: %d contact faces, counts %v", ErrFaceTypes, len(contacts), contactTypeCounts)
	}
	if lo.Sum(boundaryTypeCounts) != len(boundaries) {
		return fmt.Errorf("%w: %d boundary faces, counts %v", ErrFaceTypes, len(boundaries), boundaryTypeCounts)
	}
	rb := &RegionBuilder{}
	if err = rb.LoadMesh(cells, cellRegion, contacts); err != nil {
		return
	}
	meshesCount := ms.RegionsCount
	for c, r := range cellRegion {
		if r < 0 {
			return fmt.Errorf("%w: cell %d in region %d", ErrBadMesh, c, r)
		}
		meshesCount = max(meshesCount, r+1)
	}
	ms.cellsCount = len(cells)
	ms.meshes = make([]*localMesh, meshesCount)
	for r := range ms.meshes {
		ms.meshes[r] = &localMesh{}
	}

	expanded, expandedRegion := ms.computeExpandedIndices(cells, cellRegion, rb)
	for i, cell := range expanded {
		lm := ms.meshes[expandedRegion[i]]
		lm.cells = append(lm.cells, cell)
		lm.origins = append(lm.origins, ms.expandedOrigin[i])
	}
	if err = ms.computeNodeInfo(expanded, expandedRegion); err != nil {
		return
	}
	ms.computeTransitionNodes()
	if err = ms.computeLocalSubmeshes(subMeshQuotas); err != nil {
		return
	}
	if err = ms.computeLocalContactFaces(contacts, contactTypeCounts); err != nil {
		return
	}
	return ms.computeLocalBoundaryFaces(boundaries, boundaryTypeCounts)
}

// computeExpandedIndices lists the input cells followed by one copy of every cell
// for each foreign region that reaches one of its nodes
func (ms *MeshSplitter) computeExpandedIndices(cells [][4]int, cellRegion []int, rb *RegionBuilder) (
	expanded [][4]int, expandedRegion []int) {
	expanded = append(expanded, cells...)
	expandedRegion = append(expandedRegion, cellRegion...)
	ms.expandedOrigin = make([]int, len(cells))
	for c := range cells {
		ms.expandedOrigin[c] = c
	}
	for c, cell := range cells {
		var (
			src     = cellRegion[c]
			regions []int
		)
		for _, n := range cell {
			for _, r := range rb.NodeRegions(n) {
				if !lo.Contains(regions, r) {
					regions = append(regions, r)
				}
			}
		}
		for _, dst := range regions {
			if dst == src {
				continue
			}
			sr, found := lo.Find(ms.meshes[src].shared, func(s *sharedRegion) bool { return s.dst == dst })
			if !found {
				sr = &sharedRegion{dst: dst}
				ms.meshes[src].shared = append(ms.meshes[src].shared, sr)
			}
			sr.cells = append(sr.cells, cell)
			expanded = append(expanded, cell)
			expandedRegion = append(expandedRegion, dst)
			ms.expandedOrigin = append(ms.expandedOrigin, c)
		}
	}
	return
}

// computeNodeInfo numbers the nodes of every region in global order
func (ms *MeshSplitter) computeNodeInfo(expanded [][4]int, expandedRegion []int) (err error) {
	rb := &RegionBuilder{}
	if err = rb.LoadMesh(expanded, expandedRegion, nil); err != nil {
		return
	}
	counters := make([]int, len(ms.meshes))
	ms.nodes = make([]nodeInfo, rb.NodesCount())
	for n := range ms.nodes {
		ni := &ms.nodes[n]
		ni.regions = append([]int{}, rb.NodeRegions(n)...)
		ni.local = make([]int, len(ni.regions))
		for k, r := range ni.regions {
			ni.local[k] = counters[r]
			counters[r]++
		}
	}
	for r, lm := range ms.meshes {
		lm.nodeGlobal = make([]int, counters[r])
	}
	for n, ni := range ms.nodes {
		for k, r := range ni.regions {
			ms.meshes[r].nodeGlobal[ni.local[k]] = n
		}
	}
	return
}

func (ms *MeshSplitter) computeTransitionNodes() {
	for _, lm := range ms.meshes {
		for _, sr := range lm.shared {
			var all []int
			for _, cell := range sr.cells {
				all = append(all, cell[:]...)
			}
			sr.transitionNodes = lo.Uniq(all)
			sort.Ints(sr.transitionNodes)
			position := make(map[int]int, len(sr.transitionNodes))
			for i, n := range sr.transitionNodes {
				position[n] = i
			}
			sr.transition = make([][4]int, len(sr.cells))
			for c, cell := range sr.cells {
				for j, n := range cell {
					sr.transition[c][j] = position[n]
				}
			}
		}
	}
}

// computeLocalSubmeshes walks the global nodes against the quotas and counts, per
// region, the local nodes falling in each sub-mesh
func (ms *MeshSplitter) computeLocalSubmeshes(quotas []int) (err error) {
	if len(quotas) == 0 || lo.Sum(quotas) != len(ms.nodes) || lo.Min(quotas) < 0 {
		return fmt.Errorf("%w: quotas %v for %d nodes", ErrSubmeshQuota, quotas, len(ms.nodes))
	}
	for _, lm := range ms.meshes {
		lm.submeshNodes = make([]int, len(quotas))
	}
	var (
		current = 0
		remain  = quotas[0]
	)
	for _, ni := range ms.nodes {
		for remain == 0 {
			current++
			remain = quotas[current]
		}
		for _, r := range ni.regions {
			ms.meshes[r].submeshNodes[current]++
		}
		remain--
	}
	return
}

// faceTypes expands consecutive type counts into one type per face
func faceTypes(counts []int) (types []int) {
	types = make([]int, 0, lo.Sum(counts))
	for t, n := range counts {
		for k := 0; k < n; k++ {
			types = append(types, t)
		}
	}
	return
}

// candidates are the regions of the first node of a face, which holds every region
// that can own the whole face
func (ms *MeshSplitter) candidates(node int) (regions []int, err error) {
	if node < 0 || node >= len(ms.nodes) {
		return nil, fmt.Errorf("%w: face node %d of %d", ErrBadMesh, node, len(ms.nodes))
	}
	return ms.nodes[node].regions, nil
}

func (ms *MeshSplitter) localFace(r int, f mesh.BoundaryFace) (local mesh.BoundaryFace, ok bool) {
	for j, n := range f {
		if local[j] = ms.NodeLocalIndex(r, n); local[j] < 0 {
			return
		}
	}
	return local, true
}

func (ms *MeshSplitter) computeLocalContactFaces(contacts []mesh.ContactFace, counts []int) (err error) {
	for _, lm := range ms.meshes {
		lm.contactCounts = make([]int, len(counts))
	}
	types := faceTypes(counts)
	for i, c := range contacts {
		var regions []int
		if regions, err = ms.candidates(c[0][0]); err != nil {
			return
		}
		for _, r := range regions {
			a, okA := ms.localFace(r, c[0])
			b, okB := ms.localFace(r, c[1])
			if okA && okB {
				lm := ms.meshes[r]
				lm.contacts = append(lm.contacts, mesh.ContactFace{a, b})
				lm.contactCounts[types[i]]++
			}
		}
	}
	return
}

func (ms *MeshSplitter) computeLocalBoundaryFaces(boundaries []mesh.BoundaryFace, counts []int) (err error) {
	for _, lm := range ms.meshes {
		lm.boundaryCounts = make([]int, len(counts))
	}
	types := faceTypes(counts)
	for i, f := range boundaries {
		var regions []int
		if regions, err = ms.candidates(f[0]); err != nil {
			return
		}
		for _, r := range regions {
			if local, ok := ms.localFace(r, f); ok {
				lm := ms.meshes[r]
				lm.boundaries = append(lm.boundaries, local)
				lm.boundaryCounts[types[i]]++
			}
		}
	}
	return
}

func (ms *MeshSplitter) MeshesCount() int { return len(ms.meshes) }

// CellsCount is the number of input cells, ExpandedCellsCount adds the copies held by
// foreign regions
func (ms *MeshSplitter) CellsCount() int         { return ms.cellsCount }
func (ms *MeshSplitter) ExpandedCellsCount() int { return len(ms.expandedOrigin) }

func (ms *MeshSplitter) NodesCount(r int) int      { return len(ms.meshes[r].nodeGlobal) }
func (ms *MeshSplitter) LocalCellsCount(r int) int { return len(ms.meshes[r].cells) }

// LocalNodesGlobalIndices maps the local nodes of region r to global nodes
func (ms *MeshSplitter) LocalNodesGlobalIndices(r int) []int { return ms.meshes[r].nodeGlobal }

// CellLocalIndices returns the cells of region r in local node numbering, own cells first
func (ms *MeshSplitter) CellLocalIndices(r int) (cells [][4]int) {
	lm := ms.meshes[r]
	cells = make([][4]int, len(lm.cells))
	for c, cell := range lm.cells {
		for j, n := range cell {
			cells[c][j] = ms.NodeLocalIndex(r, n)
		}
	}
	return
}

// NodeLocalIndex is the index of global node n in region r, -1 when r does not hold n
func (ms *MeshSplitter) NodeLocalIndex(r, n int) int {
	if n < 0 || n >= len(ms.nodes) {
		return -1
	}
	ni := ms.nodes[n]
	if k := lo.IndexOf(ni.regions, r); k >= 0 {
		return ni.local[k]
	}
	return -1
}

func (ms *MeshSplitter) LocalSubmeshesCount(r int) int     { return len(ms.meshes[r].submeshNodes) }
func (ms *MeshSplitter) LocalSubmeshNodesCount(r int) []int { return ms.meshes[r].submeshNodes }

func (ms *MeshSplitter) LocalContactTypesCount(r int) int         { return len(ms.meshes[r].contactCounts) }
func (ms *MeshSplitter) LocalContactFacesCount(r, t int) int      { return ms.meshes[r].contactCounts[t] }
func (ms *MeshSplitter) LocalContactFaces(r int) []mesh.ContactFace { return ms.meshes[r].contacts }

func (ms *MeshSplitter) LocalBoundaryTypesCount(r int) int          { return len(ms.meshes[r].boundaryCounts) }
func (ms *MeshSplitter) LocalBoundaryFacesCount(r, t int) int       { return ms.meshes[r].boundaryCounts[t] }
func (ms *MeshSplitter) LocalBoundaryFaces(r int) []mesh.BoundaryFace { return ms.meshes[r].boundaries }

// SharedRegionsCount is the number of neighbours receiving copies of region r cells
func (ms *MeshSplitter) SharedRegionsCount(r int) int   { return len(ms.meshes[r].shared) }
func (ms *MeshSplitter) SharedRegionDstID(r, k int) int { return ms.meshes[r].shared[k].dst }
func (ms *MeshSplitter) SharedCellsCount(r, k int) int  { return len(ms.meshes[r].shared[k].cells) }

// SharedCells returns the cells region r sends to its k-th neighbour with corners given
// as positions in the transition node list
func (ms *MeshSplitter) SharedCells(r, k int) [][4]int { return ms.meshes[r].shared[k].transition }

func (ms *MeshSplitter) TransitionNodesCount(r, k int) int {
	return len(ms.meshes[r].shared[k].transitionNodes)
}

// TransitionNodes returns the nodes of the cells region r shares with its k-th neighbour,
// ordered by global index
func (ms *MeshSplitter) TransitionNodes(r, k int) (tn []TransitionNode) {
	sr := ms.meshes[r].shared[k]
	tn = make([]TransitionNode, len(sr.transitionNodes))
	for i, n := range sr.transitionNodes {
		tn[i] = TransitionNode{
			Native: ms.NodeLocalIndex(r, n),
			Target: ms.NodeLocalIndex(sr.dst, n),
		}
	}
	return
}
