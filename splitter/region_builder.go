package splitter

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/notargets/meshbuilder/mesh"
)

var ErrBadMesh = errors.New("invalid mesh for splitting")

// RegionBuilder finds, for every node, the regions that reach it through an incident
// cell. Contact pairs make the regions of each side visible to the other.
type RegionBuilder struct {
	regions [][]int
}

// LoadMesh takes the region of every cell
func (rb *RegionBuilder) LoadMesh(cells [][4]int, cellRegion []int, contacts []mesh.ContactFace) (err error) {
	if len(cellRegion) != len(cells) {
		return fmt.Errorf("%w: %d region ids for %d cells", ErrBadMesh, len(cellRegion), len(cells))
	}
	if err = rb.allocate(cells); err != nil {
		return
	}
	for c, cell := range cells {
		for _, n := range cell {
			rb.add(n, cellRegion[c])
		}
	}
	return rb.mergeContacts(contacts)
}

// LoadMeshByNodes takes the region of every node. Each node of a cell is reached by
// the regions of all four nodes of the cell.
func (rb *RegionBuilder) LoadMeshByNodes(cells [][4]int, nodeRegion []int, contacts []mesh.ContactFace) (err error) {
	if err = rb.allocate(cells); err != nil {
		return
	}
	if len(nodeRegion) < len(rb.regions) {
		return fmt.Errorf("%w: %d region ids for %d nodes", ErrBadMesh, len(nodeRegion), len(rb.regions))
	}
	for _, cell := range cells {
		for _, r := range cell {
			for _, n := range cell {
				rb.add(n, nodeRegion[r])
			}
		}
	}
	return rb.mergeContacts(contacts)
}

// NodesCount is one past the largest node index of the cells
func (rb *RegionBuilder) NodesCount() int { return len(rb.regions) }

// NodeRegions lists the regions of node in first seen order, nil for an unknown node
func (rb *RegionBuilder) NodeRegions(node int) []int {
	if node < 0 || node >= len(rb.regions) {
		return nil
	}
	return rb.regions[node]
}

func (rb *RegionBuilder) allocate(cells [][4]int) error {
	nodes := 0
	for c, cell := range cells {
		for _, n := range cell {
			if n < 0 {
				return fmt.Errorf("%w: cell %d has node %d", ErrBadMesh, c, n)
			}
			nodes = max(nodes, n+1)
		}
	}
	rb.regions = make([][]int, nodes)
	return nil
}

func (rb *RegionBuilder) add(node, region int) {
	if !lo.Contains(rb.regions[node], region) {
		rb.regions[node] = append(rb.regions[node], region)
	}
}

// mergeContacts runs once per matched node pair u, v: u's regions go to v, then the
// regions of v, now including u's, go back to u
func (rb *RegionBuilder) mergeContacts(contacts []mesh.ContactFace) error {
	for i, c := range contacts {
		for j := 0; j < 3; j++ {
			u, v := c[0][j], c[1][j]
			if u < 0 || v < 0 || u >= len(rb.regions) || v >= len(rb.regions) {
				return fmt.Errorf("%w: contact face %d pairs nodes %d and %d of %d", ErrBadMesh, i, u, v, len(rb.regions))
			}
			for _, r := range rb.regions[u] {
				rb.add(v, r)
			}
			for _, r := range rb.regions[v] {
				rb.add(u, r)
			}
		}
	}
	return nil
}
