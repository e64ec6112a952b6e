package splitter

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/mesh"
)

var ErrFormat = errors.New("malformed region mesh file")

// SharedRegionInfo holds the cells a region sends to one neighbour
type SharedRegionInfo struct {
	DstID           int
	Cells           [][4]int // Positions in TransitionNodes
	TransitionNodes []TransitionNode
}

// RegionFile is the content of one .sm file. Every integer is stored as a little endian
// int64 and every coordinate as a little endian float64.
type RegionFile struct {
	Cells          [][4]int
	Nodes          []r3.Vec
	SubmeshNodes   []int
	ContactCounts  []int
	Contacts       []mesh.ContactFace
	BoundaryCounts []int
	Boundaries     []mesh.BoundaryFace
	Shared         []SharedRegionInfo
}

// Region collects the local mesh of region r, points are the global node coordinates
func (ms *MeshSplitter) Region(r int, points []r3.Vec) (rf *RegionFile) {
	rf = &RegionFile{
		Cells:          ms.CellLocalIndices(r),
		SubmeshNodes:   ms.LocalSubmeshNodesCount(r),
		ContactCounts:  ms.meshes[r].contactCounts,
		Contacts:       ms.LocalContactFaces(r),
		BoundaryCounts: ms.meshes[r].boundaryCounts,
		Boundaries:     ms.LocalBoundaryFaces(r),
	}
	for _, n := range ms.LocalNodesGlobalIndices(r) {
		rf.Nodes = append(rf.Nodes, points[n])
	}
	for k := 0; k < ms.SharedRegionsCount(r); k++ {
		rf.Shared = append(rf.Shared, SharedRegionInfo{
			DstID:           ms.SharedRegionDstID(r, k),
			Cells:           ms.SharedCells(r, k),
			TransitionNodes: ms.TransitionNodes(r, k),
		})
	}
	return
}

type smWriter struct {
	w   *bufio.Writer
	err error
}

func (sw *smWriter) ints(v ...int) {
	if sw.err != nil {
		return
	}
	buf := make([]int64, len(v))
	for i, x := range v {
		buf[i] = int64(x)
	}
	sw.err = binary.Write(sw.w, binary.LittleEndian, buf)
}

// WriteSM writes rf in the binary region mesh layout
func WriteSM(w io.Writer, rf *RegionFile) (err error) {
	sw := &smWriter{w: bufio.NewWriter(w)}
	sw.ints(len(rf.Cells), len(rf.Nodes))
	for _, c := range rf.Cells {
		sw.ints(c[:]...)
	}
	coords := make([]float64, 0, 3*len(rf.Nodes))
	for _, p := range rf.Nodes {
		coords = append(coords, p.X, p.Y, p.Z)
	}
	if sw.err == nil {
		sw.err = binary.Write(sw.w, binary.LittleEndian, coords)
	}

	sw.ints(len(rf.SubmeshNodes))
	sw.ints(rf.SubmeshNodes...)

	sw.ints(len(rf.ContactCounts))
	sw.ints(rf.ContactCounts...)
	for _, c := range rf.Contacts {
		sw.ints(c[0][:]...)
		sw.ints(c[1][:]...)
	}

	sw.ints(len(rf.BoundaryCounts))
	sw.ints(rf.BoundaryCounts...)
	for _, b := range rf.Boundaries {
		sw.ints(b[:]...)
	}

	sw.ints(len(rf.Shared))
	for _, s := range rf.Shared {
		sw.ints(s.DstID, len(s.Cells))
		for _, c := range s.Cells {
			sw.ints(c[:]...)
		}
		sw.ints(len(s.TransitionNodes))
		for _, tn := range s.TransitionNodes {
			sw.ints(tn.Native, tn.Target)
		}
	}
	if sw.err != nil {
		return fmt.Errorf("failed to write region mesh: %w", sw.err)
	}
	if err = sw.w.Flush(); err != nil {
		return fmt.Errorf("failed to write region mesh: %w", err)
	}
	return
}

type smReader struct {
	r   *bufio.Reader
	err error
}

func (sr *smReader) ints(n int) (v []int) {
	if sr.err != nil {
		return make([]int, n)
	}
	buf := make([]int64, n)
	if sr.err = binary.Read(sr.r, binary.LittleEndian, buf); sr.err != nil {
		return make([]int, n)
	}
	v = make([]int, n)
	for i, x := range buf {
		v[i] = int(x)
	}
	return
}

func (sr *smReader) one() int { return sr.ints(1)[0] }

// count reads a record length, rejecting negative values
func (sr *smReader) count(what string) int {
	n := sr.one()
	if sr.err == nil && n < 0 {
		sr.err = fmt.Errorf("%w: %s count %d", ErrFormat, what, n)
	}
	if sr.err != nil {
		return 0
	}
	return n
}

func (sr *smReader) quad() (q [4]int) {
	copy(q[:], sr.ints(4))
	return
}

func (sr *smReader) triple() (t mesh.BoundaryFace) {
	copy(t[:], sr.ints(3))
	return
}

// ReadSM reads a region mesh written by WriteSM
func ReadSM(r io.Reader) (rf *RegionFile, err error) {
	var (
		sr    = &smReader{r: bufio.NewReader(r)}
		cells = sr.count("cell")
		nodes = sr.count("node")
	)
	rf = &RegionFile{}
	for i := 0; i < cells && sr.err == nil; i++ {
		rf.Cells = append(rf.Cells, sr.quad())
	}
	if sr.err == nil && nodes > 0 {
		coords := make([]float64, 3*nodes)
		if sr.err = binary.Read(sr.r, binary.LittleEndian, coords); sr.err == nil {
			rf.Nodes = make([]r3.Vec, nodes)
			for i := range rf.Nodes {
				rf.Nodes[i] = r3.Vec{X: coords[3*i], Y: coords[3*i+1], Z: coords[3*i+2]}
			}
		}
	}

	rf.SubmeshNodes = sr.ints(sr.count("submesh"))

	rf.ContactCounts = sr.ints(sr.count("contact type"))
	for _, n := range rf.ContactCounts {
		for k := 0; k < n && sr.err == nil; k++ {
			rf.Contacts = append(rf.Contacts, mesh.ContactFace{sr.triple(), sr.triple()})
		}
	}

	rf.BoundaryCounts = sr.ints(sr.count("boundary type"))
	for _, n := range rf.BoundaryCounts {
		for k := 0; k < n && sr.err == nil; k++ {
			rf.Boundaries = append(rf.Boundaries, sr.triple())
		}
	}

	shared := sr.count("shared region")
	for i := 0; i < shared && sr.err == nil; i++ {
		s := SharedRegionInfo{DstID: sr.one()}
		nc := sr.count("shared cell")
		for k := 0; k < nc && sr.err == nil; k++ {
			s.Cells = append(s.Cells, sr.quad())
		}
		nt := sr.count("transition node")
		for k := 0; k < nt && sr.err == nil; k++ {
			p := sr.ints(2)
			s.TransitionNodes = append(s.TransitionNodes, TransitionNode{Native: p[0], Target: p[1]})
		}
		rf.Shared = append(rf.Shared, s)
	}
	if sr.err != nil {
		if errors.Is(sr.err, io.EOF) || errors.Is(sr.err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v", ErrFormat, sr.err)
		}
		return nil, fmt.Errorf("failed to read region mesh: %w", sr.err)
	}
	return
}
