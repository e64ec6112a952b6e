package splitter

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/notargets/meshbuilder/mesh"
	"github.com/notargets/meshbuilder/readfiles"
)

// Options place the region files and set the segment grid
type Options struct {
	DataDir                         string
	Prefix                          string // File name prefix, "Mesh" when empty
	SegmentsX, SegmentsY, SegmentsZ int
}

func (o Options) base(r int) string {
	prefix := o.Prefix
	if prefix == "" {
		prefix = "Mesh"
	}
	return filepath.Join(o.DataDir, fmt.Sprintf("%s%d", prefix, r))
}

// SplitAndSave cuts the tetrahedral mesh of m into segment regions and writes one .sm,
// .node and .ele file per region into the data directory. All regions are computed
// before the first file is written.
func SplitAndSave(m *mesh.Mesh, opt Options) (ms *MeshSplitter, err error) {
	if m.Out == nil {
		return nil, mesh.ErrNotBuilt
	}
	var (
		points  = m.Out.Points
		cells   = m.Out.Tets
		regions []int
	)
	log.Printf("Splitting mesh")
	if regions, err = SegmentRegions(points, cells, opt.SegmentsX, opt.SegmentsY, opt.SegmentsZ); err != nil {
		return nil, fmt.Errorf("failed to split mesh: %w", err)
	}
	ms = &MeshSplitter{RegionsCount: opt.SegmentsX * opt.SegmentsY * opt.SegmentsZ}
	if err = ms.LoadBaseMeshes(cells, regions, []int{len(points)},
		m.Contacts, m.ContactTypes, m.Boundaries, m.BoundaryTypes); err != nil {
		return nil, fmt.Errorf("failed to split mesh: %w", err)
	}
	log.Printf("Mesh was split successfully")
	log.Printf("Split into %d regions", ms.MeshesCount())

	files := make([]*RegionFile, ms.MeshesCount())
	for r := range files {
		files[r] = ms.Region(r, points)
	}
	if err = os.MkdirAll(opt.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opt.DataDir, err)
	}
	for r, rf := range files {
		base := opt.base(r)
		ms.Print(r)
		log.Printf("Saving mesh %s.sm", base)
		if err = writeFile(base+".sm", func(w io.Writer) error { return WriteSM(w, rf) }); err != nil {
			return
		}
		log.Printf("Saving .node file")
		if err = writeFile(base+".node", func(w io.Writer) error { return readfiles.WriteNode(w, rf.Nodes) }); err != nil {
			return
		}
		log.Printf("Saving .ele file")
		if err = writeFile(base+".ele", func(w io.Writer) error { return readfiles.WriteEle(w, rf.Cells) }); err != nil {
			return
		}
	}
	ms.PrintStatistics()
	return
}

func writeFile(name string, write func(w io.Writer) error) (err error) {
	var file *os.File
	if file, err = os.Create(name); err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", name, cerr)
		}
	}()
	if err = write(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return
}
