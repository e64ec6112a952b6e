package mesh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/readfiles"
)

var ErrMesher = errors.New("volume mesher failed")

// PLC is a piecewise linear complex of triangular facets
type PLC struct {
	Points  []r3.Vec
	Facets  []BoundaryFace
	Markers []int
	Holes   []r3.Vec
}

// TetMesh is a tetrahedral mesh. Faces and FaceMarkers hold the boundary triangles
// reported by the mesher, when it reports any.
type TetMesh struct {
	Points      []r3.Vec
	Tets        [][4]int
	Faces       [][3]int
	FaceMarkers []int
}

// VolumeMesher is the constrained Delaunay tetrahedralization engine. Switches follow
// the TetGen command line.
type VolumeMesher interface {
	Tetrahedralize(ctx context.Context, plc *PLC, switches string) (*TetMesh, error)
	// Refine remeshes tm with volumes[i] bounding the size of element i
	Refine(ctx context.Context, tm *TetMesh, volumes []float64, switches string) (*TetMesh, error)
}

// TetGenMesher runs the tetgen executable on files in a scratch directory
type TetGenMesher struct {
	Path    string // Executable, "tetgen" when empty
	TempDir string // Parent of the scratch directories, the system default when empty
}

func (tg *TetGenMesher) Tetrahedralize(ctx context.Context, plc *PLC, switches string) (tm *TetMesh, err error) {
	var dir string
	if dir, err = os.MkdirTemp(tg.TempDir, "tetgen"); err != nil {
		return
	}
	defer os.RemoveAll(dir)
	facets := make([][3]int, len(plc.Facets))
	for i, f := range plc.Facets {
		facets[i] = f
	}
	err = writeFile(filepath.Join(dir, "plc.poly"), func(w io.Writer) error {
		return readfiles.WritePoly(w, plc.Points, facets, plc.Markers, plc.Holes)
	})
	if err != nil {
		return
	}
	if err = tg.run(ctx, dir, switches, "plc.poly"); err != nil {
		return
	}
	return readTetMesh(filepath.Join(dir, "plc.1"))
}

func (tg *TetGenMesher) Refine(ctx context.Context, tm *TetMesh, volumes []float64, switches string) (out *TetMesh, err error) {
	if len(volumes) != len(tm.Tets) {
		return nil, fmt.Errorf("%w: %d volume bounds for %d elements", ErrMesher, len(volumes), len(tm.Tets))
	}
	var dir string
	if dir, err = os.MkdirTemp(tg.TempDir, "tetgen"); err != nil {
		return
	}
	defer os.RemoveAll(dir)
	base := filepath.Join(dir, "mesh.1")
	for ext, write := range map[string]func(io.Writer) error{
		".node": func(w io.Writer) error { return readfiles.WriteNode(w, tm.Points) },
		".ele":  func(w io.Writer) error { return readfiles.WriteEle(w, tm.Tets) },
		".vol":  func(w io.Writer) error { return readfiles.WriteVol(w, volumes) },
	} {
		if err = writeFile(base+ext, write); err != nil {
			return
		}
	}
	if err = tg.run(ctx, dir, switches, "mesh.1"); err != nil {
		return
	}
	return readTetMesh(filepath.Join(dir, "mesh.2"))
}

func (tg *TetGenMesher) run(ctx context.Context, dir, switches, input string) (err error) {
	path := tg.Path
	if path == "" {
		path = "tetgen"
	}
	var (
		cmd = exec.CommandContext(ctx, path, "-"+switches, input)
		out bytes.Buffer
	)
	cmd.Dir = dir
	cmd.Stdout, cmd.Stderr = &out, &out
	if err = cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s -%s %s: %v\n%s", ErrMesher, path, switches, input, err, tail(out.Bytes(), 2048))
	}
	return
}

// readTetMesh reads base.node, base.ele and, when present, base.face
func readTetMesh(base string) (tm *TetMesh, err error) {
	var (
		file  *os.File
		first int
	)
	tm = &TetMesh{}
	if file, err = os.Open(base + ".node"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMesher, err)
	}
	tm.Points, first, err = readfiles.ReadNode(file)
	file.Close()
	if err != nil {
		return nil, err
	}
	if file, err = os.Open(base + ".ele"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMesher, err)
	}
	tm.Tets, err = readfiles.ReadEle(file, first)
	file.Close()
	if err != nil {
		return nil, err
	}
	if file, err = os.Open(base + ".face"); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tm, nil
		}
		return nil, err
	}
	defer file.Close()
	if tm.Faces, tm.FaceMarkers, err = readfiles.ReadFace(file, first); err != nil {
		return nil, err
	}
	return
}

func writeFile(name string, write func(w io.Writer) error) (err error) {
	var file *os.File
	if file, err = os.Create(name); err != nil {
		return
	}
	if err = write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return file.Close()
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}
