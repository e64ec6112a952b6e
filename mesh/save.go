package mesh

import (
	"io"
	"log"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/geometry3D"
	"github.com/notargets/meshbuilder/readfiles"
	"github.com/notargets/meshbuilder/surface"
)

// Save writes the input complex as in.node and in.poly next to prefix, then the
// tetrahedral mesh as prefix.node, prefix.ele and prefix.face. Without faces from the
// mesher the complex facets are written, they survive tetrahedralization unsplit.
func (m *Mesh) Save(prefix string) (err error) {
	if !m.assembled {
		return ErrNotAssembled
	}
	if m.Out == nil {
		return ErrNotBuilt
	}
	var (
		plc    = m.PLC()
		in     = filepath.Join(filepath.Dir(prefix), "in")
		faces  = m.Out.Faces
		marker = m.Out.FaceMarkers
	)
	if len(faces) == 0 {
		faces, marker = make([][3]int, len(plc.Facets)), plc.Markers
		for i, f := range plc.Facets {
			faces[i] = f
		}
	}
	polyFacets := make([][3]int, len(plc.Facets))
	for i, f := range plc.Facets {
		polyFacets[i] = f
	}
	log.Printf("Saving mesh %s", prefix)
	files := []struct {
		name  string
		write func(w io.Writer) error
	}{
		{in + ".node", func(w io.Writer) error { return readfiles.WriteNode(w, plc.Points) }},
		{in + ".poly", func(w io.Writer) error {
			return readfiles.WritePoly(w, plc.Points, polyFacets, plc.Markers, plc.Holes)
		}},
		{prefix + ".node", func(w io.Writer) error { return readfiles.WriteNode(w, m.Out.Points) }},
		{prefix + ".ele", func(w io.Writer) error { return readfiles.WriteEle(w, m.Out.Tets) }},
		{prefix + ".face", func(w io.Writer) error { return readfiles.WriteFace(w, faces, marker) }},
	}
	for _, f := range files {
		if err = writeFile(f.name, f.write); err != nil {
			return
		}
	}
	return
}

// RadialSizeField scales the step by factor within radius of center, returning to the
// plain step linearly between radius and twice radius
func RadialSizeField(center r3.Vec, radius, factor float64) surface.SizeField {
	return func(p r3.Vec) float64 {
		d := r3.Norm(r3.Sub(p, center))
		switch {
		case d <= radius:
			return factor
		case d >= 2*radius:
			return 1
		}
		t := (d - radius) / radius
		return factor + t*(1-factor)
	}
}

// TotalVolume sums the element volumes of tm
func TotalVolume(tm *TetMesh) (v float64) {
	for _, t := range tm.Tets {
		v += geometry3D.TetVolume(tm.Points[t[0]], tm.Points[t[1]], tm.Points[t[2]], tm.Points[t[3]])
	}
	return
}
