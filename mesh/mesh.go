package mesh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/figure"
	"github.com/notargets/meshbuilder/geometry3D"
	"github.com/notargets/meshbuilder/surface"
	"github.com/notargets/meshbuilder/utils"
)

// Facet markers of the piecewise linear complex
const (
	BoundaryMarker = 0
	ContactMarker  = 2
)

var (
	ErrNoFigures       = errors.New("mesh has no figures")
	ErrNotTriangulated = errors.New("figure is not triangulated")
	ErrNotAssembled    = errors.New("mesh is not assembled")
	ErrNotBuilt        = errors.New("mesh is not tetrahedralized")
	ErrEmptyMesh       = errors.New("tetrahedralization produced no elements")
)

// BoundaryFace is a triangle of the domain boundary in global point numbering
type BoundaryFace [3]int

// ContactFace pairs a source triangle with its twin, node j of one matches node j of the other
type ContactFace [2]BoundaryFace

// Mesh assembles triangulated figures into one piecewise linear complex and holds
// the tetrahedral mesh built from it
type Mesh struct {
	Figures     []*figure.Figure
	Quality     float64
	AverageStep float64
	// SizeField scales the average step in the refine pass, nil skips the pass
	SizeField surface.SizeField

	Points        []r3.Vec
	Boundaries    []BoundaryFace
	Contacts      []ContactFace
	Holes         []r3.Vec
	BoundaryTypes []int // Consecutive runs of Boundaries, one count per face type
	ContactTypes  []int

	Out *TetMesh

	offsets   []int
	assembled bool
}

func NewMesh(figures []*figure.Figure, mp *InputParameters.MeshParameters) (m *Mesh, err error) {
	if len(figures) == 0 {
		return nil, ErrNoFigures
	}
	switch {
	case mp.AverageStep <= 0:
		return nil, fmt.Errorf("%w: Mesh.average_step = %g", InputParameters.ErrInvalidParameter, mp.AverageStep)
	case mp.Quality < 0:
		return nil, fmt.Errorf("%w: Mesh.quality = %g", InputParameters.ErrInvalidParameter, mp.Quality)
	}
	m = &Mesh{
		Figures:     figures,
		Quality:     mp.Quality,
		AverageStep: mp.AverageStep,
	}
	return
}

// Init sizes the complex from the figure totals. Every figure must be triangulated.
func (m *Mesh) Init() (err error) {
	var np, nt, nh int
	m.offsets = make([]int, len(m.Figures))
	for i, f := range m.Figures {
		if !f.Triangulated() {
			return fmt.Errorf("%w: figure %d", ErrNotTriangulated, i+1)
		}
		m.offsets[i] = np
		np += f.NumPoints()
		nt += len(f.Trifacets)
		if f.IsEmpty {
			nh++
		}
	}
	m.Points = make([]r3.Vec, 0, np)
	m.Boundaries = make([]BoundaryFace, 0, nt)
	m.Contacts = nil
	m.Holes = make([]r3.Vec, 0, nh)
	m.BoundaryTypes, m.ContactTypes = nil, nil
	m.assembled = false
	log.Printf("Mesh totals: %d points, %d trifacets, %d holes", np, nt, nh)
	return
}

// SetPoints places the points of every figure in the global frame
func (m *Mesh) SetPoints() {
	for _, f := range m.Figures {
		for i := 0; i < f.NumPoints(); i++ {
			m.Points = append(m.Points, f.TransformedPoint(i))
		}
	}
}

// CreateFacets collects the boundary triangles and the contact pairs of every figure,
// shifted by the figure's point offset, together with their face type buckets
func (m *Mesh) CreateFacets() (err error) {
	for i, f := range m.Figures {
		var (
			offset = m.offsets[i]
			face   = func(ti int) (b BoundaryFace) {
				for k, p := range f.Trifacets[ti] {
					b[k] = p + offset
				}
				return
			}
			bt, ct []int
		)
		for _, fi := range f.NonContactFacets() {
			for _, ti := range f.Facets[fi].Tris {
				m.Boundaries = append(m.Boundaries, face(ti))
			}
		}
		for _, c := range f.Contacts {
			twin := f.Facets[c[1]]
			for k, ti := range twin.Tris {
				m.Contacts = append(m.Contacts, ContactFace{face(twin.TwinOf[k]), face(ti)})
			}
		}
		if bt, ct, err = f.FaceTypes(); err != nil {
			return fmt.Errorf("figure %d: %w", i+1, err)
		}
		m.BoundaryTypes = append(m.BoundaryTypes, bt...)
		m.ContactTypes = append(m.ContactTypes, ct...)
	}
	return
}

// SetHoles adds the placed hole seed of every empty figure
func (m *Mesh) SetHoles() {
	for _, f := range m.Figures {
		if f.IsEmpty {
			m.Holes = append(m.Holes, f.Transform(f.Hole))
		}
	}
}

// Assemble runs Init, SetPoints, CreateFacets and SetHoles
func (m *Mesh) Assemble() (err error) {
	if err = m.Init(); err != nil {
		return
	}
	m.SetPoints()
	if err = m.CreateFacets(); err != nil {
		return
	}
	m.SetHoles()
	m.assembled = true
	return
}

// PLC lays the complex out for the volume mesher: boundaries first with marker 0,
// then source and twin of every contact as consecutive facets with marker 2
func (m *Mesh) PLC() *PLC {
	plc := &PLC{
		Points: m.Points,
		Holes:  m.Holes,
	}
	for _, b := range m.Boundaries {
		plc.Facets = append(plc.Facets, b)
		plc.Markers = append(plc.Markers, BoundaryMarker)
	}
	for _, c := range m.Contacts {
		plc.Facets = append(plc.Facets, c[0], c[1])
		plc.Markers = append(plc.Markers, ContactMarker, ContactMarker)
	}
	return plc
}

// Switches returns the switches of the first tetrahedralization and of the refine pass
func (m *Mesh) Switches() (first, refine string) {
	vol := strconv.FormatFloat(m.AverageStep*m.AverageStep*m.AverageStep/6, 'f', 6, 64)
	if m.Quality == 0 {
		return "pa" + vol + "Y", "raa" + vol + "Y"
	}
	q := strconv.FormatFloat(m.Quality, 'g', 6, 64)
	return "pq" + q + "a" + vol + "Y", "rq" + q + "aa" + vol + "Y"
}

// VolumeConstraints bounds every tetrahedron of tm by (step·f(centroid))³/6
func (m *Mesh) VolumeConstraints(tm *TetMesh) (volumes []float64) {
	volumes = make([]float64, len(tm.Tets))
	for i, t := range tm.Tets {
		c := geometry3D.Centroid(tm.Points[t[0]], tm.Points[t[1]], tm.Points[t[2]], tm.Points[t[3]])
		s := m.AverageStep * m.SizeField(c)
		volumes[i] = s * s * s / 6
	}
	return
}

// Build assembles the complex when needed and tetrahedralizes it. With a SizeField
// the first mesh is refined once more under per element volume bounds.
func (m *Mesh) Build(ctx context.Context, vm VolumeMesher) (err error) {
	if !m.assembled {
		if err = m.Assemble(); err != nil {
			return
		}
	}
	var (
		plc           = m.PLC()
		first, refine = m.Switches()
		tm            *TetMesh
	)
	log.Printf("Tetrahedralizing: %d points, %d facets, %d holes", len(plc.Points), len(plc.Facets), len(plc.Holes))
	if m.SizeField == nil {
		log.Printf("Tetgen parameters = %s", first)
		if tm, err = vm.Tetrahedralize(ctx, plc, first); err != nil {
			return fmt.Errorf("failed to tetrahedralize: %w", err)
		}
	} else {
		log.Printf("First tetgen parameters = %s", first)
		var mid *TetMesh
		if mid, err = vm.Tetrahedralize(ctx, plc, first); err != nil {
			return fmt.Errorf("failed to tetrahedralize: %w", err)
		}
		if len(mid.Tets) == 0 {
			return ErrEmptyMesh
		}
		log.Printf("Second tetgen parameters = %s", refine)
		if tm, err = vm.Refine(ctx, mid, m.VolumeConstraints(mid), refine); err != nil {
			return fmt.Errorf("failed to refine: %w", err)
		}
	}
	if len(tm.Tets) == 0 {
		return ErrEmptyMesh
	}
	if len(tm.Points) < len(plc.Points) {
		return fmt.Errorf("%w: %d of %d input points kept", ErrEmptyMesh, len(tm.Points), len(plc.Points))
	}
	if utils.IsNan(tm.Points) {
		return fmt.Errorf("%w: NaN coordinate in output", ErrMesher)
	}
	m.Out = tm
	log.Printf("Tetrahedral mesh: %d points, %d elements", len(tm.Points), len(tm.Tets))
	return
}
