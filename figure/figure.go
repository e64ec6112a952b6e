package figure

import (
	"errors"
	"fmt"
	"log"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/geometry3D"
	"github.com/notargets/meshbuilder/surface"
)

var ErrAlreadyTriangulated = errors.New("figure is already triangulated")

// Figure is one solid body or boundary of the domain. Triangulation happens in the
// local frame, Placement is applied only when the mesh is assembled.
type Figure struct {
	*surface.Store
	Facets    []*surface.Facet
	Contacts  [][2]int
	IsEmpty   bool
	Hole      r3.Vec
	Placement geometry3D.Placement
	Step      float64
	SizeField surface.SizeField
	Shape     ShapeDescriptor

	triangulated bool
}

// NewFigure builds the coarse geometry of sd with the given average step
func NewFigure(sd ShapeDescriptor, step float64, tri surface.Triangulator) (f *Figure, err error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: average step %g", ErrBadShape, step)
	}
	var sh *Shape
	if sh, err = sd.Shape(tri); err != nil {
		return
	}
	f = &Figure{
		Store:    surface.NewStore(sh.Points),
		Contacts: sh.Contacts,
		Hole:     sh.Hole,
		Step:     step,
		Shape:    sd,
	}
	for i, corners := range sh.Facets {
		for _, c := range corners {
			if c < 0 || c >= len(sh.Points) {
				return nil, fmt.Errorf("%w: facet %d references point %d of %d", ErrBadShape, i, c, len(sh.Points))
			}
		}
		f.Facets = append(f.Facets, surface.NewFacet(corners...))
	}
	for i, c := range sh.Contacts {
		if c[0] == c[1] || c[0] < 0 || c[1] < 0 || c[0] >= len(f.Facets) || c[1] >= len(f.Facets) {
			return nil, fmt.Errorf("%w: contact %d pairs facets %d and %d", ErrBadShape, i, c[0], c[1])
		}
	}
	return
}

// SetEdgesByFacets resolves the edge table from the corner cycles of every facet
func (f *Figure) SetEdgesByFacets() {
	for _, fc := range f.Facets {
		fc.AddEdgesByPoints(f.Store)
	}
}

// NonContactFacets lists, in order, the facets that belong to no contact pair
func (f *Figure) NonContactFacets() (facets []int) {
	inContact := lo.Flatten(lo.Map(f.Contacts, func(c [2]int, _ int) []int { return c[:] }))
	for i := range f.Facets {
		if !lo.Contains(inContact, i) {
			facets = append(facets, i)
		}
	}
	return
}

// MakeTriangulation triangulates every contact pair, source first and its twin by Take,
// then the remaining facets
func (f *Figure) MakeTriangulation(tri surface.Triangulator) (err error) {
	if f.triangulated {
		return ErrAlreadyTriangulated
	}
	f.SetEdgesByFacets()
	for i, c := range f.Contacts {
		log.Printf("Triangulating contact facet %d from %d", i+1, len(f.Contacts))
		if err = f.Facets[c[0]].Make(f.Store, f.Step, f.SizeField, tri); err != nil {
			return fmt.Errorf("failed to triangulate contact %d source facet %d: %w", i, c[0], err)
		}
		if err = f.Facets[c[1]].Take(f.Store, f.Facets[c[0]]); err != nil {
			return fmt.Errorf("failed to triangulate contact %d twin facet %d: %w", i, c[1], err)
		}
	}
	independent := f.NonContactFacets()
	log.Printf("Triangulating %d facets", len(independent))
	for _, i := range independent {
		if err = f.Facets[i].Make(f.Store, f.Step, f.SizeField, tri); err != nil {
			return fmt.Errorf("failed to triangulate facet %d: %w", i, err)
		}
	}
	f.triangulated = true
	return
}

func (f *Figure) Triangulated() bool { return f.triangulated }

// TransformedPoint returns point i placed in the global frame
func (f *Figure) TransformedPoint(i int) r3.Vec {
	return f.Placement.Transform(f.Point(i))
}

func (f *Figure) Transform(p r3.Vec) r3.Vec {
	return f.Placement.Transform(p)
}

// BoundaryCount is the number of trifacets on facets outside every contact pair
func (f *Figure) BoundaryCount() int {
	return trifacetCount(f, f.NonContactFacets()...)
}

// ContactCount is the number of matched triangle pairs over all contacts
func (f *Figure) ContactCount() (n int) {
	for _, c := range f.Contacts {
		n += len(f.Facets[c[1]].Tris)
	}
	return
}

// FaceTypes buckets the boundary and contact faces of the figure. The buckets of the
// shape are completed by a trailing bucket holding whatever they leave out.
func (f *Figure) FaceTypes() (boundaryCounts, contactCounts []int, err error) {
	boundaryCounts, contactCounts = f.Shape.FaceTypes(f)
	if boundaryCounts, err = complete(boundaryCounts, f.BoundaryCount()); err != nil {
		return nil, nil, fmt.Errorf("boundary face types of %s: %w", f.Shape.Kind(), err)
	}
	if contactCounts, err = complete(contactCounts, f.ContactCount()); err != nil {
		return nil, nil, fmt.Errorf("contact face types of %s: %w", f.Shape.Kind(), err)
	}
	return
}

func complete(counts []int, total int) ([]int, error) {
	sum := lo.Sum(counts)
	switch {
	case sum > total:
		return nil, fmt.Errorf("%w: buckets hold %d faces of %d", ErrBadShape, sum, total)
	case sum < total:
		counts = append(counts, total-sum)
	}
	return counts, nil
}

// FromParameters builds every figure listed in the profile, placed but not triangulated
func FromParameters(p *InputParameters.Profile, mp *InputParameters.MeshParameters, tri surface.Triangulator) (figures []*Figure, err error) {
	for _, fe := range mp.Figures {
		var (
			sd ShapeDescriptor
			f  *Figure
		)
		if sd, err = New(fe.Type, p, fe.Index); err != nil {
			return nil, err
		}
		if f, err = NewFigure(sd, mp.AverageStep, tri); err != nil {
			return nil, fmt.Errorf("failed to build figure %d: %w", fe.Index, err)
		}
		f.IsEmpty = fe.IsEmpty
		f.Placement = geometry3D.Placement{Position: fe.Position, Angles: fe.Angles}
		log.Printf("Figure %d: %s, %d points, %d facets, %d contacts", fe.Index, sd.Kind(),
			f.NumPoints(), len(f.Facets), len(f.Contacts))
		figures = append(figures, f)
	}
	return
}
