package figure

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/surface"
)

var (
	ErrUnknownKind = errors.New("unknown figure type")
	ErrBadShape    = errors.New("invalid figure definition")
)

// Shape is the coarse description of a figure in its local frame: corner points,
// facet corner cycles and the contact pairs of facets
type Shape struct {
	Points   []r3.Vec
	Facets   [][]int
	Contacts [][2]int
	Hole     r3.Vec
}

// ShapeDescriptor is implemented once per figure kind
type ShapeDescriptor interface {
	Kind() string
	// Shape builds the coarse geometry. Kinds that need a planar triangulation of
	// their input data use tri.
	Shape(tri surface.Triangulator) (*Shape, error)
	// FaceTypes returns the leading typed buckets of the figure's boundary and contact
	// faces, in the order the mesh lists them. Uncovered faces form a trailing bucket.
	FaceTypes(f *Figure) (boundaryCounts, contactCounts []int)
}

// Constructor reads the parameters of a figure kind from section of the profile
type Constructor func(p *InputParameters.Profile, section string) (ShapeDescriptor, error)

var registry = map[string]Constructor{
	"Cube":             newCube,
	"Fracture":         newFracture,
	"Cross_fracture":   newCrossFracture,
	"FCA":              newFCA,
	"Rect_boundary":    newRectBoundary,
	"Layered_boundary": newLayeredBoundary,
	"Ply_model":        newPlyModel,
}

// Register adds or replaces the constructor of a figure kind
func Register(kind string, c Constructor) {
	registry[kind] = c
}

func Kinds() (kinds []string) {
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return
}

// New builds the descriptor of figure index (1 based) of the given kind. Parameters come
// from the [<kind><index>] section when the profile has one, otherwise from [<kind>].
func New(kind string, p *InputParameters.Profile, index int) (sd ShapeDescriptor, err error) {
	c, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	section := kind + strconv.Itoa(index)
	if !p.HasSection(section) {
		section = kind
	}
	if sd, err = c(p, section); err != nil {
		return nil, fmt.Errorf("failed to read %s figure %d: %w", kind, index, err)
	}
	return
}

func positive(section string, values map[string]float64) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if values[k] <= 0 {
			return fmt.Errorf("%w: %s.%s = %g", ErrBadShape, section, k, values[k])
		}
	}
	return nil
}

// flag reads a boolean switch, treating a missing or malformed entry as false
func flag(p *InputParameters.Profile, section, key string) bool {
	v, err := InputParameters.Demand[bool](p, section, key)
	if err != nil {
		log.Printf("%v, assuming false", err)
		return false
	}
	return v
}

// trifacetCount sums the trifacets of facets
func trifacetCount(f *Figure, facets ...int) (n int) {
	for _, i := range facets {
		n += len(f.Facets[i].Tris)
	}
	return
}
