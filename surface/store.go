package surface

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/geometry2D"
)

// Trifacet is one output triangle as three point indices
type Trifacet [3]int

// SizeField returns the local target length scale, relative to the average step, at p.
// A nil SizeField means uniform spacing.
type SizeField func(p r3.Vec) float64

// Triangulator is the planar constrained triangulation engine used by Facet.Make
type Triangulator interface {
	Triangulate(in *geometry2D.PSLG, switches string) (*geometry2D.Triangulation, error)
}

// Store is the arena shared by the edges and facets of one figure.
// Points and trifacets are append only, so indices handed out stay valid.
type Store struct {
	points    []r3.Vec
	Edges     []*Edge
	Trifacets []Trifacet
}

func NewStore(points []r3.Vec) (st *Store) {
	st = &Store{
		points: make([]r3.Vec, len(points)),
	}
	copy(st.points, points)
	return
}

// AddPoint appends p and returns its index
func (st *Store) AddPoint(p r3.Vec) int {
	st.points = append(st.points, p)
	return len(st.points) - 1
}

func (st *Store) Point(i int) r3.Vec { return st.points[i] }

func (st *Store) NumPoints() int { return len(st.points) }

// Points returns the point table, callers must not modify it
func (st *Store) Points() []r3.Vec { return st.points }

// FindEdge returns the index of the edge joining a and b in either direction, or -1
func (st *Store) FindEdge(a, b int) int {
	for i, e := range st.Edges {
		if e.SameEnds(a, b) {
			return i
		}
	}
	return -1
}

// EdgeIndex returns the edge joining a and b, appending a new one when there is none
func (st *Store) EdgeIndex(a, b int) int {
	if i := st.FindEdge(a, b); i >= 0 {
		return i
	}
	st.Edges = append(st.Edges, NewEdge(a, b))
	return len(st.Edges) - 1
}

// AddTrifacet appends t and returns its index
func (st *Store) AddTrifacet(t Trifacet) int {
	st.Trifacets = append(st.Trifacets, t)
	return len(st.Trifacets) - 1
}
