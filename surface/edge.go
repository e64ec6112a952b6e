package surface

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Edge is a coarse segment between two corner points. Points holds the chain
// [Start, interior..., Finish] once the edge has been subdivided.
type Edge struct {
	Start, Finish int
	Points        []int
}

func NewEdge(start, finish int) *Edge {
	return &Edge{Start: start, Finish: finish}
}

// SameEnds reports whether the edge joins a and b, ignoring direction
func (e *Edge) SameEnds(a, b int) bool {
	return (e.Start == a && e.Finish == b) || (e.Start == b && e.Finish == a)
}

func (e *Edge) Triangulated() bool { return len(e.Points) != 0 }

// Chain returns the point chain walked from corner `from`, which must be one of the ends
func (e *Edge) Chain(from int) (chain []int) {
	if from == e.Start {
		return e.Points
	}
	chain = make([]int, len(e.Points))
	for i, p := range e.Points {
		chain[len(chain)-1-i] = p
	}
	return
}

// Triangulate subdivides the edge with the average step, or with sf*step when sf is set.
// An edge that already has its chain is left untouched.
func (e *Edge) Triangulate(st *Store, step float64, sf SizeField) (err error) {
	if e.Triangulated() {
		return
	}
	if step <= 0 {
		return fmt.Errorf("invalid step %g for edge %d-%d", step, e.Start, e.Finish)
	}
	var (
		s, f   = st.Point(e.Start), st.Point(e.Finish)
		length = r3.Norm(r3.Sub(f, s))
		chain  = []int{e.Start}
	)
	if sf == nil {
		n := int(math.Ceil(length / step))
		if n > 0 {
			dif := r3.Scale(1/float64(n), r3.Sub(f, s))
			for i := 1; i < n; i++ {
				chain = append(chain, st.AddPoint(r3.Add(s, r3.Scale(float64(i), dif))))
			}
		}
	} else if length > 0 {
		dir := r3.Unit(r3.Sub(f, s))
		p := s
		for {
			h := sf(p) * step
			if h <= 0 || math.IsNaN(h) {
				return fmt.Errorf("size field is %g at %v", h/step, p)
			}
			if r3.Norm(r3.Sub(f, p)) <= 2*h {
				break
			}
			p = r3.Add(p, r3.Scale(h, dir))
			chain = append(chain, st.AddPoint(p))
		}
	}
	e.Points = append(chain, e.Finish)
	return
}
