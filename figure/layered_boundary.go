package figure

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/geometry2D"
	"github.com/notargets/meshbuilder/readfiles"
	"github.com/notargets/meshbuilder/surface"
)

var ErrNoTriangulator = errors.New("no planar triangulator")

// LayeredBoundary is a prism over a planar outline between Z0 and Z1, cut by layer
// surfaces sampled from files. Each layer is a contact, its two sides pulled apart
// along z by ContactShift.
type LayeredBoundary struct {
	Z0, Z1             float64
	NumberOfLayers     int
	DiscretizationStep float64
	LayerPath          string // "<index>" is replaced by the 1 based layer number
	XYBoundaryPath     string
	ContactShift       float64
	Eps                float64

	nboundary, ntri int // Outline point and triangle counts, known after Shape
}

func newLayeredBoundary(p *InputParameters.Profile, section string) (ShapeDescriptor, error) {
	lb := &LayeredBoundary{
		NumberOfLayers:     InputParameters.Request(p, section, "number_of_layers", -1),
		DiscretizationStep: InputParameters.Request(p, section, "discretization_step", -1.),
		LayerPath:          InputParameters.Request(p, section, "layer_path", ""),
		XYBoundaryPath:     InputParameters.Request(p, section, "xy_boundary_path", ""),
		ContactShift:       InputParameters.Request(p, section, "contact_shift", 1e-3),
		Eps:                1e-3,
	}
	z := InputParameters.Request(p, section, "z", []float64(nil))
	if len(z) != 2 || z[1] <= z[0] {
		return nil, fmt.Errorf("%w: %s.z must be an increasing pair, have %v", ErrBadShape, section, z)
	}
	lb.Z0, lb.Z1 = z[0], z[1]
	switch {
	case lb.NumberOfLayers < 0:
		return nil, fmt.Errorf("%w: %s.number_of_layers = %d", ErrBadShape, section, lb.NumberOfLayers)
	case lb.DiscretizationStep <= 0:
		return nil, fmt.Errorf("%w: %s.discretization_step = %g", ErrBadShape, section, lb.DiscretizationStep)
	case lb.XYBoundaryPath == "":
		return nil, fmt.Errorf("%w: %s.xy_boundary_path is empty", ErrBadShape, section)
	case lb.NumberOfLayers > 0 && !strings.Contains(lb.LayerPath, "<index>"):
		return nil, fmt.Errorf("%w: %s.layer_path %q has no <index>", ErrBadShape, section, lb.LayerPath)
	}
	return lb, nil
}

func (lb *LayeredBoundary) Kind() string { return "Layered_boundary" }

// outline subdivides the closed xy boundary so that no piece is longer than the
// discretization step
func (lb *LayeredBoundary) outline() (X, Y []float64, err error) {
	ring, err := readfiles.ReadXYBoundary(lb.XYBoundaryPath)
	if err != nil {
		return
	}
	for k := range ring {
		var (
			a, b = ring[k], ring[(k+1)%len(ring)]
			dx   = b[0] - a[0]
			dy   = b[1] - a[1]
			n    = int(math.Ceil(math.Hypot(dx, dy) / lb.DiscretizationStep))
		)
		X, Y = append(X, a[0]), append(Y, a[1])
		for i := 1; i < n; i++ {
			t := float64(i) / float64(n)
			X, Y = append(X, a[0]+t*dx), append(Y, a[1]+t*dy)
		}
	}
	return
}

func (lb *LayeredBoundary) Shape(tri surface.Triangulator) (sh *Shape, err error) {
	if tri == nil {
		return nil, ErrNoTriangulator
	}
	var (
		in  = &geometry2D.PSLG{}
		out *geometry2D.Triangulation
	)
	if in.X, in.Y, err = lb.outline(); err != nil {
		return
	}
	nb := len(in.X)
	for i := 0; i < nb; i++ {
		in.Segments = append(in.Segments, [2]int{i, (i + 1) % nb})
	}
	sw := fmt.Sprintf("pzqYQa%g", lb.DiscretizationStep*lb.DiscretizationStep/2)
	if out, err = tri.Triangulate(in, sw); err != nil {
		return nil, fmt.Errorf("failed to triangulate the xy boundary: %w", err)
	}
	if out.InputCount != nb || len(out.Triangles) == 0 {
		return nil, fmt.Errorf("%w: xy boundary triangulation kept %d of %d points, %d triangles",
			ErrBadShape, out.InputCount, nb, len(out.Triangles))
	}
	var (
		L  = lb.NumberOfLayers
		N  = len(out.X)
		T  = len(out.Triangles)
		cs = lb.ContactShift
	)
	lb.nboundary, lb.ntri = nb, T
	sh = &Shape{}
	log.Printf("Setting layers data points")
	for i := 0; i < N; i++ {
		sh.Points = append(sh.Points, r3.Vec{X: out.X[i], Y: out.Y[i], Z: lb.Z0})
	}
	for l := 0; l < L; l++ {
		var samples []r3.Vec
		path := strings.Replace(lb.LayerPath, "<index>", strconv.Itoa(l+1), 1)
		if samples, err = readfiles.ReadXYZ(path); err != nil {
			return nil, fmt.Errorf("failed to read layer %d: %w", l+1, err)
		}
		var z []float64
		if z, err = lb.layerHeights(samples, out.X, out.Y); err != nil {
			return nil, fmt.Errorf("layer %d: %w", l+1, err)
		}
		for i := 0; i < N; i++ {
			sh.Points = append(sh.Points, r3.Vec{X: out.X[i], Y: out.Y[i], Z: z[i] + float64(l)*cs})
		}
		for i := 0; i < N; i++ {
			sh.Points = append(sh.Points, r3.Add(sh.Points[len(sh.Points)-N], r3.Vec{Z: cs}))
		}
		log.Printf("Layer %d points have been set", l+1)
	}
	for i := 0; i < N; i++ {
		sh.Points = append(sh.Points, r3.Vec{X: out.X[i], Y: out.Y[i], Z: lb.Z1 + float64(L)*cs})
	}
	log.Printf("Setting layers data facets")
	for block := 0; block < 2*L+2; block++ {
		for _, t := range out.Triangles {
			sh.Facets = append(sh.Facets, []int{block*N + t[0], block*N + t[1], block*N + t[2]})
		}
	}
	for l := 0; l < L; l++ {
		for j := 0; j < T; j++ {
			sh.Contacts = append(sh.Contacts, [2]int{T*(2*l+1) + j, T*(2*l+2) + j})
		}
	}
	// Side walls of each layer, from block 2l up to block 2l+1 along the outline
	for l := 0; l <= L; l++ {
		lo, hi := 2*l*N, (2*l+1)*N
		for i := 0; i < nb; i++ {
			k := (i + 1) % nb
			sh.Facets = append(sh.Facets, []int{lo + i, lo + k, hi + k, hi + i})
		}
	}
	return
}

// layerHeights interpolates the layer samples at every (X, Y) from the three nearest
// samples. A degenerate triple falls back to the height of the nearest sample.
func (lb *LayeredBoundary) layerHeights(samples []r3.Vec, X, Y []float64) (z []float64, err error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: layer has no samples", ErrBadShape)
	}
	tree := kdtree.New(layerSamples(toSamples(samples)), false)
	z = make([]float64, len(X))
	for i := range X {
		var (
			r    = layerSample{X: X[i], Y: Y[i]}
			keep = kdtree.NewNKeeper(3)
			near []layerSample
		)
		tree.NearestSet(keep, r)
		for _, cd := range keep.Heap {
			if cd.Comparable != nil {
				near = append(near, cd.Comparable.(layerSample))
			}
		}
		sort.Slice(near, func(a, b int) bool { return near[a].Distance(r) < near[b].Distance(r) })
		z[i] = interpolate(r, near, lb.Eps)
	}
	return
}

// interpolate expects near sorted by distance to r
func interpolate(r layerSample, near []layerSample, eps float64) float64 {
	nearest := near[0]
	if len(near) < 3 {
		return nearest.Z
	}
	var (
		ra, rb, rc = near[0], near[1], near[2]
		cross      = func(a, b, p layerSample) float64 { return (a.X-b.X)*(p.Y-b.Y) - (a.Y-b.Y)*(p.X-b.X) }
		sa         = cross(rc, rb, r)
		sb         = cross(ra, rc, r)
		sc         = cross(rb, ra, r)
		s          = sa + sb + sc
	)
	if math.Abs(s) < eps {
		return nearest.Z
	}
	return (sa*ra.Z + sb*rb.Z + sc*rc.Z) / s
}

// FaceTypes buckets the contacts one per layer and the boundary as the bottom, the top
// and the side walls
func (lb *LayeredBoundary) FaceTypes(f *Figure) (boundaryCounts, contactCounts []int) {
	var (
		L, T = lb.NumberOfLayers, lb.ntri
		span = func(from, n int) (facets []int) {
			for j := 0; j < n; j++ {
				facets = append(facets, from+j)
			}
			return
		}
	)
	for l := 0; l < L; l++ {
		contactCounts = append(contactCounts, trifacetCount(f, span(T*(2*l+1), T)...))
	}
	boundaryCounts = []int{
		trifacetCount(f, span(0, T)...),
		trifacetCount(f, span(T*(2*L+1), T)...),
		trifacetCount(f, span(T*(2*L+2), lb.nboundary*(L+1))...),
	}
	return
}

// layerSample is a layer height sample, compared on x and y only
type layerSample r3.Vec

func (s layerSample) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(layerSample)
	if d == 0 {
		return s.X - q.X
	}
	return s.Y - q.Y
}

func (s layerSample) Dims() int { return 2 }

func (s layerSample) Distance(c kdtree.Comparable) float64 {
	q := c.(layerSample)
	dx, dy := s.X-q.X, s.Y-q.Y
	return dx*dx + dy*dy
}

func toSamples(points []r3.Vec) (s []layerSample) {
	s = make([]layerSample, len(points))
	for i, p := range points {
		s[i] = layerSample(p)
	}
	return
}

type layerSamples []layerSample

func (p layerSamples) Index(i int) kdtree.Comparable { return p[i] }
func (p layerSamples) Len() int                      { return len(p) }
func (p layerSamples) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p layerSamples) Pivot(d kdtree.Dim) int {
	plane := samplePlane{samples: p, dim: d}
	return kdtree.Partition(plane, kdtree.MedianOfMedians(plane))
}

type samplePlane struct {
	samples layerSamples
	dim     kdtree.Dim
}

func (p samplePlane) Len() int { return len(p.samples) }
func (p samplePlane) Less(i, j int) bool {
	return p.samples[i].Compare(p.samples[j], p.dim) < 0
}
func (p samplePlane) Swap(i, j int) { p.samples[i], p.samples[j] = p.samples[j], p.samples[i] }
func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	return samplePlane{samples: p.samples[start:end], dim: p.dim}
}
