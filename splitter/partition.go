package splitter

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshbuilder/geometry3D"
)

// SegmentRegions cuts the cells into nx·ny·nz boxes by the quantiles of their
// centroid coordinates along each axis. A cell goes to region sx + nx·sy + nx·ny·sz.
func SegmentRegions(points []r3.Vec, cells [][4]int, nx, ny, nz int) (regions []int, err error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("%w: %d x %d x %d segments", ErrBadMesh, nx, ny, nz)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: no cells", ErrBadMesh)
	}
	centroids := make([]r3.Vec, len(cells))
	for c, cell := range cells {
		for _, n := range cell {
			if n < 0 || n >= len(points) {
				return nil, fmt.Errorf("%w: cell %d has node %d of %d", ErrBadMesh, c, n, len(points))
			}
		}
		centroids[c] = geometry3D.Centroid(points[cell[0]], points[cell[1]], points[cell[2]], points[cell[3]])
	}
	regions = make([]int, len(cells))
	axes := []struct {
		segments, stride int
		coord            func(v r3.Vec) float64
	}{
		{nx, 1, func(v r3.Vec) float64 { return v.X }},
		{ny, nx, func(v r3.Vec) float64 { return v.Y }},
		{nz, nx * ny, func(v r3.Vec) float64 { return v.Z }},
	}
	var (
		n      = len(cells)
		values = make([]float64, n)
		order  = make([]int, n)
	)
	for _, ax := range axes {
		for c, p := range centroids {
			values[c] = ax.coord(p)
		}
		floats.Argsort(values, order)
		// values is sorted now, order maps back to cells
		cur := 0
		for i := 0; i < n; i++ {
			for cur+1 < ax.segments && values[(cur+1)*n/ax.segments] < values[i] {
				cur++
			}
			regions[order[i]] += cur * ax.stride
		}
	}
	return
}
