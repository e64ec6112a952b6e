package figure

import (
	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cube is an axis aligned cube of edge Size centered on the origin
type Cube struct {
	Size float64
}

func newCube(p *InputParameters.Profile, section string) (ShapeDescriptor, error) {
	c := &Cube{Size: InputParameters.Request(p, section, "size", -1.)}
	if err := positive(section, map[string]float64{"size": c.Size}); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cube) Kind() string { return "Cube" }

func (c *Cube) Shape(surface.Triangulator) (*Shape, error) {
	h := c.Size / 2
	return &Shape{
		Points: []r3.Vec{
			{X: -h, Y: -h, Z: -h},
			{X: -h, Y: -h, Z: +h},
			{X: -h, Y: +h, Z: -h},
			{X: +h, Y: -h, Z: -h},
			{X: -h, Y: +h, Z: +h},
			{X: +h, Y: -h, Z: +h},
			{X: +h, Y: +h, Z: -h},
			{X: +h, Y: +h, Z: +h},
		},
		Facets: [][]int{
			{1, 5, 7, 4},
			{0, 3, 6, 2},
			{0, 1, 5, 3},
			{0, 2, 4, 1},
			{7, 5, 3, 6},
			{6, 7, 4, 2},
		},
	}, nil
}

// FaceTypes puts the whole skin in one boundary bucket
func (c *Cube) FaceTypes(f *Figure) (boundaryCounts, contactCounts []int) {
	return []int{f.BoundaryCount()}, nil
}
