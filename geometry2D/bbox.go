package geometry2D

type BoundingBox struct {
	XMin [2]float64
	XMax [2]float64
}

func NewBoundingBox(Geometry []Point) (Box *BoundingBox) {
	if len(Geometry) == 0 {
		return &BoundingBox{}
	}
	Box = new(BoundingBox)
	Box.XMin, Box.XMax = Geometry[0].X, Geometry[0].X
	for _, point := range Geometry {
		for i := 0; i < 2; i++ {
			if point.X[i] < Box.XMin[i] {
				Box.XMin[i] = point.X[i]
			}
			if point.X[i] > Box.XMax[i] {
				Box.XMax[i] = point.X[i]
			}
		}
	}
	return Box
}

func (bb *BoundingBox) Centroid() (centroid Point) {
	return Point{X: [2]float64{
		0.5 * (bb.XMax[0] + bb.XMin[0]),
		0.5 * (bb.XMax[1] + bb.XMin[1]),
	}}
}

// Area of the box, used to scale tolerances
func (bb *BoundingBox) Area() float64 {
	return (bb.XMax[0] - bb.XMin[0]) * (bb.XMax[1] - bb.XMin[1])
}

func (bb *BoundingBox) PointInside(point Point) (within bool) {
	for ii := 0; ii < 2; ii++ {
		if point.X[ii] > bb.XMax[ii] || point.X[ii] < bb.XMin[ii] {
			return false
		}
	}
	return true
}
