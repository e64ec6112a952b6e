package geometry3D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tolerance is the Euclidean distance under which two points are the same
const Tolerance = 1e-10

var (
	UnitX = r3.Vec{X: 1}
	UnitY = r3.Vec{Y: 1}
	UnitZ = r3.Vec{Z: 1}
)

// Equal reports whether a and b are closer than Tolerance
func Equal(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < Tolerance
}

// Normal returns the unit normal of the plane through p0, p1, p2 oriented as (p0-p1)x(p0-p2)
func Normal(p0, p1, p2 r3.Vec) (n r3.Vec, err error) {
	n = r3.Cross(r3.Sub(p0, p1), r3.Sub(p0, p2))
	if r3.Norm(n) < Tolerance {
		err = fmt.Errorf("collinear points %v, %v, %v have no normal", p0, p1, p2)
		return
	}
	n = r3.Unit(n)
	return
}

// Frame is an orthonormal planar frame: a unit normal and an in-plane basis vector.
// The second in-plane direction is Basis x Normal.
type Frame struct {
	Normal, Basis r3.Vec
	Origin        r3.Vec // Any point of the plane
}

// NewFrame builds the frame of the plane through p0, p1, p2 with Basis along p1-p0
func NewFrame(p0, p1, p2 r3.Vec) (f Frame, err error) {
	if f.Normal, err = Normal(p0, p1, p2); err != nil {
		return
	}
	f.Basis = r3.Unit(r3.Sub(p1, p0))
	f.Origin = p0
	return
}

// inPlane removes the normal component of p
func (f Frame) inPlane(p r3.Vec) r3.Vec {
	return r3.Sub(p, r3.Scale(r3.Dot(f.Normal, p), f.Normal))
}

// ProjX is the first planar coordinate of p
func (f Frame) ProjX(p r3.Vec) float64 {
	return r3.Dot(f.inPlane(p), f.Basis)
}

// ProjY is the second planar coordinate of p
func (f Frame) ProjY(p r3.Vec) float64 {
	return r3.Dot(r3.Cross(f.inPlane(p), f.Basis), f.Normal)
}

// Lift maps planar coordinates (u, v) back onto the plane of the frame
func (f Frame) Lift(u, v float64) r3.Vec {
	var (
		offset = r3.Scale(r3.Dot(f.Normal, f.Origin), f.Normal)
		yAxis  = r3.Cross(f.Basis, f.Normal)
	)
	return r3.Add(offset, r3.Add(r3.Scale(u, f.Basis), r3.Scale(v, yAxis)))
}

// Rotate applies the ZXZ Euler rotation Rz(alpha)*Rx(beta)*Rz(gamma) to p
func Rotate(p r3.Vec, alpha, beta, gamma float64) r3.Vec {
	p = r3.Rotate(p, gamma, UnitZ)
	p = r3.Rotate(p, beta, UnitX)
	return r3.Rotate(p, alpha, UnitZ)
}

// Placement is the rigid transform of a figure: rotation by Angles then translation by Position
type Placement struct {
	Position r3.Vec
	Angles   [3]float64
}

func (pl Placement) Transform(p r3.Vec) r3.Vec {
	if pl.Angles != [3]float64{} {
		p = Rotate(p, pl.Angles[0], pl.Angles[1], pl.Angles[2])
	}
	return r3.Add(pl.Position, p)
}

// Centroid returns the arithmetic mean of pts
func Centroid(pts ...r3.Vec) (c r3.Vec) {
	if len(pts) == 0 {
		return
	}
	for _, p := range pts {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(pts)), c)
}

// TriangleArea is the area of the triangle a, b, c
func TriangleArea(a, b, c r3.Vec) float64 {
	return r3.Triangle{a, b, c}.Area()
}

// TetVolume is the unsigned volume of the tetrahedron a, b, c, d
func TetVolume(a, b, c, d r3.Vec) float64 {
	return math.Abs(r3.Dot(r3.Sub(b, a), r3.Cross(r3.Sub(c, a), r3.Sub(d, a)))) / 6
}
