package figure

import (
	"fmt"
	"math"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// CrossFracture is two fractures of the same size crossing at the origin, Angle radians
// apart, both vertical
type CrossFracture struct {
	Height, Length, Thickness float64
	HPart, LPart              float64
	Angle                     float64
	IsContact                 bool
}

func newCrossFracture(p *InputParameters.Profile, section string) (ShapeDescriptor, error) {
	cf := &CrossFracture{
		Height:    InputParameters.Request(p, section, "height", -1.),
		Length:    InputParameters.Request(p, section, "length", -1.),
		Thickness: InputParameters.Request(p, section, "thickness", -1.),
		HPart:     InputParameters.Request(p, section, "hpart", -1.),
		LPart:     InputParameters.Request(p, section, "lpart", -1.),
		Angle:     InputParameters.Request(p, section, "angle", -1.),
		IsContact: flag(p, section, "is_contact"),
	}
	err := positive(section, map[string]float64{"height": cf.Height, "length": cf.Length,
		"thickness": cf.Thickness, "hpart": cf.HPart, "lpart": cf.LPart, "angle": cf.Angle})
	if err != nil {
		return nil, err
	}
	// At sin² = 1/2 the inner corners of the two fractures coincide
	if s := math.Sin(cf.Angle / 2); math.Abs(s*s-0.5) < 1e-6 || math.Abs(s) < 1e-6 {
		return nil, fmt.Errorf("%w: %s angle %g collapses the crossing", ErrBadShape, section, cf.Angle)
	}
	return cf, nil
}

func (cf *CrossFracture) Kind() string { return "Cross_fracture" }

func sum(v ...r3.Vec) (s r3.Vec) {
	for _, p := range v {
		s = r3.Add(s, p)
	}
	return
}

func neg(v r3.Vec) r3.Vec { return r3.Scale(-1, v) }

func (cf *CrossFracture) Shape(surface.Triangulator) (sh *Shape, err error) {
	var (
		sin, cos = math.Sincos(cf.Angle / 2)
		angp1    = r3.Vec{X: cf.Length / 2 * sin, Y: cf.Length / 2 * cos}
		angp2    = r3.Vec{X: -cf.Length / 2 * sin, Y: cf.Length / 2 * cos}
		hangp1   = r3.Scale(cf.LPart, angp1)
		hangp2   = r3.Scale(cf.LPart, angp2)
		zp       = r3.Vec{Z: cf.Height / 2}
		hzp      = r3.Scale(cf.HPart, zp)
		th1      = r3.Vec{X: cf.Thickness / 2 * cos, Y: -cf.Thickness / 2 * sin}
		th2      = r3.Vec{X: cf.Thickness / 2 * cos, Y: cf.Thickness / 2 * sin}
		crossp   = r3.Vec{Y: cf.Thickness / (2 * sin)}
	)
	// The inner ring is laid out twice, at -hzp then at +hzp
	ring := func(z r3.Vec) []r3.Vec {
		return []r3.Vec{
			sum(neg(hangp1), th1, z),
			sum(neg(hangp2), neg(th2), z),
			sum(neg(hangp1), neg(th1), z),
			sum(neg(hangp2), th2, z),

			sum(neg(crossp), z),

			sum(neg(crossp), r3.Scale(-2, th1), z),
			sum(neg(crossp), r3.Scale(2, th2), z),
			sum(crossp, r3.Scale(-2, th2), z),
			sum(crossp, r3.Scale(2, th1), z),

			sum(crossp, z),

			sum(hangp2, neg(th2), z),
			sum(hangp1, th1, z),
			sum(hangp2, th2, z),
			sum(hangp1, neg(th1), z),
		}
	}
	sh = &Shape{}
	sh.Points = append(sh.Points,
		sum(neg(angp1), neg(zp)),
		sum(neg(angp2), neg(zp)),
		neg(zp),
		sum(angp2, neg(zp)),
		sum(angp1, neg(zp)),
	)
	sh.Points = append(sh.Points, ring(neg(hzp))...)
	sh.Points = append(sh.Points, ring(hzp)...)
	sh.Points = append(sh.Points,
		sum(neg(angp1), zp),
		sum(neg(angp2), zp),
		zp,
		sum(angp2, zp),
		sum(angp1, zp),
	)
	sh.Facets = [][]int{
		{0, 7, 21, 33}, {0, 5, 19, 33}, {1, 6, 20, 34}, {1, 8, 22, 34},

		{0, 7, 10, 2}, {0, 5, 9, 2}, {1, 8, 11, 2}, {1, 6, 9, 2},

		{2, 10, 12}, {2, 11, 13},

		{2, 3, 15, 12}, {2, 3, 17, 14}, {2, 4, 16, 13}, {2, 4, 18, 14},

		{3, 17, 31, 36}, {3, 15, 29, 36}, {4, 18, 32, 37}, {4, 16, 30, 37},

		{7, 10, 24, 21}, {5, 9, 23, 19}, {8, 11, 25, 22}, {6, 9, 23, 20},

		{10, 12, 26, 24}, {11, 13, 27, 25},

		{12, 15, 29, 26}, {14, 17, 31, 28}, {13, 16, 30, 27}, {14, 18, 32, 28},

		{21, 24, 35, 33}, {19, 23, 35, 33}, {20, 23, 35, 34}, {22, 25, 35, 34},

		{24, 26, 35}, {25, 27, 35},

		{29, 26, 35, 36}, {31, 28, 35, 36}, {32, 28, 35, 37}, {30, 27, 35, 37},
	}
	if cf.IsContact {
		for i := 0; i < len(sh.Facets)/2; i++ {
			sh.Contacts = append(sh.Contacts, [2]int{2 * i, 2*i + 1})
		}
	}
	return
}

func (cf *CrossFracture) FaceTypes(*Figure) (boundaryCounts, contactCounts []int) { return }
