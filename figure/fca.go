package figure

import (
	"fmt"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// FCA is an array of fracture crosses. Fractures run along the inner SectionsX and
// SectionsY lines and reach LPart of the way toward the outer lines.
type FCA struct {
	Height, Thickness, CrossSize float64
	HPart, LPart                 float64
	SectionsX, SectionsY         []float64
	IsContact                    bool
}

func newFCA(p *InputParameters.Profile, section string) (ShapeDescriptor, error) {
	fa := &FCA{
		Height:    InputParameters.Request(p, section, "height", -1.),
		Thickness: InputParameters.Request(p, section, "thickness", -1.),
		CrossSize: InputParameters.Request(p, section, "cross_size", -1.),
		HPart:     InputParameters.Request(p, section, "hpart", -1.),
		LPart:     InputParameters.Request(p, section, "lpart", -1.),
		SectionsX: InputParameters.Request(p, section, "sections_x", []float64(nil)),
		SectionsY: InputParameters.Request(p, section, "sections_y", []float64(nil)),
		IsContact: flag(p, section, "is_contact"),
	}
	err := positive(section, map[string]float64{"height": fa.Height, "thickness": fa.Thickness,
		"hpart": fa.HPart, "lpart": fa.LPart})
	if err != nil {
		return nil, err
	}
	if len(fa.SectionsX) < 3 || len(fa.SectionsY) < 3 {
		return nil, fmt.Errorf("%w: %s needs at least 3 sections along x and y, have %d and %d",
			ErrBadShape, section, len(fa.SectionsX), len(fa.SectionsY))
	}
	return fa, nil
}

func (fa *FCA) Kind() string { return "FCA" }

// secPoint is the grid point (i, j) at height level z: bottom, lower inner, upper inner, top
func (fa *FCA) secPoint(i, j, z int) r3.Vec {
	levels := [4]float64{-fa.Height / 2, -fa.HPart * fa.Height / 2, fa.HPart * fa.Height / 2, fa.Height / 2}
	return r3.Vec{X: fa.SectionsX[i], Y: fa.SectionsY[j], Z: levels[z]}
}

func (fa *FCA) Shape(surface.Triangulator) (sh *Shape, err error) {
	var (
		nx, ny = len(fa.SectionsX), len(fa.SectionsY)
		thv    = r3.Vec{Y: fa.Thickness / 2}
		thh    = r3.Vec{X: fa.Thickness / 2}
		n      = 10 * (nx - 2)
	)
	sh = &Shape{Hole: r3.Vec{X: fa.SectionsX[1], Y: fa.SectionsY[1]}}
	addFacet := func(corners ...int) { sh.Facets = append(sh.Facets, corners) }
	// Ten points per inner crossing: bottom, the lower and upper openings, top
	for j := 1; j < ny-1; j++ {
		for i := 1; i < nx-1; i++ {
			sh.Points = append(sh.Points,
				fa.secPoint(i, j, 0),
				sum(fa.secPoint(i, j, 1), neg(thv), neg(thh)),
				sum(fa.secPoint(i, j, 1), thv, neg(thh)),
				sum(fa.secPoint(i, j, 1), thv, thh),
				sum(fa.secPoint(i, j, 1), neg(thv), thh),
				sum(fa.secPoint(i, j, 2), neg(thv), neg(thh)),
				sum(fa.secPoint(i, j, 2), thv, neg(thh)),
				sum(fa.secPoint(i, j, 2), thv, thh),
				sum(fa.secPoint(i, j, 2), neg(thv), thh),
				fa.secPoint(i, j, 3),
			)
		}
	}
	for i := 0; i < nx-2; i++ {
		for j := 0; j < ny-2; j++ {
			var (
				of1 = n*j + 10*i
				of2 = n*j + 10*(i+1)
				of3 = n*(j+1) + 10*i
			)
			if i < nx-3 {
				addFacet(of1+0, of1+3, of2+2, of2+0)
				addFacet(of1+0, of1+4, of2+1, of2+0)
				addFacet(of1+3, of1+7, of2+6, of2+2)
				addFacet(of1+4, of1+8, of2+5, of2+1)
				addFacet(of1+7, of1+9, of2+9, of2+6)
				addFacet(of1+8, of1+9, of2+9, of2+5)
			}
			if j < ny-3 {
				addFacet(of1+0, of1+3, of3+4, of3+0)
				addFacet(of1+0, of1+2, of3+1, of3+0)
				addFacet(of1+3, of1+7, of3+8, of3+4)
				addFacet(of1+2, of1+6, of3+5, of3+1)
				addFacet(of1+7, of1+9, of3+9, of3+8)
				addFacet(of1+6, of1+9, of3+9, of3+5)
			}
		}
	}
	// Dead ends toward the outer lines, each six points and eight facets. c lists the
	// crossing point offsets the dead end attaches to.
	deadEnd := func(i, j int, l, th r3.Vec, of1 int, c [6]int) {
		pn := len(sh.Points)
		sh.Points = append(sh.Points,
			fa.secPoint(i, j, 0),
			sum(fa.secPoint(i, j, 1), neg(l), th),
			sum(fa.secPoint(i, j, 1), neg(l), neg(th)),
			sum(fa.secPoint(i, j, 2), neg(l), th),
			sum(fa.secPoint(i, j, 2), neg(l), neg(th)),
			fa.secPoint(i, j, 3),
		)
		addFacet(of1+c[0], of1+c[1], pn+1, pn)
		addFacet(of1+c[0], of1+c[2], pn+2, pn)
		addFacet(of1+c[1], of1+c[3], pn+3, pn+1)
		addFacet(of1+c[2], of1+c[4], pn+4, pn+2)
		addFacet(of1+c[3], of1+c[5], pn+5, pn+3)
		addFacet(of1+c[4], of1+c[5], pn+5, pn+4)
		addFacet(pn+0, pn+1, pn+3, pn+5)
		addFacet(pn+0, pn+2, pn+4, pn+5)
	}
	l := r3.Scale(1-fa.LPart, r3.Vec{Y: fa.SectionsY[0] - fa.SectionsY[1]})
	for i := 1; i < nx-1; i++ {
		deadEnd(i, 0, l, thh, 10*(i-1), [6]int{0, 4, 1, 8, 5, 9})
	}
	l = r3.Scale(1-fa.LPart, r3.Vec{Y: fa.SectionsY[ny-1] - fa.SectionsY[ny-2]})
	for i := 1; i < nx-1; i++ {
		deadEnd(i, ny-1, l, thh, n*(ny-3)+10*(i-1), [6]int{0, 3, 2, 7, 6, 9})
	}
	l = r3.Scale(1-fa.LPart, r3.Vec{X: fa.SectionsX[0] - fa.SectionsX[1]})
	for j := 1; j < ny-1; j++ {
		deadEnd(0, j, l, thv, n*(j-1), [6]int{0, 2, 1, 6, 5, 9})
	}
	l = r3.Scale(1-fa.LPart, r3.Vec{X: fa.SectionsX[nx-1] - fa.SectionsX[nx-2]})
	for j := 1; j < ny-1; j++ {
		deadEnd(nx-1, j, l, thv, n*(j-1)+10*(nx-3), [6]int{0, 3, 4, 7, 8, 9})
	}
	if fa.IsContact {
		for i := 0; i < len(sh.Facets)/2; i++ {
			sh.Contacts = append(sh.Contacts, [2]int{2 * i, 2*i + 1})
		}
	}
	return
}

func (fa *FCA) FaceTypes(*Figure) (boundaryCounts, contactCounts []int) { return }
