package figure

import (
	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Fracture is a thin lens in the x = 0 plane: a Length x Height outer rectangle whose
// inner HPart x LPart part opens to Thickness along x
type Fracture struct {
	Height, Length, Thickness float64
	HPart, LPart              float64
	IsContact                 bool
}

func newFracture(p *InputParameters.Profile, section string) (ShapeDescriptor, error) {
	fr := &Fracture{
		Height:    InputParameters.Request(p, section, "height", -1.),
		Length:    InputParameters.Request(p, section, "length", -1.),
		Thickness: InputParameters.Request(p, section, "thickness", -1.),
		HPart:     InputParameters.Request(p, section, "hpart", -1.),
		LPart:     InputParameters.Request(p, section, "lpart", -1.),
		IsContact: flag(p, section, "is_contact"),
	}
	err := positive(section, map[string]float64{"height": fr.Height, "length": fr.Length,
		"thickness": fr.Thickness, "hpart": fr.HPart, "lpart": fr.LPart})
	if err != nil {
		return nil, err
	}
	return fr, nil
}

func (fr *Fracture) Kind() string { return "Fracture" }

func (fr *Fracture) Shape(surface.Triangulator) (sh *Shape, err error) {
	var (
		l, h   = fr.Length / 2, fr.Height / 2
		lp, hp = fr.LPart * l, fr.HPart * h
		t      = fr.Thickness / 2
	)
	sh = &Shape{
		Points: []r3.Vec{
			{Y: -l, Z: -h}, {Y: -l, Z: h}, {Y: l, Z: h}, {Y: l, Z: -h},
			{X: -t, Y: -lp, Z: -hp}, {X: -t, Y: -lp, Z: hp}, {X: -t, Y: lp, Z: hp}, {X: -t, Y: lp, Z: -hp},
			{X: t, Y: -lp, Z: -hp}, {X: t, Y: -lp, Z: hp}, {X: t, Y: lp, Z: hp}, {X: t, Y: lp, Z: -hp},
		},
		Facets: [][]int{
			{0, 1, 5, 4}, {0, 1, 9, 8},
			{1, 2, 6, 5}, {1, 2, 10, 9},
			{2, 3, 7, 6}, {2, 3, 11, 10},
			{3, 0, 4, 7}, {3, 0, 8, 11},
			{4, 5, 6, 7}, {8, 9, 10, 11},
		},
	}
	if fr.IsContact {
		sh.Contacts = [][2]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {8, 9}}
	}
	return
}

func (fr *Fracture) FaceTypes(*Figure) (boundaryCounts, contactCounts []int) { return }
