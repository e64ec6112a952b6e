package figure

import (
	"fmt"

	"github.com/notargets/meshbuilder/InputParameters"
	"github.com/notargets/meshbuilder/readfiles"
	"github.com/notargets/meshbuilder/surface"
)

// PlyModel is a closed polygon model read from an ASCII PLY file
type PlyModel struct {
	Scale       float64
	PathToModel string
}

func newPlyModel(p *InputParameters.Profile, section string) (ShapeDescriptor, error) {
	pm := &PlyModel{
		Scale:       InputParameters.Request(p, section, "scale", -1.),
		PathToModel: InputParameters.Request(p, section, "path_to_model", ""),
	}
	if pm.PathToModel == "" {
		return nil, fmt.Errorf("%w: %s.path_to_model is empty", ErrBadShape, section)
	}
	if err := positive(section, map[string]float64{"scale": pm.Scale}); err != nil {
		return nil, err
	}
	return pm, nil
}

func (pm *PlyModel) Kind() string { return "Ply_model" }

func (pm *PlyModel) Shape(surface.Triangulator) (sh *Shape, err error) {
	sh = &Shape{}
	if sh.Points, sh.Facets, err = readfiles.ReadPLY(pm.PathToModel, pm.Scale); err != nil {
		return nil, err
	}
	return
}

func (pm *PlyModel) FaceTypes(*Figure) (boundaryCounts, contactCounts []int) { return }
