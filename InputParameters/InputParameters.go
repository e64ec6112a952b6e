package InputParameters

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrInvalidParameter = errors.New("invalid mesh parameter")

// FigureEntry is one figure<i>_* group of the [Figures] section
type FigureEntry struct {
	Index    int // 1 based, as written in the profile
	Type     string
	IsEmpty  bool
	Position r3.Vec
	Angles   [3]float64
}

// MeshParameters are the [Mesh], [Segments] and [Figures] settings of the master profile
type MeshParameters struct {
	Quality     float64
	AverageStep float64
	SegmentsX   int
	SegmentsY   int
	SegmentsZ   int
	Figures     []FigureEntry
}

// NewMeshParameters reads the mesh settings. Missing entries fall back to -1, which then
// fails validation the same as an explicit bad value.
func NewMeshParameters(p *Profile) (mp *MeshParameters, err error) {
	mp = &MeshParameters{
		Quality:     Request(p, "Mesh", "quality", -1.),
		AverageStep: Request(p, "Mesh", "average_step", -1.),
		SegmentsX:   Request(p, "Segments", "number_of_segments_x", -1),
		SegmentsY:   Request(p, "Segments", "number_of_segments_y", -1),
		SegmentsZ:   Request(p, "Segments", "number_of_segments_z", -1),
	}
	nf := Request(p, "Figures", "number_of_figures", -1)
	for i := 1; i <= nf; i++ {
		prefix := "figure" + strconv.Itoa(i)
		fe := FigureEntry{
			Index:    i,
			Type:     Request(p, "Figures", prefix+"_type", "none"),
			IsEmpty:  Request(p, "Figures", prefix+"_is_empty", false),
			Position: Request(p, "Figures", prefix+"_position", r3.Vec{}),
		}
		angles := Request(p, "Figures", prefix+"_angles", r3.Vec{})
		fe.Angles = [3]float64{angles.X, angles.Y, angles.Z}
		mp.Figures = append(mp.Figures, fe)
	}
	switch {
	case mp.AverageStep <= 0:
		err = fmt.Errorf("%w: Mesh.average_step = %g", ErrInvalidParameter, mp.AverageStep)
	case mp.Quality < 0:
		err = fmt.Errorf("%w: Mesh.quality = %g", ErrInvalidParameter, mp.Quality)
	case mp.SegmentsX < 1 || mp.SegmentsY < 1 || mp.SegmentsZ < 1:
		err = fmt.Errorf("%w: Segments = %d x %d x %d", ErrInvalidParameter, mp.SegmentsX, mp.SegmentsY, mp.SegmentsZ)
	case nf < 1:
		err = fmt.Errorf("%w: Figures.number_of_figures = %d", ErrInvalidParameter, nf)
	}
	if err != nil {
		return nil, err
	}
	return
}

func (mp *MeshParameters) Print() {
	fmt.Printf("%8.5f\t\t= Quality\n", mp.Quality)
	fmt.Printf("%8.5f\t\t= Average Step\n", mp.AverageStep)
	fmt.Printf("[%d x %d x %d]\t\t= Segments\n", mp.SegmentsX, mp.SegmentsY, mp.SegmentsZ)
	for _, fe := range mp.Figures {
		fmt.Printf("Figure[%d] = %s, empty: %v, position: %v, angles: %v\n",
			fe.Index, fe.Type, fe.IsEmpty, fe.Position, fe.Angles)
	}
}

// SplitManifest overrides how the tetrahedral mesh is split and where the pieces go
type SplitManifest struct {
	SegmentsX int    `yaml:"SegmentsX"`
	SegmentsY int    `yaml:"SegmentsY"`
	SegmentsZ int    `yaml:"SegmentsZ"`
	DataDir   string `yaml:"DataDir"`
	Prefix    string `yaml:"Prefix"` // Region file name prefix, Mesh when empty
}

func (sm *SplitManifest) Parse(data []byte) error {
	return yaml.Unmarshal(data, sm)
}

// Apply copies the non zero manifest segment counts onto mp
func (sm *SplitManifest) Apply(mp *MeshParameters) {
	if sm.SegmentsX > 0 {
		mp.SegmentsX = sm.SegmentsX
	}
	if sm.SegmentsY > 0 {
		mp.SegmentsY = sm.SegmentsY
	}
	if sm.SegmentsZ > 0 {
		mp.SegmentsZ = sm.SegmentsZ
	}
}

func (sm *SplitManifest) Print() {
	fmt.Printf("[%d x %d x %d]\t\t= Segments\n", sm.SegmentsX, sm.SegmentsY, sm.SegmentsZ)
	fmt.Printf("\"%s\"\t\t= Data Directory\n", sm.DataDir)
	fmt.Printf("\"%s\"\t\t= Prefix\n", sm.Prefix)
}
