package geometry2D

import (
	"fmt"
	"strconv"
	"strings"
)

// Switches mirrors the command switches of the Triangle program that this package honors
type Switches struct {
	PSLG              bool    // p: triangulate a planar straight line graph, removing the exterior
	ZeroBased         bool    // z: indices start at zero
	Quality           bool    // q: refine until no angle is below MinAngle
	MinAngle          float64 // Degrees, 20 when q has no number
	Quiet             bool    // Q
	NoBoundarySteiner bool    // Y: never split input segments
	MaxArea           float64 // a<area>, zero means unconstrained
}

// ParseSwitches reads a Triangle style switch string like "pzqQYa0.125"
func ParseSwitches(s string) (sw Switches, err error) {
	number := func(i int) (val float64, next int, present bool, err error) {
		j := i
		for j < len(s) && strings.ContainsRune("0123456789.eE+-", rune(s[j])) {
			j++
		}
		if j == i {
			return 0, i, false, nil
		}
		if val, err = strconv.ParseFloat(s[i:j], 64); err != nil {
			err = fmt.Errorf("bad number in switches %q: %w", s, err)
		}
		return val, j, true, err
	}
	for i := 0; i < len(s); {
		c := s[i]
		i++
		var (
			val     float64
			present bool
		)
		switch c {
		case 'p':
			sw.PSLG = true
		case 'z':
			sw.ZeroBased = true
		case 'Q':
			sw.Quiet = true
		case 'Y':
			sw.NoBoundarySteiner = true
		case 'q':
			sw.Quality = true
			if val, i, present, err = number(i); err != nil {
				return
			}
			sw.MinAngle = 20
			if present {
				sw.MinAngle = val
			}
		case 'a':
			if val, i, present, err = number(i); err != nil {
				return
			}
			if !present || val <= 0 {
				err = fmt.Errorf("switch 'a' needs a positive area in %q", s)
				return
			}
			sw.MaxArea = val
		case 'V', 'D', 'e', 'n', 'c':
			// Accepted and ignored
		default:
			err = fmt.Errorf("unsupported switch %q in %q", c, s)
			return
		}
	}
	return
}

func (sw Switches) String() (s string) {
	if sw.PSLG {
		s += "p"
	}
	if sw.ZeroBased {
		s += "z"
	}
	if sw.Quality {
		s += "q" + strconv.FormatFloat(sw.MinAngle, 'g', -1, 64)
	}
	if sw.Quiet {
		s += "Q"
	}
	if sw.NoBoundarySteiner {
		s += "Y"
	}
	if sw.MaxArea > 0 {
		s += "a" + strconv.FormatFloat(sw.MaxArea, 'f', -1, 64)
	}
	return
}
