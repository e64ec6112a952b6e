package geometry2D

import (
	"errors"
	"fmt"
	"math"
)

// MaxSteinerPoints bounds refinement of a single triangulation
var MaxSteinerPoints = 2000000

// Circumcenter of triangle t
func (tm *TriMesh) Circumcenter(t int) (c Point, ok bool) {
	v := tm.Tris[t].Verts
	a, b, cc := tm.pt(v[0]), tm.pt(v[1]), tm.pt(v[2])
	bx, by := b.X[0]-a.X[0], b.X[1]-a.X[1]
	cx, cy := cc.X[0]-a.X[0], cc.X[1]-a.X[1]
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return
	}
	b2, c2 := bx*bx+by*by, cx*cx+cy*cy
	c.X[0] = a.X[0] + (cy*b2-by*c2)/d
	c.X[1] = a.X[1] + (bx*c2-cx*b2)/d
	return c, true
}

// MinAngle returns the smallest interior angle of triangle t in degrees
func (tm *TriMesh) MinAngle(t int) float64 {
	v := tm.Tris[t].Verts
	min := 180.
	for i := 0; i < 3; i++ {
		o, p, q := tm.pt(v[i]), tm.pt(v[(i+1)%3]), tm.pt(v[(i+2)%3])
		ux, uy := p.X[0]-o.X[0], p.X[1]-o.X[1]
		wx, wy := q.X[0]-o.X[0], q.X[1]-o.X[1]
		ang := math.Abs(math.Atan2(ux*wy-uy*wx, ux*wx+uy*wy)) * 180 / math.Pi
		if ang < min {
			min = ang
		}
	}
	return min
}

// locateInside walks from t to the triangle holding p without crossing a constrained edge
func (tm *TriMesh) locateInside(t int, p Point) (int, int, bool) {
	for steps := 0; steps < len(tm.Tris); steps++ {
		tri := tm.Tris[t]
		moved := false
		for i := 0; i < 3; i++ {
			a, b := tm.pt(tri.Verts[(i+1)%3]), tm.pt(tri.Verts[(i+2)%3])
			if Orient(a, b, p) < -tm.eps(a, b) {
				if tri.Fixed[i] || tri.Nbrs[i] < 0 || tm.Tris[tri.Nbrs[i]].Outside {
					return -1, -1, false
				}
				t = tri.Nbrs[i]
				moved = true
				break
			}
		}
		if !moved {
			return t, tm.edgeOf(t, p), true
		}
	}
	return -1, -1, false
}

func (tm *TriMesh) isInside(t int) bool {
	tri := tm.Tris[t]
	return !tri.Outside && !tm.IsSuper(tri.Verts[0]) && !tm.IsSuper(tri.Verts[1]) && !tm.IsSuper(tri.Verts[2])
}

// Refine inserts Steiner points until every inside triangle is no larger than sw.MaxArea and,
// with sw.Quality, until triangles with small angles can no longer be improved by a circumcenter.
// Constrained edges are never split.
func (tm *TriMesh) Refine(sw Switches) (err error) {
	if sw.MaxArea <= 0 && !sw.Quality {
		return
	}
	var (
		box      = NewBoundingBox(tm.Points[3:])
		minArea  = 1e-10 * box.Area()
		inserted int
	)
	// Angle driven splits near short input segments can cascade, so they get a budget
	qualityBudget := 20*len(tm.Points) + 1000
	if sw.MaxArea > 0 {
		minArea = math.Max(minArea, 1e-3*sw.MaxArea)
	}
	tm.touched = tm.touched[:0]
	queue := make([]int, 0, len(tm.Tris))
	for t := range tm.Tris {
		queue = append(queue, t)
	}
	for len(queue) > 0 {
		t := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if !tm.isInside(t) {
			continue
		}
		area := tm.Area(t)
		tooBig := sw.MaxArea > 0 && area > sw.MaxArea
		skinny := sw.Quality && area > minArea && tm.MinAngle(t) < sw.MinAngle
		if !tooBig && (!skinny || inserted >= qualityBudget) {
			continue
		}
		if inserted >= MaxSteinerPoints {
			if tooBig {
				return fmt.Errorf("refinement exceeded %d Steiner points", MaxSteinerPoints)
			}
			continue
		}
		var ok bool
		if ok, err = tm.splitBad(t, tooBig); err != nil {
			return
		}
		if ok {
			inserted++
			queue = append(queue, tm.touched...)
		}
		tm.touched = tm.touched[:0]
	}
	return
}

// splitBad inserts the circumcenter of t when it lies inside the domain away from
// constrained edges, otherwise the centroid when force is set
func (tm *TriMesh) splitBad(t int, force bool) (ok bool, err error) {
	if cc, valid := tm.Circumcenter(t); valid {
		if host, onEdge, inside := tm.locateInside(t, cc); inside {
			_, err = tm.insertAt(cc, host, onEdge)
			switch {
			case err == nil:
				return true, nil
			case errors.Is(err, ErrDuplicatePoint), errors.Is(err, ErrOnSegment):
				err = nil
			default:
				return
			}
		}
	}
	if !force {
		return
	}
	v := tm.Tris[t].Verts
	a, b, c := tm.pt(v[0]), tm.pt(v[1]), tm.pt(v[2])
	g := Point{X: [2]float64{(a.X[0] + b.X[0] + c.X[0]) / 3, (a.X[1] + b.X[1] + c.X[1]) / 3}}
	if _, err = tm.insertAt(g, t, -1); err != nil {
		return false, fmt.Errorf("failed to split triangle %d: %w", t, err)
	}
	return true, nil
}
