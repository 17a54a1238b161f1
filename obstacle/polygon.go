package obstacle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/retina"
)

// Polygon is a convex polygonal obstacle. Vertices may wind either way.
type Polygon struct {
	vertices []r2.Vec
	centroid r2.Vec
	winding  float64 // +1 counter-clockwise, -1 clockwise
}

// NewPolygon validates that the outline is convex, simple and has no
// repeated consecutive vertices.
func NewPolygon(vertices []r2.Vec) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("polygon with %d vertices: %w", len(vertices), ErrTooFewVertices)
	}

	var winding, turning float64
	for i := range vertices {
		a := vertices[i]
		b := vertices[(i+1)%len(vertices)]
		c := vertices[(i+2)%len(vertices)]
		ab, bc := r2.Sub(b, a), r2.Sub(c, b)
		if r2.Norm(ab) == 0 {
			return nil, fmt.Errorf("repeated vertex %d: %w", (i+1)%len(vertices), ErrNotConvex)
		}
		z := r2.Cross(ab, bc)
		turning += math.Atan2(z, r2.Dot(ab, bc))
		if z == 0 {
			if r2.Dot(ab, bc) < 0 {
				return nil, fmt.Errorf("edge folds back at vertex %d: %w", (i+1)%len(vertices), ErrNotConvex)
			}
			continue
		}
		sign := math.Copysign(1, z)
		if winding == 0 {
			winding = sign
		} else if sign != winding {
			return nil, ErrNotConvex
		}
	}
	if winding == 0 {
		return nil, fmt.Errorf("all vertices collinear: %w", ErrNotConvex)
	}
	// A simple convex outline turns through exactly one full circle; a
	// self-intersecting star turns the same way at every vertex but winds
	// more than once.
	if math.Abs(math.Abs(turning)-2*math.Pi) > 1e-6 {
		return nil, fmt.Errorf("outline winds %.2f turns: %w", turning/(2*math.Pi), ErrNotConvex)
	}

	var centroid r2.Vec
	for _, v := range vertices {
		centroid = r2.Add(centroid, v)
	}
	centroid = r2.Scale(1/float64(len(vertices)), centroid)

	return &Polygon{
		vertices: append([]r2.Vec(nil), vertices...),
		centroid: centroid,
		winding:  winding,
	}, nil
}

// Vertices returns a copy of the outline.
func (p *Polygon) Vertices() []r2.Vec {
	return append([]r2.Vec(nil), p.vertices...)
}

// Centroid returns the vertex average.
func (p *Polygon) Centroid() r2.Vec {
	return p.centroid
}

// Contains reports whether viewpoint is inside the polygon or on an edge.
func (p *Polygon) Contains(viewpoint geom.IVec) bool {
	q := viewpoint.Vec()
	for i, a := range p.vertices {
		b := p.vertices[(i+1)%len(p.vertices)]
		if p.winding*r2.Cross(r2.Sub(b, a), r2.Sub(q, a)) < 0 {
			return false
		}
	}
	return true
}

// Project returns the cone spanned by the vertices. Seen from outside a
// convex polygon the cone is narrower than Pi, so every vertex lies within
// a half turn of the centroid direction and signed distances order them.
func (p *Polygon) Project(viewpoint geom.IVec) (retina.Segment, bool) {
	if p.Contains(viewpoint) {
		return retina.Segment{}, false
	}
	q := viewpoint.Vec()
	toCentroid := r2.Sub(p.centroid, q)
	ref := math.Atan2(toCentroid.Y, toCentroid.X)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range p.vertices {
		d := r2.Sub(v, q)
		off := geom.SignedAngularDistance(ref, math.Atan2(d.Y, d.X))
		lo = math.Min(lo, off)
		hi = math.Max(hi, off)
	}
	if hi <= lo {
		return retina.Segment{}, false
	}
	return retina.Segment{
		Bisector: geom.NormalizeAngle(ref + (lo+hi)/2),
		Width:    hi - lo,
		Color:    retina.Occluded,
	}, true
}
