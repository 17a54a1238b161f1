// Package obstacle implements the occluding shapes that can be placed in a
// world. Each shape reports the angular cone it hides from a viewpoint.
package obstacle

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/retina"
)

var (
	ErrInvalidRadius  = errors.New("radius must be positive")
	ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")
	ErrNotConvex      = errors.New("polygon is not convex")
)

// Circle is a circular obstacle silhouette.
type Circle struct {
	Center r2.Vec
	Radius float64
}

// NewCircle validates the radius and returns the circle.
func NewCircle(center r2.Vec, radius float64) (Circle, error) {
	if !(radius > 0) {
		return Circle{}, fmt.Errorf("circle at (%g, %g): %w", center.X, center.Y, ErrInvalidRadius)
	}
	return Circle{Center: center, Radius: radius}, nil
}

// Contains reports whether viewpoint is inside the circle. A viewpoint on
// the rim counts as inside: the tangent cone would be degenerate there.
func (c Circle) Contains(viewpoint geom.IVec) bool {
	return r2.Norm(r2.Sub(c.Center, viewpoint.Vec())) <= c.Radius
}

// Project returns the occluded segment bounded by the two tangents from
// viewpoint to the circle.
func (c Circle) Project(viewpoint geom.IVec) (retina.Segment, bool) {
	v := r2.Sub(c.Center, viewpoint.Vec())
	d := r2.Norm(v)
	if d <= c.Radius {
		return retina.Segment{}, false
	}
	return retina.Segment{
		Bisector: geom.Heading(v.X, v.Y),
		Width:    2 * math.Asin(c.Radius/d),
		Color:    retina.Occluded,
	}, true
}
