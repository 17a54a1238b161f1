// Package retina builds the 1-D panoramic image an observer sees: the full
// circle of view partitioned into alternating occluded and background arcs.
package retina

import (
	"fmt"
	"math"

	"github.com/pthm-cable/snaphome/geom"
)

// Color tags a segment as an obstacle silhouette or open background.
type Color uint8

const (
	Background Color = iota
	Occluded
)

func (c Color) String() string {
	switch c {
	case Occluded:
		return "occluded"
	case Background:
		return "background"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// Segment is one arc of the view circle.
type Segment struct {
	Bisector float64 // angular center, radians in [0, 2*Pi)
	Width    float64 // full angular extent, radians in (0, 2*Pi]
	Color    Color
}

// Start returns the clockwise edge. It may be negative; callers that need
// a canonical angle normalize it.
func (s Segment) Start() float64 {
	return s.Bisector - s.Width/2
}

// End returns the counter-clockwise edge. It may exceed 2*Pi.
func (s Segment) End() float64 {
	return s.Bisector + s.Width/2
}

// Dist returns the signed circular distance from s to other, measured
// between bisectors.
func (s Segment) Dist(other Segment) float64 {
	return geom.SignedAngularDistance(s.Bisector, other.Bisector)
}

// edgeTolerance absorbs rounding when two edges meet exactly.
const edgeTolerance = 1e-9

// Collides reports whether s and other overlap or touch. The threshold is
// non-strict, so tangent segments collide.
func (s Segment) Collides(other Segment) bool {
	return math.Abs(s.Dist(other)) <= s.Width/2+other.Width/2+edgeTolerance
}

func (s Segment) String() string {
	return fmt.Sprintf("%s{bisector: %.4f, width: %.4f}", s.Color, s.Bisector, s.Width)
}
