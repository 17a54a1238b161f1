package retina

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/snaphome/geom"
)

// ErrInsideObstacle is returned when the viewpoint lies inside or on the
// boundary of an obstacle. The image is undefined there.
var ErrInsideObstacle = errors.New("viewpoint inside obstacle")

// Occluder is anything that can report the angular cone it blocks as seen
// from a grid position.
type Occluder interface {
	// Project returns the occluded segment seen from viewpoint, or false
	// when the obstacle does not occlude anything from there.
	Project(viewpoint geom.IVec) (Segment, bool)
	// Contains reports whether viewpoint is inside the obstacle, boundary
	// included.
	Contains(viewpoint geom.IVec) bool
}

// Image is a circular partition of the view into segments, ordered by
// bisector. The order carries no meaning beyond determinism.
type Image struct {
	Segments []Segment
}

// Build projects every occluder from viewpoint, merges overlapping
// silhouettes and fills the gaps with background, so the returned image
// tiles the full circle. With nothing visible the image is one background
// segment covering the circle.
func Build(viewpoint geom.IVec, occluders []Occluder) (Image, error) {
	projected := make([]Segment, 0, len(occluders))
	for i, o := range occluders {
		if o.Contains(viewpoint) {
			return Image{}, fmt.Errorf("obstacle %d at %v: %w", i, viewpoint, ErrInsideObstacle)
		}
		if s, ok := o.Project(viewpoint); ok {
			projected = append(projected, s)
		}
	}

	if len(projected) == 0 {
		return Image{Segments: []Segment{fullCircle(Background)}}, nil
	}

	arcs, full := mergeArcs(projected)
	if full {
		return Image{Segments: []Segment{fullCircle(Occluded)}}, nil
	}

	segments := make([]Segment, 0, 2*len(arcs))
	for _, a := range arcs {
		segments = append(segments, a.segment(Occluded))
	}
	segments = append(segments, fillBackground(arcs)...)
	sortByBisector(segments)

	return Image{Segments: segments}, nil
}

// TotalWidth sums the widths of all segments. For a well-formed image it
// equals 2*Pi.
func (img Image) TotalWidth() float64 {
	var sum float64
	for _, s := range img.Segments {
		sum += s.Width
	}
	return sum
}

// Count returns the number of segments of color c.
func (img Image) Count(c Color) int {
	n := 0
	for _, s := range img.Segments {
		if s.Color == c {
			n++
		}
	}
	return n
}

// Occluded returns the occluded segments in image order.
func (img Image) Occluded() []Segment {
	out := make([]Segment, 0, len(img.Segments))
	for _, s := range img.Segments {
		if s.Color == Occluded {
			out = append(out, s)
		}
	}
	return out
}

// Equal reports whether both images have the same segments in the same
// order, with bisectors and widths within tol.
func (img Image) Equal(other Image, tol float64) bool {
	if len(img.Segments) != len(other.Segments) {
		return false
	}
	for i, s := range img.Segments {
		o := other.Segments[i]
		if s.Color != o.Color {
			return false
		}
		if math.Abs(s.Dist(o)) > tol || math.Abs(s.Width-o.Width) > tol {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the image.
func (img Image) Clone() Image {
	return Image{Segments: append([]Segment(nil), img.Segments...)}
}
