package retina

import (
	"cmp"
	"math"
	"slices"

	"github.com/pthm-cable/snaphome/geom"
)

// arc is a segment in edge form. start is in [0, 2*Pi) and end may run
// past 2*Pi when the arc crosses the seam.
type arc struct {
	start, end float64
}

func (a arc) width() float64 {
	return a.end - a.start
}

func (a arc) segment(c Color) Segment {
	w := a.width()
	return Segment{
		Bisector: geom.NormalizeAngle(a.start + w/2),
		Width:    w,
		Color:    c,
	}
}

// fullCircle is the single segment covering the whole view.
func fullCircle(c Color) Segment {
	return Segment{Bisector: math.Pi, Width: geom.TwoPi, Color: c}
}

// Merge unions overlapping or touching segments into disjoint occluded
// segments sorted by bisector. The result does not depend on the order of
// the input, and merging an already disjoint set returns it unchanged.
func Merge(segments []Segment) []Segment {
	arcs, full := mergeArcs(segments)
	if full {
		return []Segment{fullCircle(Occluded)}
	}
	out := make([]Segment, 0, len(arcs))
	for _, a := range arcs {
		out = append(out, a.segment(Occluded))
	}
	sortByBisector(out)
	return out
}

// mergeArcs sweeps the segments in order of their start edge, then folds
// the arcs that wrap across the seam into the first ones. The returned arcs
// are disjoint and ascending by start. full is set when the union covers
// the whole circle.
func mergeArcs(segments []Segment) (arcs []arc, full bool) {
	arcs = make([]arc, 0, len(segments))
	for _, s := range segments {
		if s.Width <= 0 {
			continue
		}
		if s.Width >= geom.TwoPi-edgeTolerance {
			return nil, true
		}
		start := geom.NormalizeAngle(s.Start())
		arcs = append(arcs, arc{start: start, end: start + s.Width})
	}
	if len(arcs) == 0 {
		return nil, false
	}

	slices.SortFunc(arcs, func(a, b arc) int {
		return cmp.Compare(a.start, b.start)
	})

	merged := make([]arc, 1, len(arcs))
	merged[0] = arcs[0]
	for _, a := range arcs[1:] {
		last := &merged[len(merged)-1]
		if a.start <= last.end+edgeTolerance {
			last.end = math.Max(last.end, a.end)
			continue
		}
		merged = append(merged, a)
	}

	// The last arc may reach across the seam into the first ones.
	for len(merged) > 1 {
		first, last := merged[0], merged[len(merged)-1]
		if last.end+edgeTolerance < first.start+geom.TwoPi {
			break
		}
		merged[len(merged)-1].end = math.Max(last.end, first.end+geom.TwoPi)
		merged = merged[1:]
	}

	for _, a := range merged {
		if a.width() >= geom.TwoPi-edgeTolerance {
			return nil, true
		}
	}
	return merged, false
}

// fillBackground returns the background segments between circularly
// adjacent arcs, including the pair that wraps from the last arc back to
// the first.
func fillBackground(arcs []arc) []Segment {
	out := make([]Segment, 0, len(arcs))
	for i, a := range arcs {
		next := arcs[(i+1)%len(arcs)].start
		if i == len(arcs)-1 {
			next += geom.TwoPi
		}
		w := next - a.end
		if w <= 0 {
			continue
		}
		out = append(out, Segment{
			Bisector: geom.NormalizeAngle(a.end + w/2),
			Width:    w,
			Color:    Background,
		})
	}
	return out
}

func sortByBisector(segments []Segment) {
	slices.SortStableFunc(segments, func(a, b Segment) int {
		return cmp.Compare(a.Bisector, b.Bisector)
	})
}
