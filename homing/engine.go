// Package homing derives a steering vector from the difference between a
// stored snapshot and the image currently on the retina.
package homing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/retina"
)

// ErrNoMatch is returned when the retina has no segment of a color present
// in the snapshot.
var ErrNoMatch = errors.New("no matching segment")

// Pair is a snapshot segment and the retina segment it was matched to.
type Pair struct {
	Snapshot retina.Segment
	Retina   retina.Segment
}

// Engine computes homing vectors with a fixed set of parameters. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	params Params
}

// NewEngine returns an engine using params.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Match pairs every snapshot segment with the retina segment of the same
// color whose bisector is nearest on the circle. On ties the first retina
// segment in image order wins. Retina segments may be used more than once
// or not at all.
func Match(snapshot, current retina.Image) ([]Pair, error) {
	pairs := make([]Pair, 0, len(snapshot.Segments))
	for i, s := range snapshot.Segments {
		best := -1
		bestDist := math.Inf(1)
		for j, r := range current.Segments {
			if r.Color != s.Color {
				continue
			}
			if d := math.Abs(s.Dist(r)); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("snapshot segment %d (%v): %w", i, s.Color, ErrNoMatch)
		}
		pairs = append(pairs, Pair{Snapshot: s, Retina: current.Segments[best]})
	}
	return pairs, nil
}

// Turning sums the unit bearing corrections of all pairs. Each is the
// tangent at the retina bisector, pointing clockwise when the snapshot
// partner lies counter-clockwise of the retina segment (or exactly on it)
// and counter-clockwise otherwise. A retina segment wider than Pi inverts
// the direction.
func (e *Engine) Turning(pairs []Pair) r2.Vec {
	var sum r2.Vec
	for _, p := range pairs {
		sign := 1.0
		if p.Retina.Dist(p.Snapshot) < 0 {
			sign = -1
		}
		if p.Retina.Width > math.Pi {
			sign = -sign
		}
		sign *= e.params.TurningSign
		sum = r2.Add(sum, r2.Scale(sign, geom.Polar(p.Retina.Bisector-math.Pi/2)))
	}
	return sum
}

// Positioning sums the unit range corrections of all pairs. A segment that
// shrank since the snapshot pulls towards its bisector, one that grew
// pushes away from it.
func (e *Engine) Positioning(pairs []Pair) r2.Vec {
	var sum r2.Vec
	for _, p := range pairs {
		sign := -1.0
		if p.Snapshot.Width > p.Retina.Width {
			sign = 1
		}
		sum = r2.Add(sum, r2.Scale(sign, geom.Polar(p.Retina.Bisector)))
	}
	return sum
}

// Compute returns the unit homing vector for the current image.
//
// The zero vector means no correction: either the two images are identical
// (the bee is home) or the weighted terms cancel exactly. It is never NaN.
func (e *Engine) Compute(snapshot, current retina.Image) (r2.Vec, error) {
	if snapshot.Equal(current, e.params.HomeTolerance) {
		return r2.Vec{}, nil
	}

	pairs, err := Match(snapshot, current)
	if err != nil {
		return r2.Vec{}, err
	}

	v := r2.Add(
		r2.Scale(e.params.TurningWeight, e.Turning(pairs)),
		r2.Scale(e.params.PositioningWeight, e.Positioning(pairs)),
	)
	u, _ := geom.Unit(v)
	return u, nil
}
