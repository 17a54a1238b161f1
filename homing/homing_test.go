package homing

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/obstacle"
	"github.com/pthm-cable/snaphome/retina"
)

func threeCircles() []retina.Occluder {
	return []retina.Occluder{
		obstacle.Circle{Center: r2.Vec{X: 3.5, Y: 2}, Radius: 0.5},
		obstacle.Circle{Center: r2.Vec{X: 3.5, Y: -2}, Radius: 0.5},
		obstacle.Circle{Center: r2.Vec{X: 0, Y: -4}, Radius: 0.5},
	}
}

func seg(bisector, width float64, c retina.Color) retina.Segment {
	return retina.Segment{Bisector: bisector, Width: width, Color: c}
}

func vecClose(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestHomeStability(t *testing.T) {
	occluders := threeCircles()
	bee, err := NewBee(geom.IVec{}, occluders, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	current, err := retina.Build(bee.Position(), occluders)
	if err != nil {
		t.Fatal(err)
	}
	if !bee.Snapshot().Equal(current, 1e-12) {
		t.Fatalf("retina at home differs from snapshot:\n%v\n%v", bee.Snapshot().Segments, current.Segments)
	}

	pairs, err := Match(bee.Snapshot(), current)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pairs {
		if d := p.Snapshot.Dist(p.Retina); d != 0 {
			t.Errorf("pair %d distance = %v, want 0", i, d)
		}
	}

	v, err := bee.Home(occluders)
	if err != nil {
		t.Fatal(err)
	}
	if !geom.IsZero(v) {
		t.Errorf("homing vector at home = %v, want zero", v)
	}
}

func TestHomeEndToEnd(t *testing.T) {
	occluders := threeCircles()
	bee, err := NewBee(geom.IVec{}, occluders, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	bee.SetPosition(geom.IVec{X: 5, Y: -5})

	v, err := bee.Home(occluders)
	if err != nil {
		t.Fatal(err)
	}
	if !geom.IsFinite(v) {
		t.Fatalf("homing vector = %v, want finite", v)
	}
	if math.Abs(r2.Norm(v)-1) > 1e-9 {
		t.Errorf("|homing vector| = %v, want 1", r2.Norm(v))
	}

	from, err := bee.HomeFrom(geom.IVec{X: 5, Y: -5}, occluders)
	if err != nil {
		t.Fatal(err)
	}
	if from != v {
		t.Errorf("HomeFrom = %v, Home = %v", from, v)
	}
	if bee.Position() != (geom.IVec{X: 5, Y: -5}) {
		t.Errorf("position = %v after HomeFrom", bee.Position())
	}
}

func TestHomeWholeGrid(t *testing.T) {
	occluders := threeCircles()
	bee, err := NewBee(geom.IVec{}, occluders, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	for x := -7; x < 8; x++ {
		for y := -7; y < 8; y++ {
			p := geom.IVec{X: x, Y: y}
			v, err := bee.HomeFrom(p, occluders)
			if errors.Is(err, retina.ErrInsideObstacle) {
				continue
			}
			if err != nil {
				t.Fatalf("HomeFrom(%v): %v", p, err)
			}
			if !geom.IsFinite(v) {
				t.Errorf("HomeFrom(%v) = %v, not finite", p, v)
			}
			if n := r2.Norm(v); !geom.IsZero(v) && math.Abs(n-1) > 1e-9 {
				t.Errorf("|HomeFrom(%v)| = %v, want 1 or 0", p, n)
			}
		}
	}
}

func TestNewBeeInsideObstacle(t *testing.T) {
	_, err := NewBee(geom.IVec{X: 0, Y: -4}, threeCircles(), DefaultParams())
	if !errors.Is(err, retina.ErrInsideObstacle) {
		t.Errorf("error = %v, want ErrInsideObstacle", err)
	}
}

func TestMatchNearestSameColor(t *testing.T) {
	snapshot := retina.Image{Segments: []retina.Segment{
		seg(1, 0.4, retina.Occluded),
		seg(4, 5.8, retina.Background),
	}}
	current := retina.Image{Segments: []retina.Segment{
		seg(0.2, 0.3, retina.Occluded),
		seg(1.1, 0.1, retina.Background), // nearer but wrong color
		seg(1.3, 0.5, retina.Occluded),
		seg(6.2, 0.3, retina.Background),
	}}

	pairs, err := Match(snapshot, current)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0].Retina.Bisector != 1.3 {
		t.Errorf("occluded match = %v, want bisector 1.3", pairs[0].Retina)
	}
	// 4 -> 1.1 is 2.9 rad, 4 -> 6.2 is 2.2 rad.
	if pairs[1].Retina.Bisector != 6.2 {
		t.Errorf("background match = %v, want bisector 6.2", pairs[1].Retina)
	}
}

func TestMatchTieFirstWins(t *testing.T) {
	snapshot := retina.Image{Segments: []retina.Segment{seg(1, 0.2, retina.Occluded)}}
	current := retina.Image{Segments: []retina.Segment{
		seg(0.5, 0.2, retina.Occluded),
		seg(1.5, 0.3, retina.Occluded),
	}}
	pairs, err := Match(snapshot, current)
	if err != nil {
		t.Fatal(err)
	}
	if pairs[0].Retina.Bisector != 0.5 {
		t.Errorf("tie resolved to %v, want first segment", pairs[0].Retina)
	}
}

func TestMatchNoCandidate(t *testing.T) {
	snapshot := retina.Image{Segments: []retina.Segment{
		seg(1, 1, retina.Occluded),
		seg(4, 2*math.Pi-1, retina.Background),
	}}
	current := retina.Image{Segments: []retina.Segment{seg(math.Pi, 2*math.Pi, retina.Occluded)}}

	if _, err := Match(snapshot, current); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Match error = %v, want ErrNoMatch", err)
	}
	if _, err := NewEngine(DefaultParams()).Compute(snapshot, current); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Compute error = %v, want ErrNoMatch", err)
	}
}

func TestTurning(t *testing.T) {
	e := NewEngine(DefaultParams())
	tests := []struct {
		name string
		pair Pair
		want r2.Vec
	}{
		{
			// Snapshot counter-clockwise of retina: clockwise tangent.
			name: "snapshot ahead",
			pair: Pair{Snapshot: seg(2, 0.5, retina.Occluded), Retina: seg(math.Pi/2, 0.5, retina.Occluded)},
			want: r2.Vec{X: 1, Y: 0},
		},
		{
			name: "snapshot behind",
			pair: Pair{Snapshot: seg(1, 0.5, retina.Occluded), Retina: seg(math.Pi/2, 0.5, retina.Occluded)},
			want: r2.Vec{X: -1, Y: 0},
		},
		{
			// Same offsets as "snapshot ahead", but the retina segment is
			// wider than Pi.
			name: "wide retina flips",
			pair: Pair{Snapshot: seg(2, 4, retina.Background), Retina: seg(math.Pi/2, 4, retina.Background)},
			want: r2.Vec{X: -1, Y: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Turning([]Pair{tt.pair})
			if !vecClose(got, tt.want, 1e-12) {
				t.Errorf("Turning = %v, want %v", got, tt.want)
			}
		})
	}

	mirrored := DefaultParams()
	mirrored.TurningSign = -1
	pair := []Pair{tests[1].pair}
	got := NewEngine(mirrored).Turning(pair)
	if !vecClose(got, r2.Scale(-1, e.Turning(pair)), 1e-12) {
		t.Errorf("mirrored Turning = %v, want opposite of %v", got, e.Turning(pair))
	}
}

func TestPositioning(t *testing.T) {
	e := NewEngine(DefaultParams())
	shrunk := Pair{Snapshot: seg(0, 0.6, retina.Occluded), Retina: seg(0, 0.3, retina.Occluded)}
	grown := Pair{Snapshot: seg(math.Pi/2, 0.3, retina.Occluded), Retina: seg(math.Pi/2, 0.6, retina.Occluded)}

	if got := e.Positioning([]Pair{shrunk}); !vecClose(got, r2.Vec{X: 1}, 1e-12) {
		t.Errorf("shrunk object: Positioning = %v, want towards it", got)
	}
	if got := e.Positioning([]Pair{grown}); !vecClose(got, r2.Vec{Y: -1}, 1e-12) {
		t.Errorf("grown object: Positioning = %v, want away from it", got)
	}
	if got := e.Positioning([]Pair{shrunk, grown}); !vecClose(got, r2.Vec{X: 1, Y: -1}, 1e-12) {
		t.Errorf("sum: Positioning = %v, want (1, -1)", got)
	}
}

func TestComputeWeights(t *testing.T) {
	snapshot := retina.Image{Segments: []retina.Segment{
		seg(0, 0.6, retina.Occluded),
		seg(math.Pi, 2*math.Pi-0.6, retina.Background),
	}}
	current := retina.Image{Segments: []retina.Segment{
		seg(0, 0.3, retina.Occluded),
		seg(math.Pi, 2*math.Pi-0.3, retina.Background),
	}}

	// Positioning only.
	params := DefaultParams()
	params.TurningWeight = 0
	v, err := NewEngine(params).Compute(snapshot, current)
	if err != nil {
		t.Fatal(err)
	}
	// Occluded shrank: +x. Background grew: pushes away from Pi, also +x.
	if !vecClose(v, r2.Vec{X: 1}, 1e-12) {
		t.Errorf("Compute = %v, want (1, 0)", v)
	}

	// All weights zero cancel to the zero sentinel rather than NaN.
	params.PositioningWeight = 0
	v, err = NewEngine(params).Compute(snapshot, current)
	if err != nil {
		t.Fatal(err)
	}
	if !geom.IsZero(v) || !geom.IsFinite(v) {
		t.Errorf("Compute with zero weights = %v, want zero sentinel", v)
	}
}

func TestParamsDefaults(t *testing.T) {
	p := DefaultParams()
	if p.PositioningWeight != 3 || p.TurningWeight != 1 || p.TurningSign != 1 {
		t.Errorf("DefaultParams = %+v", p)
	}
}
