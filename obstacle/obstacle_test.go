package obstacle

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/retina"
)

func TestCircleProject(t *testing.T) {
	c := Circle{Center: r2.Vec{X: -1, Y: 1}, Radius: 0.5}

	s, ok := c.Project(geom.IVec{})
	if !ok {
		t.Fatal("Project from origin reported no occlusion")
	}
	if math.Abs(s.Bisector-3*math.Pi/4) > 0.01 {
		t.Errorf("bisector = %v, want 3Pi/4", s.Bisector)
	}
	wantWidth := 2 * math.Asin(0.5/math.Sqrt2)
	if math.Abs(s.Width-wantWidth) > 1e-12 {
		t.Errorf("width = %v, want %v", s.Width, wantWidth)
	}
	if s.Color != retina.Occluded {
		t.Errorf("color = %v, want occluded", s.Color)
	}
}

func TestCircleBisectorRange(t *testing.T) {
	// Below the x axis atan2 is negative; the bisector must still be in [0, 2Pi).
	c := Circle{Center: r2.Vec{X: 0, Y: -4}, Radius: 0.5}
	s, ok := c.Project(geom.IVec{})
	if !ok {
		t.Fatal("no occlusion")
	}
	if math.Abs(s.Bisector-3*math.Pi/2) > 1e-12 {
		t.Errorf("bisector = %v, want 3Pi/2", s.Bisector)
	}
}

func TestCircleInside(t *testing.T) {
	tests := []struct {
		name   string
		c      Circle
		p      geom.IVec
		inside bool
	}{
		{"center", Circle{Center: r2.Vec{X: 1, Y: 1}, Radius: 0.5}, geom.IVec{X: 1, Y: 1}, true},
		{"on rim", Circle{Center: r2.Vec{X: 0, Y: 0}, Radius: 1}, geom.IVec{X: 1, Y: 0}, true},
		{"outside", Circle{Center: r2.Vec{X: 3.5, Y: 2}, Radius: 0.5}, geom.IVec{X: 0, Y: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Contains(tt.p); got != tt.inside {
				t.Errorf("Contains = %v, want %v", got, tt.inside)
			}
			s, ok := tt.c.Project(tt.p)
			if ok == tt.inside {
				t.Errorf("Project ok = %v with inside = %v", ok, tt.inside)
			}
			if ok && (math.IsNaN(s.Width) || s.Width <= 0) {
				t.Errorf("degenerate segment %v", s)
			}
		})
	}
}

func TestNewCircle(t *testing.T) {
	if _, err := NewCircle(r2.Vec{}, 0); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("NewCircle(r=0) error = %v, want ErrInvalidRadius", err)
	}
	if _, err := NewCircle(r2.Vec{}, math.NaN()); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("NewCircle(r=NaN) error = %v, want ErrInvalidRadius", err)
	}
	if _, err := NewCircle(r2.Vec{X: 1}, 0.5); err != nil {
		t.Errorf("NewCircle(r=0.5) error = %v", err)
	}
}

func square(cx, cy, half float64) []r2.Vec {
	return []r2.Vec{
		{X: cx - half, Y: cy - half},
		{X: cx + half, Y: cy - half},
		{X: cx + half, Y: cy + half},
		{X: cx - half, Y: cy + half},
	}
}

func TestNewPolygon(t *testing.T) {
	sq := square(0, 0, 1)
	tests := []struct {
		name     string
		vertices []r2.Vec
		want     error
	}{
		{"two vertices", sq[:2], ErrTooFewVertices},
		{"concave dart", []r2.Vec{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 0.5}, {X: -2, Y: 1}}, ErrNotConvex},
		{"collinear", []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, ErrNotConvex},
		{"self-intersecting", []r2.Vec{{X: 0, Y: 10}, {X: 6, Y: -8}, {X: -9.5, Y: 3}, {X: 9.5, Y: 3}, {X: -6, Y: -8}}, ErrNotConvex},
		{"repeated vertex", []r2.Vec{sq[0], sq[1], sq[1], sq[2], sq[3]}, ErrNotConvex},
		{"ccw square", sq, nil},
		{"cw square", []r2.Vec{sq[3], sq[2], sq[1], sq[0]}, nil},
		{"square with collinear midpoint", []r2.Vec{sq[0], {X: 0, Y: -1}, sq[1], sq[2], sq[3]}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolygon(tt.vertices)
			if tt.want == nil {
				if err != nil {
					t.Errorf("NewPolygon() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("NewPolygon() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPolygonProject(t *testing.T) {
	// A square of side 2 centred at (3, 0) seen from the origin: the near
	// corners sit at atan(1/2) above and below the x axis.
	p, err := NewPolygon(square(3, 0, 1))
	if err != nil {
		t.Fatal(err)
	}

	s, ok := p.Project(geom.IVec{})
	if !ok {
		t.Fatal("no occlusion")
	}
	if geom.AbsAngularDistance(s.Bisector, 0) > 1e-12 {
		t.Errorf("bisector = %v, want 0", s.Bisector)
	}
	wantWidth := 2 * math.Atan2(1, 2)
	if math.Abs(s.Width-wantWidth) > 1e-12 {
		t.Errorf("width = %v, want %v", s.Width, wantWidth)
	}
}

func TestPolygonContains(t *testing.T) {
	p, err := NewPolygon(square(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		p    geom.IVec
		want bool
	}{
		{geom.IVec{X: 0, Y: 0}, true},
		{geom.IVec{X: 1, Y: 0}, true}, // on edge
		{geom.IVec{X: 1, Y: 1}, true}, // on corner
		{geom.IVec{X: 2, Y: 0}, false},
		{geom.IVec{X: -3, Y: 5}, false},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
		if _, ok := p.Project(tt.p); ok == tt.want {
			t.Errorf("Project(%v) ok = %v, inside = %v", tt.p, ok, tt.want)
		}
	}
}
