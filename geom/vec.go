package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// zeroEpsilon is the length below which a vector counts as zero.
const zeroEpsilon = 1e-9

// IVec is an integer grid position. Viewpoints are always on the grid.
type IVec struct {
	X, Y int
}

// Vec converts the grid position to a real vector.
func (p IVec) Vec() r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

func (p IVec) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Unit returns v scaled to length 1. ok is false for a zero-length vector,
// in which case the zero vector is returned instead of NaN components.
func Unit(v r2.Vec) (u r2.Vec, ok bool) {
	n := r2.Norm(v)
	if n < zeroEpsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return r2.Vec{}, false
	}
	return r2.Scale(1/n, v), true
}

// Polar returns the unit vector pointing at angle theta.
func Polar(theta float64) r2.Vec {
	sin, cos := math.Sincos(theta)
	return r2.Vec{X: cos, Y: sin}
}

// IsZero reports whether v is the zero-vector sentinel.
func IsZero(v r2.Vec) bool {
	return r2.Norm(v) < zeroEpsilon
}

// IsFinite reports whether both components are finite numbers.
func IsFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// AngleBetween returns the unsigned angle between a and b in [0, Pi].
// ok is false when either vector has zero length.
func AngleBetween(a, b r2.Vec) (float64, bool) {
	na, nb := r2.Norm(a), r2.Norm(b)
	if na < zeroEpsilon || nb < zeroEpsilon {
		return 0, false
	}
	c := r2.Dot(a, b) / (na * nb)
	// Rounding can push the cosine slightly outside [-1, 1].
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c), true
}
