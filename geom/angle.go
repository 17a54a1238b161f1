// Package geom provides the vector and angle primitives shared by the
// image builder and the homing engine.
package geom

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// SignedAngularDistance returns the signed minimal difference from a to b,
// in (-Pi, Pi]. Positive means b lies counter-clockwise of a.
//
// Every comparison between two angles goes through this function; raw
// angles are never compared with < or > because of the 0/2Pi seam.
func SignedAngularDistance(a, b float64) float64 {
	d := b - a
	return math.Atan2(math.Sin(d), math.Cos(d))
}

// AbsAngularDistance is the unsigned circular distance between a and b.
func AbsAngularDistance(a, b float64) float64 {
	return math.Abs(SignedAngularDistance(a, b))
}

// NormalizeAngle wraps an angle to [0, 2*Pi).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// math.Mod of a tiny negative value can round up to exactly 2*Pi.
	if a >= TwoPi {
		a -= TwoPi
	}
	return a
}

// Heading returns the angle of v in [0, 2*Pi).
func Heading(x, y float64) float64 {
	return NormalizeAngle(math.Atan2(y, x))
}
