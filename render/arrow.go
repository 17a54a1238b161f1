package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// arrowShape is an arrow pointing along +x, 34 units long, centered on the
// origin.
var arrowShape = [7]r2.Vec{
	{X: -17, Y: -1},
	{X: 6, Y: -1},
	{X: 5, Y: -3},
	{X: 17, Y: 0},
	{X: 5, Y: 3},
	{X: 6, Y: 1},
	{X: -17, Y: 1},
}

const arrowShapeLength = 34

// Arrow returns the arrow outline centered on the screen point center,
// pointing along the world direction dir and length pixels long. Screen y
// points down, so dir is mirrored in y.
func Arrow(center, dir r2.Vec, length float64) [7]r2.Vec {
	theta := -math.Atan2(dir.Y, dir.X)
	sin, cos := math.Sincos(theta)
	k := length / arrowShapeLength

	var out [7]r2.Vec
	for i, p := range arrowShape {
		out[i] = r2.Vec{
			X: center.X + k*(p.X*cos-p.Y*sin),
			Y: center.Y + k*(p.X*sin+p.Y*cos),
		}
	}
	return out
}

// ArrowTriangles splits an arrow outline into a shaft quad and a head.
func ArrowTriangles(a [7]r2.Vec) [][3]r2.Vec {
	return [][3]r2.Vec{
		{a[0], a[1], a[5]},
		{a[0], a[5], a[6]},
		{a[2], a[3], a[4]},
	}
}

// Fan splits a convex outline into triangles around its first vertex.
func Fan(points []r2.Vec) [][3]r2.Vec {
	if len(points) < 3 {
		return nil
	}
	out := make([][3]r2.Vec, 0, len(points)-2)
	for i := 1; i+1 < len(points); i++ {
		out = append(out, [3]r2.Vec{points[0], points[i], points[i+1]})
	}
	return out
}

// CounterClockwise returns t with its vertices ordered counter-clockwise as
// seen on a y-down screen, the winding raylib fills.
func CounterClockwise(t [3]r2.Vec) [3]r2.Vec {
	if r2.Cross(r2.Sub(t[1], t[0]), r2.Sub(t[2], t[0])) > 0 {
		t[1], t[2] = t[2], t[1]
	}
	return t
}
