package components

// Position is an obstacle's reference point in world units: a circle's
// center or a polygon's centroid.
type Position struct {
	X, Y float64
}
