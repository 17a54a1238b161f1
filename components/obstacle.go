package components

import "github.com/pthm-cable/snaphome/retina"

// Shape holds the occluding outline of an obstacle entity.
type Shape struct {
	Occluder retina.Occluder
}

// Obstacle bundles identity for an obstacle entity. Order is the insertion
// index and fixes iteration order independent of ECS storage.
type Obstacle struct {
	Name  string
	Order int
}
