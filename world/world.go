// Package world holds the obstacles and the traversable grid. Obstacles are
// stored as ECS entities; the homing core only ever sees them as an ordered
// slice of occluders.
package world

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/components"
	"github.com/pthm-cable/snaphome/config"
	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/obstacle"
	"github.com/pthm-cable/snaphome/retina"
)

var (
	ErrEmptyGrid    = errors.New("grid has no cells")
	ErrUnknownShape = errors.New("unknown obstacle shape")
)

// Grid is a rectangle of integer positions. Minima are inclusive, maxima
// exclusive.
type Grid struct {
	MinX, MaxX int
	MinY, MaxY int
}

// Width returns the number of columns.
func (g Grid) Width() int { return g.MaxX - g.MinX }

// Height returns the number of rows.
func (g Grid) Height() int { return g.MaxY - g.MinY }

// Len returns the number of cells.
func (g Grid) Len() int { return g.Width() * g.Height() }

// Contains reports whether p is on the grid.
func (g Grid) Contains(p geom.IVec) bool {
	return p.X >= g.MinX && p.X < g.MaxX && p.Y >= g.MinY && p.Y < g.MaxY
}

// Index returns the row-major slot of p, rows ascending in y.
func (g Grid) Index(p geom.IVec) int {
	return (p.Y-g.MinY)*g.Width() + (p.X - g.MinX)
}

// At returns the position stored in slot i.
func (g Grid) At(i int) geom.IVec {
	return geom.IVec{X: g.MinX + i%g.Width(), Y: g.MinY + i/g.Width()}
}

// Obstacle is a read-only view of one obstacle entity.
type Obstacle struct {
	Name     string
	Position r2.Vec
	Occluder retina.Occluder
}

// World holds obstacle entities and the grid.
type World struct {
	ecs *ecs.World

	obstacleMapper *ecs.Map3[components.Position, components.Shape, components.Obstacle]
	obstacleFilter *ecs.Filter3[components.Position, components.Shape, components.Obstacle]

	grid  Grid
	count int
}

// New creates an empty world over grid.
func New(grid Grid) (*World, error) {
	if grid.Width() <= 0 || grid.Height() <= 0 {
		return nil, fmt.Errorf("grid [%d,%d)x[%d,%d): %w", grid.MinX, grid.MaxX, grid.MinY, grid.MaxY, ErrEmptyGrid)
	}
	w := ecs.NewWorld()
	return &World{
		ecs:            w,
		obstacleMapper: ecs.NewMap3[components.Position, components.Shape, components.Obstacle](w),
		obstacleFilter: ecs.NewFilter3[components.Position, components.Shape, components.Obstacle](w),
		grid:           grid,
	}, nil
}

// FromConfig builds the world described by the world config section.
func FromConfig(cfg config.WorldConfig) (*World, error) {
	w, err := New(Grid{
		MinX: cfg.Grid.MinX,
		MaxX: cfg.Grid.MaxX,
		MinY: cfg.Grid.MinY,
		MaxY: cfg.Grid.MaxY,
	})
	if err != nil {
		return nil, err
	}
	for i, oc := range cfg.Obstacles {
		o, err := occluderFromConfig(oc)
		if err != nil {
			return nil, fmt.Errorf("obstacle %d (%s): %w", i, oc.Name, err)
		}
		w.Add(oc.Name, o)
	}
	return w, nil
}

func occluderFromConfig(oc config.ObstacleConfig) (retina.Occluder, error) {
	switch oc.Shape {
	case "circle", "":
		return obstacle.NewCircle(r2.Vec{X: oc.X, Y: oc.Y}, oc.Radius)
	case "polygon":
		vertices := make([]r2.Vec, len(oc.Vertices))
		for i, v := range oc.Vertices {
			vertices[i] = r2.Vec{X: v.X, Y: v.Y}
		}
		return obstacle.NewPolygon(vertices)
	default:
		return nil, fmt.Errorf("%q: %w", oc.Shape, ErrUnknownShape)
	}
}

// Add creates an obstacle entity. Obstacles keep the order they were added in.
func (w *World) Add(name string, o retina.Occluder) ecs.Entity {
	pos := components.Position{}
	switch s := o.(type) {
	case obstacle.Circle:
		pos = components.Position{X: s.Center.X, Y: s.Center.Y}
	case *obstacle.Polygon:
		c := s.Centroid()
		pos = components.Position{X: c.X, Y: c.Y}
	}
	shape := components.Shape{Occluder: o}
	meta := components.Obstacle{Name: name, Order: w.count}
	w.count++
	return w.obstacleMapper.NewEntity(&pos, &shape, &meta)
}

// Grid returns the traversable grid.
func (w *World) Grid() Grid {
	return w.grid
}

// Len returns the number of obstacles.
func (w *World) Len() int {
	return w.count
}

// Obstacles returns all obstacles in insertion order.
//
// Queries are not safe for concurrent use. Callers that fan out across
// goroutines take the slice once and share it.
func (w *World) Obstacles() []Obstacle {
	type ordered struct {
		order int
		obs   Obstacle
	}
	list := make([]ordered, 0, w.count)

	query := w.obstacleFilter.Query()
	for query.Next() {
		pos, shape, meta := query.Get()
		list = append(list, ordered{
			order: meta.Order,
			obs: Obstacle{
				Name:     meta.Name,
				Position: r2.Vec{X: pos.X, Y: pos.Y},
				Occluder: shape.Occluder,
			},
		})
	}

	slices.SortFunc(list, func(a, b ordered) int { return a.order - b.order })

	out := make([]Obstacle, len(list))
	for i, o := range list {
		out[i] = o.obs
	}
	return out
}

// Occluders returns the obstacles' occluders in insertion order.
func (w *World) Occluders() []retina.Occluder {
	obs := w.Obstacles()
	out := make([]retina.Occluder, len(obs))
	for i, o := range obs {
		out[i] = o.Occluder
	}
	return out
}
