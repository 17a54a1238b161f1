package homing

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/retina"
)

// Bee remembers the view from its home and steers back towards it.
type Bee struct {
	snapshot retina.Image
	home     geom.IVec
	position geom.IVec
	engine   *Engine
}

// NewBee takes the snapshot at home. The snapshot is never recomputed.
func NewBee(home geom.IVec, occluders []retina.Occluder, params Params) (*Bee, error) {
	snapshot, err := retina.Build(home, occluders)
	if err != nil {
		return nil, fmt.Errorf("taking snapshot: %w", err)
	}
	return &Bee{
		snapshot: snapshot,
		home:     home,
		position: home,
		engine:   NewEngine(params),
	}, nil
}

// Snapshot returns a copy of the stored snapshot.
func (b *Bee) Snapshot() retina.Image {
	return b.snapshot.Clone()
}

// HomePosition returns where the snapshot was taken.
func (b *Bee) HomePosition() geom.IVec {
	return b.home
}

// Position returns the bee's current position.
func (b *Bee) Position() geom.IVec {
	return b.position
}

// SetPosition moves the bee.
func (b *Bee) SetPosition(p geom.IVec) {
	b.position = p
}

// Engine returns the engine the bee steers with.
func (b *Bee) Engine() *Engine {
	return b.engine
}

// Home returns the homing vector at the bee's current position.
func (b *Bee) Home(occluders []retina.Occluder) (r2.Vec, error) {
	return b.HomeFrom(b.position, occluders)
}

// HomeFrom returns the homing vector the bee would compute at p without
// moving it, so independent positions can be evaluated concurrently.
func (b *Bee) HomeFrom(p geom.IVec, occluders []retina.Occluder) (r2.Vec, error) {
	current, err := retina.Build(p, occluders)
	if err != nil {
		return r2.Vec{}, err
	}
	return b.engine.Compute(b.snapshot, current)
}
