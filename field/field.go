// Package field evaluates the homing vector at every cell of the grid.
package field

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/homing"
	"github.com/pthm-cable/snaphome/retina"
	"github.com/pthm-cable/snaphome/world"
)

// Status describes how a cell was evaluated.
type Status uint8

const (
	StatusEvaluated Status = iota
	StatusHome
	StatusSkipped // viewpoint inside an obstacle
	StatusFailed  // homing error, e.g. no match
)

func (s Status) String() string {
	switch s {
	case StatusEvaluated:
		return "evaluated"
	case StatusHome:
		return "home"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Cell is the result at one grid position.
type Cell struct {
	Position geom.IVec
	Vector   r2.Vec
	Status   Status

	// AngularError is the angle in radians between Vector and the true
	// direction home. NaN when undefined.
	AngularError float64

	Err error
}

// HasError reports whether the cell has a defined angular error.
func (c Cell) HasError() bool {
	return !math.IsNaN(c.AngularError)
}

// Summary aggregates a field.
type Summary struct {
	RunID     string
	Cells     int
	Evaluated int
	Home      int
	Skipped   int
	Failed    int

	// Over cells with a defined angular error, radians.
	Measured         int
	MeanAngularError float64
	StdAngularError  float64

	// Sum of defined errors divided by every cell of the grid, so cells
	// without an error count as zero.
	GridMeanAngularError float64
}

// Coverage is the fraction of cells with a defined angular error.
func (s Summary) Coverage() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.Measured) / float64(s.Cells)
}

// Field is a grid of homing vectors for one snapshot.
type Field struct {
	Grid    world.Grid
	Home    geom.IVec
	Params  homing.Params
	Cells   []Cell // row-major, see world.Grid.Index
	Summary Summary
}

// At returns the cell at p. ok is false when p is off the grid.
func (f *Field) At(p geom.IVec) (Cell, bool) {
	if !f.Grid.Contains(p) {
		return Cell{}, false
	}
	return f.Cells[f.Grid.Index(p)], true
}

// Options control field generation.
type Options struct {
	Workers   int // 0 = GOMAXPROCS
	ChunkRows int // grid rows per work item, minimum 1

	// FailFast aborts on the first homing error instead of marking the
	// cell failed. Cells inside obstacles are always skipped.
	FailFast bool

	Logger *slog.Logger
}

// Generate evaluates bee's homing vector at every cell of w's grid. Cells are
// evaluated concurrently; the bee is not moved.
func Generate(bee *homing.Bee, w *world.World, opts Options) (*Field, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.ChunkRows <= 0 {
		opts.ChunkRows = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	grid := w.Grid()
	// ECS queries are single-threaded, so take the occluders once.
	occluders := w.Occluders()
	home := bee.HomePosition()

	f := &Field{
		Grid:   grid,
		Home:   home,
		Params: bee.Engine().Params(),
		Cells:  make([]Cell, grid.Len()),
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for y0 := grid.MinY; y0 < grid.MaxY; y0 += opts.ChunkRows {
		y1 := min(y0+opts.ChunkRows, grid.MaxY)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				for x := grid.MinX; x < grid.MaxX; x++ {
					p := geom.IVec{X: x, Y: y}
					cell := evaluate(bee, p, occluders)
					if cell.Err != nil {
						if opts.FailFast && cell.Status == StatusFailed {
							return fmt.Errorf("cell %v: %w", p, cell.Err)
						}
						logger.Debug("cell not evaluated", "pos", p.String(), "status", cell.Status.String(), "err", cell.Err)
					}
					f.Cells[grid.Index(p)] = cell
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.Summary = summarize(f.Cells)
	return f, nil
}

func evaluate(bee *homing.Bee, p geom.IVec, occluders []retina.Occluder) Cell {
	cell := Cell{Position: p, AngularError: math.NaN()}

	v, err := bee.HomeFrom(p, occluders)
	switch {
	case errors.Is(err, retina.ErrInsideObstacle):
		cell.Status = StatusSkipped
		cell.Err = err
		return cell
	case err != nil:
		cell.Status = StatusFailed
		cell.Err = err
		return cell
	}

	cell.Vector = v
	if p == bee.HomePosition() {
		cell.Status = StatusHome
		return cell
	}
	cell.Status = StatusEvaluated
	if a, ok := AngularError(p, bee.HomePosition(), v); ok {
		cell.AngularError = a
	}
	return cell
}

// AngularError returns the angle between v and the direction from p to
// home. ok is false when p is home or v is zero.
func AngularError(p, home geom.IVec, v r2.Vec) (float64, bool) {
	return geom.AngleBetween(r2.Sub(home.Vec(), p.Vec()), v)
}

func summarize(cells []Cell) Summary {
	s := Summary{
		RunID: uuid.New().String(),
		Cells: len(cells),
	}
	errs := make([]float64, 0, len(cells))
	for _, c := range cells {
		switch c.Status {
		case StatusEvaluated:
			s.Evaluated++
		case StatusHome:
			s.Home++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
		if c.HasError() {
			errs = append(errs, c.AngularError)
		}
	}
	s.Measured = len(errs)
	if len(cells) > 0 {
		s.GridMeanAngularError = floats.Sum(errs) / float64(len(cells))
	}
	switch len(errs) {
	case 0:
		s.MeanAngularError = math.NaN()
		s.StdAngularError = math.NaN()
	case 1:
		s.MeanAngularError = errs[0]
	default:
		s.MeanAngularError, s.StdAngularError = stat.MeanStdDev(errs, nil)
	}
	return s
}
