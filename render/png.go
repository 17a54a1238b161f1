package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/field"
	"github.com/pthm-cable/snaphome/geom"
	"github.com/pthm-cable/snaphome/obstacle"
	"github.com/pthm-cable/snaphome/world"
)

var ErrExport = errors.New("exporting image failed")

// Palette for field images.
var (
	ColorBackground = rl.White
	ColorObstacle   = rl.NewColor(120, 120, 120, 255)
	ColorArrow      = rl.Black
	ColorSkipped    = rl.NewColor(200, 200, 200, 255)
	ColorFailed     = rl.NewColor(230, 41, 55, 255)
	ColorHome       = rl.NewColor(230, 41, 55, 255)
	ColorCaption    = rl.DarkGray
)

// Options control PNG output.
type Options struct {
	CellPixels float64
	Margin     int
	Caption    bool
}

// WritePNG rasterises f and the obstacles to a PNG file at path.
func WritePNG(path string, f *field.Field, obstacles []world.Obstacle, opts Options) error {
	layout := NewLayout(f.Grid, opts.CellPixels, opts.Margin)

	img := rl.GenImageColor(layout.Width, layout.Height, ColorBackground)
	defer rl.UnloadImage(img)

	for _, o := range obstacles {
		drawObstacle(img, layout, o)
	}

	arrowLen := 0.85 * layout.CellPixels
	for _, c := range f.Cells {
		center := layout.ToPixel(c.Position.Vec())
		switch c.Status {
		case field.StatusEvaluated:
			if geom.IsZero(c.Vector) {
				continue
			}
			for _, t := range ArrowTriangles(Arrow(center, c.Vector, arrowLen)) {
				fillTriangle(img, t, ColorArrow)
			}
		case field.StatusSkipped:
			rl.ImageDrawCircle(img, int32(center.X), int32(center.Y), 2, ColorSkipped)
		case field.StatusFailed:
			drawCross(img, center, 0.15*layout.CellPixels, ColorFailed)
		}
	}

	drawCross(img, layout.ToPixel(f.Home.Vec()), 0.3*layout.CellPixels, ColorHome)

	if opts.Caption {
		rl.ImageDrawText(img, int32(opts.Margin/2), int32(opts.Margin/4), Caption(f), 10, ColorCaption)
	}

	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("%s: %w", path, ErrExport)
	}
	return nil
}

// Caption summarises a field in one line.
func Caption(f *field.Field) string {
	s := f.Summary
	mean := "n/a"
	if !math.IsNaN(s.MeanAngularError) {
		mean = fmt.Sprintf("%.1f deg", s.MeanAngularError*180/math.Pi)
	}
	return fmt.Sprintf("home %v  wt %.2g  wp %.2g  mean error %s  (%d measured, %d skipped)",
		f.Home, f.Params.TurningWeight, f.Params.PositioningWeight, mean, s.Measured, s.Skipped)
}

func drawObstacle(img *rl.Image, layout Layout, o world.Obstacle) {
	switch s := o.Occluder.(type) {
	case obstacle.Circle:
		c := layout.ToPixel(s.Center)
		r := int32(math.Round(layout.Scale(s.Radius)))
		rl.ImageDrawCircle(img, int32(math.Round(c.X)), int32(math.Round(c.Y)), r, ColorObstacle)
	case *obstacle.Polygon:
		vs := s.Vertices()
		pts := make([]r2.Vec, len(vs))
		for i, v := range vs {
			pts[i] = layout.ToPixel(v)
		}
		for _, t := range Fan(pts) {
			fillTriangle(img, t, ColorObstacle)
		}
	}
}

// fillTriangle draws t in both windings; ImageDrawTriangle skips one of them.
func fillTriangle(img *rl.Image, t [3]r2.Vec, col color.RGBA) {
	t = CounterClockwise(t)
	rl.ImageDrawTriangle(img, toRL(t[0]), toRL(t[1]), toRL(t[2]), col)
	rl.ImageDrawTriangle(img, toRL(t[0]), toRL(t[2]), toRL(t[1]), col)
}

func drawCross(img *rl.Image, c r2.Vec, half float64, col color.RGBA) {
	x0, x1 := int32(c.X-half), int32(c.X+half)
	y0, y1 := int32(c.Y-half), int32(c.Y+half)
	rl.ImageDrawLine(img, x0, y0, x1, y1, col)
	rl.ImageDrawLine(img, x0, y1, x1, y0, col)
}

func toRL(v r2.Vec) rl.Vector2 {
	return rl.NewVector2(float32(v.X), float32(v.Y))
}
