// Package render draws homing vector fields.
package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/snaphome/camera"
	"github.com/pthm-cable/snaphome/world"
)

// Layout places grid cells on a raster image, y up.
type Layout struct {
	Width, Height int
	CellPixels    float64
	Camera        *camera.Camera
}

// NewLayout sizes an image so every cell center of grid lies cellPixels
// apart, with margin pixels of padding.
func NewLayout(grid world.Grid, cellPixels float64, margin int) Layout {
	spanX := float64(grid.Width() - 1)
	spanY := float64(grid.Height() - 1)
	w := int(math.Ceil(spanX*cellPixels)) + 2*margin
	h := int(math.Ceil(spanY*cellPixels)) + 2*margin

	cx := float64(grid.MinX) + spanX/2
	cy := float64(grid.MinY) + spanY/2
	return Layout{
		Width:      w,
		Height:     h,
		CellPixels: cellPixels,
		Camera:     camera.New(float64(w), float64(h), cx, cy, cellPixels),
	}
}

// ToPixel converts a world position to image coordinates.
func (l Layout) ToPixel(p r2.Vec) r2.Vec {
	return l.Camera.WorldToScreen(p)
}

// Scale converts a world length to pixels.
func (l Layout) Scale(d float64) float64 {
	return d * l.Camera.Zoom
}
