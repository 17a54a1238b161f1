// Package camera maps world coordinates (y up) to screen pixels (y down).
package camera

import "gonum.org/v1/gonum/spatial/r2"

// Camera controls the viewport into the world.
// Supports pan and zoom.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float64

	// Zoom is pixels per world unit
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinZoom, MaxZoom float64

	// Position and zoom restored by Reset
	homeX, homeY, homeZoom float64
}

// New creates a camera centered on (x, y) at the given zoom.
func New(viewportW, viewportH, x, y, zoom float64) *Camera {
	return &Camera{
		X:         x,
		Y:         y,
		Zoom:      zoom,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   zoom / 4,
		MaxZoom:   zoom * 4,
		homeX:     x,
		homeY:     y,
		homeZoom:  zoom,
	}
}

// Fit creates a camera showing the world rectangle [minX,maxX]x[minY,maxY]
// with margin pixels of padding on every side.
func Fit(viewportW, viewportH, minX, minY, maxX, maxY, margin float64) *Camera {
	zoom := 1.0
	if w := maxX - minX; w > 0 {
		zoom = (viewportW - 2*margin) / w
	}
	if h := maxY - minY; h > 0 {
		zoom = min(zoom, (viewportH-2*margin)/h)
	}
	return New(viewportW, viewportH, (minX+maxX)/2, (minY+maxY)/2, zoom)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: c.ViewportW/2 + (p.X-c.X)*c.Zoom,
		Y: c.ViewportH/2 - (p.Y-c.Y)*c.Zoom,
	}
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(s r2.Vec) r2.Vec {
	return r2.Vec{
		X: c.X + (s.X-c.ViewportW/2)/c.Zoom,
		Y: c.Y - (s.Y-c.ViewportH/2)/c.Zoom,
	}
}

// IsVisible returns true if a circle at p with given radius could be
// visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return abs(p.X-c.X) <= halfW && abs(p.Y-c.Y) <= halfH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y -= dy / c.Zoom
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the position and zoom it was created with.
func (c *Camera) Reset() {
	c.X, c.Y, c.Zoom = c.homeX, c.homeY, c.homeZoom
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
