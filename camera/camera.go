// Package camera maps between world and screen coordinates for the viewer.
package camera

import "math"

// Camera is a pan and zoom viewport over the world. When Wrap is set the
// world is treated as a torus, matching the wrap boundary policy.
type Camera struct {
	// Centre of the view in world coordinates
	X, Y float32

	Zoom float32

	ViewportW, ViewportH float32
	WorldW, WorldH       float32

	MinZoom, MaxZoom float32

	Wrap bool
}

// New creates a camera centred on the world at the widest zoom that leaves no
// empty space around it.
func New(viewportW, viewportH, worldW, worldH float32, wrap bool) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   4.0,
		Wrap:      wrap,
	}
	c.MinZoom = minZoom(viewportW, viewportH, worldW, worldH)
	c.Reset()
	return c
}

// minZoom is the smallest zoom at which the visible area fits inside the world.
func minZoom(viewportW, viewportH, worldW, worldH float32) float32 {
	return max(viewportW/worldW, viewportH/worldH)
}

// delta is the signed offset from the camera to a world coordinate,
// taking the short way round on a torus.
func (c *Camera) delta(to, from, size float32) float32 {
	d := to - from
	if !c.Wrap {
		return d
	}
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + c.delta(wx, c.X, c.WorldW)*c.Zoom
	sy = c.ViewportH/2 + c.delta(wy, c.Y, c.WorldH)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	if c.Wrap {
		wx = mod(wx, c.WorldW)
		wy = mod(wy, c.WorldH)
	}
	return wx, wy
}

// IsVisible reports whether a circle at (wx, wy) may be on screen.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	dx := c.delta(wx, c.X, c.WorldW)
	dy := c.delta(wy, c.Y, c.WorldH)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return abs(dx) <= halfW && abs(dy) <= halfH
}

// Resize updates viewport dimensions and recalculates the zoom floor.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = minZoom(viewportW, viewportH, c.WorldW, c.WorldH)
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by a delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.MoveTo(c.X+dx/c.Zoom, c.Y+dy/c.Zoom)
}

// MoveTo centres the camera on a world position. Without wrapping the view is
// kept inside the world.
func (c *Camera) MoveTo(x, y float32) {
	if c.Wrap {
		c.X = mod(x, c.WorldW)
		c.Y = mod(y, c.WorldH)
		return
	}
	c.X, c.Y = c.clampCentre(x, y)
}

func (c *Camera) clampCentre(x, y float32) (float32, float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return clampSpan(x, halfW, c.WorldW-halfW), clampSpan(y, halfH, c.WorldH-halfH)
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = max(c.MinZoom, min(c.MaxZoom, zoom))
	if !c.Wrap {
		c.X, c.Y = c.clampCentre(c.X, c.Y)
	}
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centres the camera on the world at 1:1 zoom, or the floor if that is wider.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.SetZoom(1)
}

// clampSpan clamps v to [lo, hi], or returns the midpoint when the span is empty.
func clampSpan(v, lo, hi float32) float32 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return max(lo, min(hi, v))
}

// mod computes the positive modulo.
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
