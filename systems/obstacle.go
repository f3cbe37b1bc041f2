package systems

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float32
}

// BoxAround returns the square of half-size r centred on (x, y).
func BoxAround(x, y, r float32) Rect {
	return Rect{X: x - r, Y: y - r, W: 2 * r, H: 2 * r}
}

// Left, Right, Top and Bottom return the rectangle edges.
func (r Rect) Left() float32   { return r.X }
func (r Rect) Right() float32  { return r.X + r.W }
func (r Rect) Top() float32    { return r.Y }
func (r Rect) Bottom() float32 { return r.Y + r.H }

// Center returns the rectangle centre.
func (r Rect) Center() (x, y float32) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Overlaps reports whether the rectangles share interior area. Touching edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// HasSolidHitbox is implemented by anything that can kill a bird on contact.
type HasSolidHitbox interface {
	// SolidHitbox returns the lethal part of the shape. It lies within Bounds.
	SolidHitbox() Rect
}

// Obstacle is the per-tick view of a moving obstacle.
type Obstacle interface {
	HasSolidHitbox
	Bounds() Rect               // visual extent, including decorative trails
	Velocity() (vx, vy float32) // world units per tick
}

// Box is a plain obstacle value for hosts that keep their own obstacle objects.
type Box struct {
	Visual Rect
	Solid  Rect
	VX, VY float32
}

func (b Box) SolidHitbox() Rect          { return b.Solid }
func (b Box) Bounds() Rect               { return b.Visual }
func (b Box) Velocity() (vx, vy float32) { return b.VX, b.VY }

// CheckFatalCollision reports whether a bird box overlaps any solid hitbox.
func CheckFatalCollision(box Rect, obstacles []Obstacle) bool {
	for _, o := range obstacles {
		if box.Overlaps(o.SolidHitbox()) {
			return true
		}
	}
	return false
}
