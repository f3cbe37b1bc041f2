// Package environment spawns and moves the obstacles and food the birds react to.
package environment

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
)

// Block is a square obstacle drifting left. Its whole body is solid.
type Block struct {
	Rect   systems.Rect
	VX, VY float32
}

func (b *Block) SolidHitbox() systems.Rect  { return b.Rect }
func (b *Block) Bounds() systems.Rect       { return b.Rect }
func (b *Block) Velocity() (vx, vy float32) { return b.VX, b.VY }

func (b *Block) advance() {
	b.Rect.X += b.VX
	b.Rect.Y += b.VY
}

func (b *Block) gone(width, height float32) bool {
	return offWorld(b.Rect, width, height)
}

// Comet is a square head falling diagonally with a harmless trail behind it.
// Only the head is solid; Bounds covers head and trail.
type Comet struct {
	Head   systems.Rect
	Trail  float32 // trail length in world units
	VX, VY float32
}

func (c *Comet) SolidHitbox() systems.Rect  { return c.Head }
func (c *Comet) Velocity() (vx, vy float32) { return c.VX, c.VY }

func (c *Comet) advance() {
	c.Head.X += c.VX
	c.Head.Y += c.VY
}

func (c *Comet) gone(width, height float32) bool {
	return offWorld(c.Bounds(), width, height)
}

// Bounds returns the rectangle spanned by the head and the trail end.
func (c *Comet) Bounds() systems.Rect {
	tx, ty := c.TrailEnd()
	hx, hy := c.Head.Center()
	half := c.Head.W / 2
	minX, maxX := min(hx, tx)-half, max(hx, tx)+half
	minY, maxY := min(hy, ty)-half, max(hy, ty)+half
	return systems.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// TrailEnd returns the centre of the far end of the trail.
func (c *Comet) TrailEnd() (x, y float32) {
	hx, hy := c.Head.Center()
	speed := float32(math.Hypot(float64(c.VX), float64(c.VY)))
	if speed == 0 {
		return hx, hy
	}
	return hx - c.VX/speed*c.Trail, hy - c.VY/speed*c.Trail
}

type moving interface {
	systems.Obstacle
	advance()
	gone(width, height float32) bool
}

// offWorld reports whether r lies entirely outside the world.
func offWorld(r systems.Rect, width, height float32) bool {
	return r.Right() < 0 || r.Left() > width || r.Bottom() < 0 || r.Top() > height
}

// ObstacleField owns the live obstacles.
type ObstacleField struct {
	cfg           config.ObstaclesConfig
	width, height float32
	rng           *rand.Rand

	items []moving
	view  []systems.Obstacle
}

// NewObstacleField creates a field and places the initial obstacles inside the world.
func NewObstacleField(cfg *config.Config, rng *rand.Rand) *ObstacleField {
	f := &ObstacleField{
		cfg:    cfg.Obstacles,
		width:  cfg.Derived.WorldW32,
		height: cfg.Derived.WorldH32,
		rng:    rng,
	}
	for i := 0; i < f.cfg.Initial && len(f.items) < f.cfg.Max; i++ {
		f.spawn(true)
	}
	return f
}

// Update moves every obstacle, culls those that left the world and spawns
// a new one every spawn_interval ticks while under the limit.
func (f *ObstacleField) Update(tick int32) {
	kept := f.items[:0]
	for _, o := range f.items {
		o.advance()
		if !o.gone(f.width, f.height) {
			kept = append(kept, o)
		}
	}
	clear(f.items[len(kept):])
	f.items = kept

	if int(tick)%f.cfg.SpawnInterval == 0 && len(f.items) < f.cfg.Max {
		f.spawn(false)
	}
}

// Obstacles returns the live obstacles. The slice is reused by the next call.
func (f *ObstacleField) Obstacles() []systems.Obstacle {
	f.view = f.view[:0]
	for _, o := range f.items {
		f.view = append(f.view, o)
	}
	return f.view
}

// Len returns the number of live obstacles.
func (f *ObstacleField) Len() int {
	return len(f.items)
}

// spawn adds a block at the right edge or a comet above the top edge.
// inside places it at a random point of the world instead.
func (f *ObstacleField) spawn(inside bool) {
	c := f.cfg
	size := f.uniform(c.MinSize, c.MaxSize)
	speed := f.uniform(c.MinSpeed, c.MaxSpeed)

	if f.rng.Float64() < c.CometFraction {
		x := f.rng.Float32()*f.width*0.7 + f.width*0.3
		y := -size
		if inside {
			y = f.rng.Float32() * (f.height - size)
		}
		f.items = append(f.items, &Comet{
			Head:  systems.Rect{X: x, Y: y, W: size, H: size},
			Trail: size * float32(c.TrailLength),
			VX:    -speed * 0.7,
			VY:    speed * 0.7,
		})
		return
	}

	x := f.width
	if inside {
		x = f.width/2 + f.rng.Float32()*(f.width/2-size)
	}
	y := f.rng.Float32() * max(f.height-size, 0)
	f.items = append(f.items, &Block{
		Rect: systems.Rect{X: x, Y: y, W: size, H: size},
		VX:   -speed,
	})
}

func (f *ObstacleField) uniform(lo, hi float64) float32 {
	return float32(lo + f.rng.Float64()*(hi-lo))
}
