package systems

import (
	"fmt"
	"math"
)

// Boundary selects how birds are kept inside the world.
type Boundary uint8

const (
	BoundaryWrap   Boundary = iota // leave one edge, enter at the opposite one
	BoundaryBounce                 // clamp inside [radius, size-radius] and reflect outward motion
)

// ParseBoundary converts a config name to a Boundary.
func ParseBoundary(name string) (Boundary, error) {
	switch name {
	case "wrap":
		return BoundaryWrap, nil
	case "bounce":
		return BoundaryBounce, nil
	default:
		return 0, fmt.Errorf("unknown boundary %q", name)
	}
}

// World describes the simulation area and its edge policy.
type World struct {
	Width, Height float32
	Radius        float32 // bird radius, used by bounce
	Boundary      Boundary
}

// Move advances a bird by velocity * speed and applies the boundary policy.
// Under bounce only a velocity component pointing out of the world is negated,
// so repeated hits on the same edge leave the bird in place.
func (w World) Move(x, y, vx, vy, speed float32) (nx, ny, nvx, nvy float32) {
	nx = x + vx*speed
	ny = y + vy*speed
	nvx, nvy = vx, vy

	if w.Boundary == BoundaryWrap {
		return wrap(nx, w.Width), wrap(ny, w.Height), nvx, nvy
	}

	nx, nvx = bounce(nx, nvx, w.Radius, w.Width-w.Radius)
	ny, nvy = bounce(ny, nvy, w.Radius, w.Height-w.Radius)
	return nx, ny, nvx, nvy
}

// Contain maps a point into the world without touching velocity.
func (w World) Contain(x, y float32) (float32, float32) {
	if w.Boundary == BoundaryWrap {
		return wrap(x, w.Width), wrap(y, w.Height)
	}
	return clampFloat(x, w.Radius, w.Width-w.Radius), clampFloat(y, w.Radius, w.Height-w.Radius)
}

// wrap maps v into [0, size).
func wrap(v, size float32) float32 {
	m := float32(math.Mod(float64(v), float64(size)))
	if m < 0 {
		m += size
	}
	if m >= size {
		m = 0
	}
	return m
}

func bounce(p, v, lo, hi float32) (float32, float32) {
	if p < lo {
		p = lo
		if v < 0 {
			v = -v
		}
	} else if p > hi {
		p = hi
		if v > 0 {
			v = -v
		}
	}
	return p, v
}
