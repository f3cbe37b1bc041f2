// Package renderer draws the world: a raylib scene for the viewer and gg PNG
// frames for headless runs. Both share the palette below.
package renderer

import (
	"image/color"

	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/traits"
)

// ColorMode selects how birds are tinted.
type ColorMode uint8

const (
	ColorPlain  ColorMode = iota
	ColorTraits           // cohesion, alignment and separation as RGB
	ColorEnergy           // red when starving, green at the reproduction threshold
)

var (
	colorBackground = color.RGBA{R: 18, G: 22, B: 30, A: 255}
	colorBorder     = color.RGBA{R: 60, G: 70, B: 80, A: 255}
	colorBird       = color.RGBA{R: 230, G: 230, B: 240, A: 255}
	colorStarving   = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	colorFull       = color.RGBA{R: 80, G: 200, B: 90, A: 255}
	colorEvading    = color.RGBA{R: 255, G: 160, B: 40, A: 255}
	colorBlock      = color.RGBA{R: 120, G: 110, B: 100, A: 255}
	colorCometHead  = color.RGBA{R: 255, G: 120, B: 60, A: 255}
	colorCometTrail = color.RGBA{R: 255, G: 200, B: 120, A: 90}
	colorHitbox     = color.RGBA{R: 255, G: 60, B: 60, A: 200}
	colorFood       = color.RGBA{R: 120, G: 220, B: 90, A: 255}
	colorGrid       = color.RGBA{R: 255, G: 255, B: 255, A: 20}
)

// Scene is everything drawn for one tick.
type Scene struct {
	Width, Height float32
	Birds         []game.BirdView
	Obstacles     []systems.Obstacle
	Food          []*systems.Food
}

// SceneOptions holds the enabled overlays and the values they need.
type SceneOptions struct {
	Colors    ColorMode
	Evasion   bool
	FoodRange bool
	Velocity  bool
	Hitboxes  bool
	Grid      bool

	Bounds     traits.Bounds
	Threshold  float32 // reproduction energy threshold
	ScanRadius float32
	CellSize   float32
}

// BirdColor returns the fill colour of a bird under the given mode.
func BirdColor(b game.BirdView, opts SceneOptions) color.RGBA {
	switch opts.Colors {
	case ColorTraits:
		r, g, bl := traits.Color(b.Traits, opts.Bounds)
		return color.RGBA{R: r, G: g, B: bl, A: 255}
	case ColorEnergy:
		ratio := float32(1)
		if opts.Threshold > 0 {
			ratio = max(0, min(1, b.Energy/opts.Threshold))
		}
		return lerp(colorStarving, colorFull, ratio)
	default:
		return colorBird
	}
}

func lerp(a, b color.RGBA, t float32) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
