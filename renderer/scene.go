package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/environment"
	"github.com/pthm-cable/flock/systems"
)

// SceneRenderer draws a Scene with raylib, in world coordinates inside the
// camera's 2D mode.
type SceneRenderer struct {
	cam *camera.Camera
}

// NewSceneRenderer creates a renderer that views the world through cam.
func NewSceneRenderer(cam *camera.Camera) *SceneRenderer {
	return &SceneRenderer{cam: cam}
}

// Camera2D converts the camera into raylib's 2D camera.
func Camera2D(c *camera.Camera) rl.Camera2D {
	return rl.Camera2D{
		Offset: rl.Vector2{X: c.ViewportW / 2, Y: c.ViewportH / 2},
		Target: rl.Vector2{X: c.X, Y: c.Y},
		Zoom:   c.Zoom,
	}
}

// Begin starts world-space drawing and clears the background.
func (r *SceneRenderer) Begin() {
	rl.ClearBackground(toRL(colorBackground))
	rl.BeginMode2D(Camera2D(r.cam))
}

// End returns to screen-space drawing.
func (r *SceneRenderer) End() {
	rl.EndMode2D()
}

// Draw renders the scene. Call it between Begin and End.
func (r *SceneRenderer) Draw(s Scene, opts SceneOptions) {
	rl.DrawRectangleLines(0, 0, int32(s.Width), int32(s.Height), toRL(colorBorder))

	if opts.Grid && opts.CellSize > 0 {
		r.drawGrid(s.Width, s.Height, opts.CellSize)
	}

	for _, f := range s.Food {
		if f.Eaten || !r.cam.IsVisible(f.X, f.Y, f.Radius) {
			continue
		}
		rl.DrawCircleV(rl.Vector2{X: f.X, Y: f.Y}, f.Radius, toRL(colorFood))
	}

	for _, o := range s.Obstacles {
		r.drawObstacle(o, opts.Hitboxes)
	}

	for _, b := range s.Birds {
		if !r.cam.IsVisible(b.X, b.Y, b.Radius*4) {
			continue
		}
		center := rl.Vector2{X: b.X, Y: b.Y}

		if opts.FoodRange && opts.ScanRadius > 0 && b.Energy < opts.Threshold {
			rl.DrawCircleLines(int32(b.X), int32(b.Y), opts.ScanRadius, rl.Fade(toRL(colorFood), 0.25))
		}

		rl.DrawPoly(center, 3, b.Radius*1.6, b.Heading*rl.Rad2deg, toRL(BirdColor(b, opts)))

		if opts.Evasion && b.Flags.Has(components.FlagObstacleAhead) {
			rl.DrawCircleLines(int32(b.X), int32(b.Y), b.Radius*2.2, toRL(colorEvading))
		}
		if opts.Velocity {
			length := b.Radius * 4
			end := rl.Vector2{
				X: b.X + length*float32(math.Cos(float64(b.Heading))),
				Y: b.Y + length*float32(math.Sin(float64(b.Heading))),
			}
			rl.DrawLineV(center, end, rl.SkyBlue)
		}
		if opts.Hitboxes {
			box := systems.BoxAround(b.X, b.Y, b.Radius)
			rl.DrawRectangleLinesEx(rect(box), 1, toRL(colorHitbox))
		}
	}
}

func (r *SceneRenderer) drawObstacle(o systems.Obstacle, hitboxes bool) {
	bounds := o.Bounds()
	cx, cy := bounds.Center()
	if !r.cam.IsVisible(cx, cy, max(bounds.W, bounds.H)) {
		return
	}

	switch ob := o.(type) {
	case *environment.Comet:
		hx, hy := ob.Head.Center()
		tx, ty := ob.TrailEnd()
		rl.DrawLineEx(rl.Vector2{X: hx, Y: hy}, rl.Vector2{X: tx, Y: ty}, ob.Head.W*0.6, toRL(colorCometTrail))
		rl.DrawRectangleRec(rect(ob.Head), toRL(colorCometHead))
	default:
		rl.DrawRectangleRec(rect(bounds), toRL(colorBlock))
	}

	if hitboxes {
		rl.DrawRectangleLinesEx(rect(o.SolidHitbox()), 1, toRL(colorHitbox))
	}
}

func (r *SceneRenderer) drawGrid(width, height, cell float32) {
	c := toRL(colorGrid)
	for x := cell; x < width; x += cell {
		rl.DrawLineV(rl.Vector2{X: x, Y: 0}, rl.Vector2{X: x, Y: height}, c)
	}
	for y := cell; y < height; y += cell {
		rl.DrawLineV(rl.Vector2{X: 0, Y: y}, rl.Vector2{X: width, Y: y}, c)
	}
}

func rect(r systems.Rect) rl.Rectangle {
	return rl.Rectangle{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}

func toRL(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}
