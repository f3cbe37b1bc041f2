package renderer

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/environment"
	"github.com/pthm-cable/flock/systems"
)

// FrameWriter renders scenes to PNG files for headless runs.
type FrameWriter struct {
	dir      string
	interval int32
	scale    float64
	opts     SceneOptions
	written  int
}

// NewFrameWriter creates dir and returns a writer that renders every
// interval ticks at the given scale. An interval of 0 disables it.
func NewFrameWriter(dir string, interval int, scale float64, opts SceneOptions) (*FrameWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating frame dir: %w", err)
	}
	if scale <= 0 {
		scale = 1
	}
	return &FrameWriter{
		dir:      dir,
		interval: int32(interval),
		scale:    scale,
		opts:     opts,
	}, nil
}

// Due reports whether a frame should be written for tick.
func (w *FrameWriter) Due(tick int32) bool {
	return w.interval > 0 && tick%w.interval == 0
}

// Written returns the number of frames saved so far.
func (w *FrameWriter) Written() int {
	return w.written
}

// Write renders s and saves it as frame_<tick>.png.
func (w *FrameWriter) Write(tick int32, s Scene) (string, error) {
	dc := w.draw(s)
	path := filepath.Join(w.dir, fmt.Sprintf("frame_%06d.png", tick))
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("saving frame: %w", err)
	}
	w.written++
	slog.Debug("frame written", "tick", tick, "path", path)
	return path, nil
}

// Render draws s into an image without saving it.
func (w *FrameWriter) Render(s Scene) image.Image {
	return w.draw(s).Image()
}

func (w *FrameWriter) draw(s Scene) *gg.Context {
	width := int(math.Ceil(float64(s.Width) * w.scale))
	height := int(math.Ceil(float64(s.Height) * w.scale))
	dc := gg.NewContext(max(1, width), max(1, height))
	dc.Scale(w.scale, w.scale)

	dc.SetColor(colorBackground)
	dc.Clear()

	for _, f := range s.Food {
		if f.Eaten {
			continue
		}
		dc.DrawCircle(float64(f.X), float64(f.Y), float64(f.Radius))
		dc.SetColor(colorFood)
		dc.Fill()
	}

	for _, o := range s.Obstacles {
		switch ob := o.(type) {
		case *environment.Comet:
			hx, hy := ob.Head.Center()
			tx, ty := ob.TrailEnd()
			dc.SetLineWidth(float64(ob.Head.W) * 0.6)
			dc.DrawLine(float64(hx), float64(hy), float64(tx), float64(ty))
			dc.SetColor(colorCometTrail)
			dc.Stroke()
			drawRect(dc, ob.Head)
			dc.SetColor(colorCometHead)
			dc.Fill()
		default:
			drawRect(dc, o.Bounds())
			dc.SetColor(colorBlock)
			dc.Fill()
		}
		if w.opts.Hitboxes {
			drawRect(dc, o.SolidHitbox())
			dc.SetLineWidth(1)
			dc.SetColor(colorHitbox)
			dc.Stroke()
		}
	}

	for _, b := range s.Birds {
		// gg starts the first vertex pointing up.
		dc.DrawRegularPolygon(3, float64(b.X), float64(b.Y), float64(b.Radius)*1.6, float64(b.Heading)+math.Pi/2)
		dc.SetColor(BirdColor(b, w.opts))
		dc.Fill()

		if w.opts.Evasion && b.Flags.Has(components.FlagObstacleAhead) {
			dc.DrawCircle(float64(b.X), float64(b.Y), float64(b.Radius)*2.2)
			dc.SetLineWidth(1)
			dc.SetColor(colorEvading)
			dc.Stroke()
		}
	}
	return dc
}

func drawRect(dc *gg.Context, r systems.Rect) {
	dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.W), float64(r.H))
}
