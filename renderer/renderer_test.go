package renderer

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/traits"
)

func testScene() Scene {
	return Scene{
		Width:  100,
		Height: 60,
		Birds:  []game.BirdView{{ID: 1, X: 50, Y: 30, Radius: 3, Alive: true}},
		Obstacles: []systems.Obstacle{
			systems.Box{
				Visual: systems.Rect{X: 70, Y: 10, W: 20, H: 20},
				Solid:  systems.Rect{X: 70, Y: 10, W: 20, H: 20},
			},
		},
		Food: []*systems.Food{{ID: 1, X: 20, Y: 40, Radius: 4}},
	}
}

func near(c color.Color, want color.RGBA) bool {
	r, g, b, _ := c.RGBA()
	d := func(x uint32, y uint8) bool {
		v := int(x>>8) - int(y)
		return v >= -8 && v <= 8
	}
	return d(r, want.R) && d(g, want.G) && d(b, want.B)
}

func TestFrameWriterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	w, err := NewFrameWriter(dir, 10, 1, SceneOptions{})
	if err != nil {
		t.Fatalf("NewFrameWriter: %v", err)
	}

	path, err := w.Write(20, testScene())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "frame_000020.png" {
		t.Errorf("path = %s", path)
	}
	if w.Written() != 1 {
		t.Errorf("Written = %d, want 1", w.Written())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("size = %dx%d, want 100x60", b.Dx(), b.Dy())
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"background", 5, 5, colorBackground},
		{"bird", 50, 30, colorBird},
		{"obstacle", 80, 20, colorBlock},
		{"food", 20, 40, colorFood},
	}
	for _, tt := range tests {
		if got := img.At(tt.x, tt.y); !near(got, tt.want) {
			t.Errorf("%s pixel = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFrameWriterScale(t *testing.T) {
	w, err := NewFrameWriter(t.TempDir(), 1, 0.5, SceneOptions{})
	if err != nil {
		t.Fatal(err)
	}
	img := w.Render(testScene())
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 30 {
		t.Errorf("size = %dx%d, want 50x30", b.Dx(), b.Dy())
	}
}

func TestFrameWriterDue(t *testing.T) {
	tests := []struct {
		interval int
		tick     int32
		want     bool
	}{
		{0, 0, false},
		{0, 10, false},
		{10, 10, true},
		{10, 15, false},
		{1, 7, true},
	}
	for _, tt := range tests {
		w := &FrameWriter{interval: int32(tt.interval)}
		if got := w.Due(tt.tick); got != tt.want {
			t.Errorf("interval %d Due(%d) = %v, want %v", tt.interval, tt.tick, got, tt.want)
		}
	}
}

func TestBirdColor(t *testing.T) {
	var bounds traits.Bounds
	for i := range bounds {
		bounds[i] = traits.Range{Min: 0, Max: 1}
	}
	b := game.BirdView{Energy: 50, Traits: traits.Set{1, 0, 1, 0.5, 0.5, 0.5}}

	if got := BirdColor(b, SceneOptions{}); got != colorBird {
		t.Errorf("plain = %v, want %v", got, colorBird)
	}

	r, g, bl := traits.Color(b.Traits, bounds)
	want := color.RGBA{R: r, G: g, B: bl, A: 255}
	if got := BirdColor(b, SceneOptions{Colors: ColorTraits, Bounds: bounds}); got != want {
		t.Errorf("traits = %v, want %v", got, want)
	}

	energy := SceneOptions{Colors: ColorEnergy, Threshold: 100}
	b.Energy = 0
	if got := BirdColor(b, energy); got != colorStarving {
		t.Errorf("empty = %v, want %v", got, colorStarving)
	}
	b.Energy = 500
	if got := BirdColor(b, energy); got != colorFull {
		t.Errorf("full = %v, want %v", got, colorFull)
	}
}
