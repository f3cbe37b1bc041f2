package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/ui"
)

const testYAML = `
physics:
  workers: 1
population:
  initial: 8
  max: 20
telemetry:
  frame_interval: 5
`

func newTestSession(t *testing.T) *game.Session {
	t.Helper()
	cfg, err := config.Parse([]byte(testYAML))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	s, err := game.NewSession(cfg, game.Options{Seed: 7})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRunHeadlessWritesFrames(t *testing.T) {
	s := newTestSession(t)
	dir := t.TempDir()

	err := runHeadless(s, nil, runOptions{maxTicks: 12, outputDir: dir, frameScale: 0.25})
	if err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if tick := s.Game.TickCount(); tick != 12 {
		t.Errorf("stopped at tick %d, want 12", tick)
	}

	frames, err := filepath.Glob(filepath.Join(dir, "frames", "frame_*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Errorf("wrote %d frames, want 2 (ticks 5 and 10)", len(frames))
	}
}

func TestNewFrameWriterDisabled(t *testing.T) {
	s := newTestSession(t)
	w, err := newFrameWriter(s, runOptions{})
	if err != nil || w != nil {
		t.Errorf("newFrameWriter without output dir = %v, %v, want nil, nil", w, err)
	}
}

func TestNilServerIsNoop(t *testing.T) {
	var srv *streamServer
	s := newTestSession(t)

	if srv.applyTuning(s.Game) != 0 {
		t.Error("nil server applied tuning")
	}
	srv.publish(s.Game.Tuning())
	srv.broadcast(s)
	if srv.clients() != 0 {
		t.Error("nil server has clients")
	}
	srv.Close()
}

func TestSceneOf(t *testing.T) {
	s := newTestSession(t)
	s.Step()

	scene := sceneOf(s)
	cfg := s.Game.Config()
	if scene.Width != cfg.Derived.WorldW32 || scene.Height != cfg.Derived.WorldH32 {
		t.Errorf("scene size = %vx%v", scene.Width, scene.Height)
	}
	if len(scene.Birds) != s.Game.Count() {
		t.Errorf("scene has %d birds, game has %d", len(scene.Birds), s.Game.Count())
	}
}

func TestSceneOptions(t *testing.T) {
	cfg := config.Default()
	overlays := ui.NewOverlayRegistry()

	opts := sceneOptions(overlays, cfg)
	if opts.Colors != renderer.ColorPlain || opts.Grid || opts.Hitboxes {
		t.Errorf("defaults = %+v", opts)
	}

	overlays.SetEnabled(ui.OverlayEnergy, true)
	overlays.SetEnabled(ui.OverlayGrid, true)
	opts = sceneOptions(overlays, cfg)
	if opts.Colors != renderer.ColorEnergy || !opts.Grid {
		t.Errorf("energy + grid = %+v", opts)
	}
	if opts.Threshold != float32(cfg.Reproduction.Threshold) {
		t.Errorf("threshold = %v", opts.Threshold)
	}
}

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	os.Exit(m.Run())
}
