package main

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/inspector"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/ui"
)

const (
	maxSpeed     = 10
	panSpeed     = 8
	zoomStep     = 1.1
	leftColumnW  = 260
	tuningPanelW = 300
)

const controlsText = "SPACE pause | +/- speed | T tuning | O overlays | H stats | P perf | R reset | K snapshot | arrows pan | wheel zoom"

// viewer is the windowed front end: it steps the session, draws it and
// routes input to the panels.
type viewer struct {
	sess       *game.Session
	newSession func() (*game.Session, error)
	srv        *streamServer
	opts       runOptions

	cam       *camera.Camera
	scene     *renderer.SceneRenderer
	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	stats     *ui.StatsPanel
	perf      *ui.PerfPanel
	controls  *ui.ControlsPanel
	tuning    *ui.TuningPanel
	inspector *inspector.Inspector

	screenW, screenH int32
	paused           bool
	speed            int
	showStats        bool
	showPerf         bool
	birds            []game.BirdView
}

// runViewer opens the window and runs until it is closed or max ticks is reached.
// It closes the session it ends with.
func runViewer(sess *game.Session, newSession func() (*game.Session, error), srv *streamServer, opts runOptions) error {
	cfg := sess.Game.Config()
	screenW, screenH := int32(cfg.Screen.Width), int32(cfg.Screen.Height)

	rl.InitWindow(screenW, screenH, "Flock")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	cam := camera.New(float32(screenW), float32(screenH), cfg.Derived.WorldW32, cfg.Derived.WorldH32,
		cfg.Physics.Boundary == config.BoundaryWrap)
	v := &viewer{
		sess:       sess,
		newSession: newSession,
		srv:        srv,
		opts:       opts,
		cam:        cam,
		scene:      renderer.NewSceneRenderer(cam),
		overlays:   ui.NewOverlayRegistry(),
		hud:        ui.NewHUD(),
		stats:      ui.NewStatsPanel(10, 100, leftColumnW),
		perf:       ui.NewPerfPanel(10, 100),
		controls:   ui.NewControlsPanel(10, 100, leftColumnW),
		tuning:     ui.NewTuningPanel(screenW-inspector.PanelWidth-tuningPanelW-20, 10, tuningPanelW),
		inspector:  inspector.NewInspector(screenW),
		screenW:    screenW,
		screenH:    screenH,
		speed:      1,
		showStats:  true,
	}
	v.overlays.SetEnabled(ui.OverlayTraitColors, true)
	defer func() { v.sess.Close() }()

	for !rl.WindowShouldClose() {
		v.handleInput()

		if !v.paused {
			for range v.speed {
				done, err := v.step()
				if err != nil {
					return err
				}
				if done {
					return nil
				}
			}
		}

		v.sess.Game.RecordFrame()
		v.birds = v.sess.Game.Birds(v.birds[:0])
		v.draw()
	}
	return nil
}

// step advances one tick and reports whether the run should end.
func (v *viewer) step() (bool, error) {
	v.srv.applyTuning(v.sess.Game)
	res := v.sess.Step()
	if res.Err != nil {
		return true, res.Err
	}
	v.srv.broadcast(v.sess)

	if v.opts.maxTicks > 0 && int(res.Tick) >= v.opts.maxTicks {
		slog.Info("max ticks reached", "tick", res.Tick)
		return true, nil
	}
	return false, nil
}

func (v *viewer) handleInput() {
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := v.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", on)
			continue
		}
		switch key {
		case rl.KeySpace:
			v.paused = !v.paused
		case rl.KeyEqual, rl.KeyKpAdd:
			v.speed = min(maxSpeed, v.speed+1)
		case rl.KeyMinus, rl.KeyKpSubtract:
			v.speed = max(1, v.speed-1)
		case rl.KeyT:
			v.tuning.Toggle()
		case rl.KeyO:
			v.controls.Toggle()
		case rl.KeyH:
			v.showStats = !v.showStats
		case rl.KeyP:
			v.showPerf = !v.showPerf
		case rl.KeyR:
			v.reset()
		case rl.KeyK:
			v.saveSnapshot()
		case rl.KeyHome:
			v.cam.Reset()
		}
	}

	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel > 0 {
		v.cam.ZoomBy(zoomStep)
	} else if wheel < 0 {
		v.cam.ZoomBy(1 / zoomStep)
	}

	mouse := rl.GetMousePosition()
	if v.tuning.Contains(mouse.X, mouse.Y) {
		return
	}
	wx, wy := v.cam.ScreenToWorld(mouse.X, mouse.Y)
	v.inspector.HandleInput(mouse.X, mouse.Y, wx, wy, v.birds)
}

// reset replaces the session with a fresh one from the same seed, keeping
// the current tuning.
func (v *viewer) reset() {
	tuning := v.sess.Game.Tuning()
	next, err := v.newSession()
	if err != nil {
		slog.Error("reset failed", "error", err)
		return
	}
	if err := next.Game.SetTuning(tuning); err != nil {
		slog.Warn("tuning not carried over", "error", err)
	}
	if err := v.sess.Close(); err != nil {
		slog.Warn("closing session", "error", err)
	}
	v.sess = next
	v.inspector.Deselect()
	v.srv.publish(next.Game.Tuning())
	slog.Info("simulation reset")
}

func (v *viewer) saveSnapshot() {
	dir := v.opts.snapshotDir
	if dir == "" {
		dir = "snapshots"
	}
	path, err := telemetry.SaveSnapshot(v.sess.Game.Snapshot(), dir, telemetry.FormatJSON)
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", v.sess.Game.TickCount())
}

func (v *viewer) draw() {
	g := v.sess.Game
	cfg := g.Config()

	rl.BeginDrawing()

	v.scene.Begin()
	scene := sceneOf(v.sess)
	scene.Birds = v.birds
	v.scene.Draw(scene, sceneOptions(v.overlays, cfg))
	v.inspector.DrawSelectionHighlight(v.birds, cfg)
	v.scene.End()

	data := ui.HUDData{
		Title:     "Flock",
		Tick:      g.TickCount(),
		Count:     g.Count(),
		Cap:       cfg.Derived.PopulationCap,
		Obstacles: v.sess.Obstacles.Len(),
		Food:      len(v.sess.Food.Items()),
		Speed:     v.speed,
		FPS:       rl.GetFPS(),
		Paused:    v.paused,
		Clients:   v.srv.clients(),
		Stats:     g.Stats(),
	}
	v.hud.Draw(data)

	y := int32(100)
	if v.showStats {
		v.stats.SetPosition(10, y)
		y = v.stats.Draw(data, cfg.Derived.TraitBounds) + 10
	}
	v.controls.SetPosition(10, y)
	y = v.controls.Draw(v.overlays) + 10
	if v.showPerf {
		v.perf.SetPosition(10, y)
		v.perf.Draw(g.Perf())
	}

	if t, changed, action := v.tuning.Draw(g.Tuning(), v.paused); changed || action != ui.ActionNone {
		v.applyPanel(t, changed, action)
	}
	v.inspector.Draw(g)

	v.hud.DrawControls(v.screenH, fmt.Sprintf("%s | speed %dx", controlsText, v.speed))
	rl.EndDrawing()
}

func (v *viewer) applyPanel(t config.Tuning, changed bool, action ui.TuningAction) {
	if changed {
		if err := v.sess.Game.SetTuning(t); err != nil {
			slog.Warn("rejected tuning", "error", err)
		} else {
			v.srv.publish(v.sess.Game.Tuning())
		}
	}
	switch action {
	case ui.ActionPause:
		v.paused = !v.paused
	case ui.ActionReset:
		v.reset()
	case ui.ActionSnapshot:
		v.saveSnapshot()
	}
}

// sceneOptions turns the enabled overlays into renderer options.
func sceneOptions(overlays *ui.OverlayRegistry, cfg *config.Config) renderer.SceneOptions {
	opts := renderer.SceneOptions{
		Evasion:    overlays.IsEnabled(ui.OverlayEvasion),
		FoodRange:  overlays.IsEnabled(ui.OverlayFoodRange),
		Velocity:   overlays.IsEnabled(ui.OverlayVelocity),
		Hitboxes:   overlays.IsEnabled(ui.OverlayHitboxes),
		Grid:       overlays.IsEnabled(ui.OverlayGrid),
		Bounds:     cfg.Derived.TraitBounds,
		Threshold:  float32(cfg.Reproduction.Threshold),
		ScanRadius: float32(cfg.Food.ScanRadius),
		CellSize:   float32(cfg.Physics.GridCellSize),
	}
	switch {
	case overlays.IsEnabled(ui.OverlayTraitColors):
		opts.Colors = renderer.ColorTraits
	case overlays.IsEnabled(ui.OverlayEnergy):
		opts.Colors = renderer.ColorEnergy
	}
	return opts
}
