package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/renderer"
)

// runHeadless steps the session until max ticks, extinction or an
// unrecoverable error. PNG frames are written when an output dir is set.
func runHeadless(sess *game.Session, srv *streamServer, opts runOptions) error {
	frames, err := newFrameWriter(sess, opts)
	if err != nil {
		return err
	}

	for {
		srv.applyTuning(sess.Game)

		res := sess.Step()
		if res.Err != nil {
			return res.Err
		}
		srv.broadcast(sess)

		if frames != nil && frames.Due(res.Tick) {
			if _, err := frames.Write(res.Tick, sceneOf(sess)); err != nil {
				slog.Warn("frame not written", "tick", res.Tick, "error", err)
			}
		}

		if opts.maxTicks > 0 && int(res.Tick) >= opts.maxTicks {
			slog.Info("max ticks reached", "tick", res.Tick, "population", sess.Game.Count())
			return nil
		}
		if sess.Game.Count() == 0 {
			slog.Info("population extinct", "tick", res.Tick)
			return nil
		}
	}
}

func newFrameWriter(sess *game.Session, opts runOptions) (*renderer.FrameWriter, error) {
	cfg := sess.Game.Config()
	if opts.outputDir == "" || cfg.Telemetry.FrameInterval <= 0 {
		return nil, nil
	}
	w, err := renderer.NewFrameWriter(
		filepath.Join(opts.outputDir, "frames"),
		cfg.Telemetry.FrameInterval,
		opts.frameScale,
		renderer.SceneOptions{
			Colors:    renderer.ColorTraits,
			Evasion:   true,
			Bounds:    cfg.Derived.TraitBounds,
			Threshold: float32(cfg.Reproduction.Threshold),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("frame writer: %w", err)
	}
	return w, nil
}

// sceneOf collects what the renderers draw for the current tick.
func sceneOf(sess *game.Session) renderer.Scene {
	cfg := sess.Game.Config()
	return renderer.Scene{
		Width:     cfg.Derived.WorldW32,
		Height:    cfg.Derived.WorldH32,
		Birds:     sess.Game.Birds(nil),
		Obstacles: sess.Obstacles.Obstacles(),
		Food:      sess.Food.Items(),
	}
}
