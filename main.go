package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/telemetry"
)

// runOptions holds the command line settings shared by both run modes.
type runOptions struct {
	maxTicks    int
	outputDir   string
	snapshotDir string
	serveAddr   string
	frameScale  float64
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, frames and config snapshot")
	loadPath := flag.String("load", "", "Resume from a snapshot file (.json or .msgpack)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	serveAddr := flag.String("serve", "", "Serve the websocket stream on this address, e.g. :8080")
	frameScale := flag.Float64("frame-scale", 1, "Scale of headless PNG frames")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	gameOpts := game.Options{
		Seed:        rngSeed,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
	}
	session, err := game.NewSession(cfg, gameOpts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	if *loadPath != "" {
		snap, err := telemetry.LoadSnapshot(*loadPath)
		if err != nil {
			slog.Error("failed to load snapshot", "path", *loadPath, "error", err)
			os.Exit(1)
		}
		if err := session.Game.Restore(snap); err != nil {
			slog.Error("failed to restore snapshot", "path", *loadPath, "error", err)
			os.Exit(1)
		}
		slog.Info("restored snapshot", "path", *loadPath, "tick", snap.Tick, "birds", len(snap.Birds))
	}

	opts := runOptions{
		maxTicks:    *maxTicks,
		outputDir:   *outputDir,
		snapshotDir: *snapshotDir,
		serveAddr:   *serveAddr,
		frameScale:  *frameScale,
	}

	srv := startServer(opts.serveAddr, session.Game.Tuning())
	defer srv.Close()

	if *headless {
		defer session.Close()
		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"max_ticks", opts.maxTicks,
			"population", session.Game.Count(),
			"serve", opts.serveAddr,
		)
		if err := runHeadless(session, srv, opts); err != nil {
			slog.Error("simulation stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	// The viewer owns the session from here and closes it, or its replacement.
	newSession := func() (*game.Session, error) {
		return game.NewSession(cfg, gameOpts)
	}
	if err := runViewer(session, newSession, srv, opts); err != nil {
		slog.Error("simulation stopped", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
