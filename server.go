package main

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/stream"
)

// streamServer serves the websocket stream. A nil server does nothing, so
// the run loops can call it unconditionally.
type streamServer struct {
	hub    *stream.Hub
	http   *http.Server
	tuning atomic.Pointer[config.Tuning]
}

// startServer starts serving /ws on addr. It returns nil when addr is empty.
func startServer(addr string, initial config.Tuning) *streamServer {
	if addr == "" {
		return nil
	}
	s := &streamServer{hub: stream.NewHub()}
	s.publish(initial)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.Handler(func() config.Tuning { return *s.tuning.Load() }))
	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("stream listening", "addr", addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("stream server failed", "error", err)
		}
	}()
	return s
}

// publish records the tuning greeted to new viewers. The HTTP handlers never
// touch the game directly.
func (s *streamServer) publish(t config.Tuning) {
	if s == nil {
		return
	}
	s.tuning.Store(&t)
}

// applyTuning applies every queued viewer update to g, between ticks.
// It returns the number applied.
func (s *streamServer) applyTuning(g *game.Game) int {
	if s == nil {
		return 0
	}
	applied := 0
	for {
		select {
		case t := <-s.hub.Tuning():
			if err := g.SetTuning(t); err != nil {
				slog.Warn("rejected viewer tuning", "error", err)
				continue
			}
			applied++
			s.publish(g.Tuning())
			slog.Info("applied viewer tuning", "tick", g.TickCount())
		default:
			return applied
		}
	}
}

// broadcast sends the session state every interval ticks.
func (s *streamServer) broadcast(sess *game.Session) {
	if s == nil || s.hub.Clients() == 0 {
		return
	}
	interval := int32(sess.Game.Config().Telemetry.StreamInterval)
	if interval <= 0 || sess.Game.TickCount()%interval != 0 {
		return
	}
	s.hub.Broadcast(stream.NewFrame(sess))
}

// clients returns the number of connected viewers.
func (s *streamServer) clients() int {
	if s == nil {
		return 0
	}
	return s.hub.Clients()
}

// Close disconnects viewers and stops the HTTP server.
func (s *streamServer) Close() {
	if s == nil {
		return
	}
	s.hub.Close()
	if err := s.http.Close(); err != nil {
		slog.Warn("closing stream server", "error", err)
	}
}
