// Package stream broadcasts simulation frames to websocket viewers and
// collects tuning updates sent back by them.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/environment"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// Message types on the wire.
const (
	TypeFrame  = "frame"
	TypeTuning = "tuning"
)

// tuningBuffer bounds the updates waiting for the host loop.
const tuningBuffer = 16

// Frame is one rendered tick as sent to viewers.
type Frame struct {
	Type      string          `json:"type"`
	Tick      int32           `json:"tick"`
	Width     float32         `json:"width"`
	Height    float32         `json:"height"`
	Birds     []game.BirdView `json:"birds"`
	Obstacles []ObstacleView  `json:"obstacles"`
	Food      []FoodView      `json:"food"`
	Stats     telemetry.Stats `json:"stats"`
}

// ObstacleView is an obstacle's drawn bounds and solid head.
type ObstacleView struct {
	Bounds systems.Rect `json:"bounds"`
	Solid  systems.Rect `json:"solid"`
}

// FoodView is one uneaten food item.
type FoodView struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Radius float32 `json:"radius"`
}

// Message is a control message from a viewer.
type Message struct {
	Type   string         `json:"type"`
	Tuning *config.Tuning `json:"tuning,omitempty"`
}

// NewFrame captures the current state of a session.
func NewFrame(s *game.Session) *Frame {
	cfg := s.Game.Config()
	f := &Frame{
		Type:   TypeFrame,
		Tick:   s.Game.TickCount(),
		Width:  cfg.Derived.WorldW32,
		Height: cfg.Derived.WorldH32,
		Birds:  s.Game.Birds(nil),
		Stats:  s.Game.Stats(),
	}
	for _, o := range s.Obstacles.Obstacles() {
		f.Obstacles = append(f.Obstacles, ObstacleView{Bounds: o.Bounds(), Solid: o.SolidHitbox()})
	}
	f.Food = foodViews(s.Food)
	return f
}

func foodViews(field *environment.FoodField) []FoodView {
	var out []FoodView
	for _, it := range field.Items() {
		if !it.Eaten {
			out = append(out, FoodView{X: it.X, Y: it.Y, Radius: it.Radius})
		}
	}
	return out
}

// Hub tracks connected viewers.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	tuning   chan config.Tuning
	closed   bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		tuning: make(chan config.Tuning, tuningBuffer),
	}
}

// Tuning delivers tuning updates from viewers. The host applies them between ticks.
func (h *Hub) Tuning() <-chan config.Tuning {
	return h.tuning
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[conn] = struct{}{}
	return true
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// Broadcast sends f to every viewer. Viewers that fail to receive it are dropped.
func (h *Hub) Broadcast(f *Frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		slog.Error("failed to marshal frame", "tick", f.Tick, "error", err)
		return
	}
	h.broadcast(payload)
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			slog.Debug("dropping viewer", "remote", conn.RemoteAddr().String(), "error", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Handler upgrades viewer connections. current supplies the tuning sent to
// each viewer when it connects.
func (h *Hub) Handler(current func() config.Tuning) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}
		if !h.add(conn) {
			conn.Close()
			return
		}
		defer h.remove(conn)

		// Send the current tuning immediately.
		t := current()
		if err := h.send(conn, Message{Type: TypeTuning, Tuning: &t}); err != nil {
			return
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				slog.Debug("viewer disconnected", "remote", r.RemoteAddr, "error", err)
				return
			}

			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				slog.Warn("unable to decode viewer message", "error", err)
				continue
			}
			if msg.Type != TypeTuning || msg.Tuning == nil {
				continue
			}

			select {
			case h.tuning <- *msg.Tuning:
			default:
				slog.Warn("tuning queue full, update dropped")
			}
		}
	}
}

// send writes one message to a single viewer.
func (h *Hub) send(conn *websocket.Conn, msg Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return conn.WriteJSON(msg)
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
