package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestHubRoundTrip(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	current := config.Default().Tuning()
	srv := httptest.NewServer(hub.Handler(func() config.Tuning { return current }))
	defer srv.Close()

	conn := dial(t, srv.URL)

	// The viewer is registered before the greeting is sent.
	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if hello.Type != TypeTuning || hello.Tuning == nil || *hello.Tuning != current {
		t.Fatalf("greeting = %+v, want current tuning", hello)
	}
	if hub.Clients() != 1 {
		t.Fatalf("Clients = %d, want 1", hub.Clients())
	}

	hub.Broadcast(&Frame{Type: TypeFrame, Tick: 7, Birds: []game.BirdView{{ID: 3, X: 1, Y: 2, Alive: true}}})
	var frame Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Tick != 7 || len(frame.Birds) != 1 || frame.Birds[0].ID != 3 {
		t.Errorf("frame = %+v", frame)
	}

	want := current
	want.NumNeighbors = 9
	if err := conn.WriteJSON(Message{Type: TypeTuning, Tuning: &want}); err != nil {
		t.Fatalf("write tuning: %v", err)
	}
	select {
	case got := <-hub.Tuning():
		if got != want {
			t.Errorf("tuning = %+v, want %+v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tuning update not delivered")
	}
}

func TestHubIgnoresBadMessages(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := httptest.NewServer(hub.Handler(config.Default().Tuning))
	defer srv.Close()

	conn := dial(t, srv.URL)
	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read greeting: %v", err)
	}

	for _, msg := range []string{`not json`, `{"type":"pause"}`, `{"type":"tuning"}`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write %q: %v", msg, err)
		}
	}
	// A valid frame after the bad messages proves the connection survived.
	hub.Broadcast(&Frame{Type: TypeFrame, Tick: 1})
	var frame Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}

	select {
	case got := <-hub.Tuning():
		t.Errorf("unexpected tuning update %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubClose(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler(config.Default().Tuning))
	defer srv.Close()

	conn := dial(t, srv.URL)
	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read greeting: %v", err)
	}

	hub.Close()
	if hub.Clients() != 0 {
		t.Errorf("Clients = %d after Close, want 0", hub.Clients())
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read error after Close")
	}
}

func TestNewFrame(t *testing.T) {
	cfg, err := config.Parse([]byte("physics:\n  workers: 1\npopulation:\n  initial: 12\n"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := game.NewSession(cfg, game.Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Step()

	f := NewFrame(s)
	if f.Type != TypeFrame || f.Tick != 1 {
		t.Errorf("frame header = %q tick %d", f.Type, f.Tick)
	}
	if len(f.Birds) != s.Game.Count() {
		t.Errorf("birds = %d, want %d", len(f.Birds), s.Game.Count())
	}
	if len(f.Obstacles) != s.Obstacles.Len() {
		t.Errorf("obstacles = %d, want %d", len(f.Obstacles), s.Obstacles.Len())
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"birds":[`) {
		t.Errorf("frame json missing birds: %s", data[:min(len(data), 200)])
	}
}
