package ui

import (
	"slices"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/config"
)

func TestOverlayToggle(t *testing.T) {
	reg := NewOverlayRegistry()
	for _, desc := range reg.descriptors {
		if reg.IsEnabled(desc.ID) {
			t.Errorf("%s enabled by default", desc.ID)
		}
	}

	if !reg.Toggle(OverlayVelocity) {
		t.Fatal("Toggle should enable velocity")
	}
	if reg.Toggle(OverlayVelocity) {
		t.Fatal("second Toggle should disable velocity")
	}

	reg.SetEnabled("missing", true)
	if reg.IsEnabled("missing") {
		t.Error("unknown overlay enabled")
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.SetEnabled(OverlayTraitColors, true)
	reg.SetEnabled(OverlayGrid, true)

	reg.SetEnabled(OverlayEnergy, true)
	if reg.IsEnabled(OverlayTraitColors) {
		t.Error("energy should turn off trait colors")
	}
	if !reg.IsEnabled(OverlayGrid) {
		t.Error("grid is not exclusive with energy")
	}

	// Disabling leaves partners alone.
	reg.SetEnabled(OverlayEnergy, false)
	if reg.IsEnabled(OverlayTraitColors) || reg.IsEnabled(OverlayEnergy) {
		t.Error("both color overlays should be off")
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	tests := []struct {
		name    string
		key     int32
		id      OverlayID
		enabled bool
		matched bool
	}{
		{"hitboxes on", rl.KeyB, OverlayHitboxes, true, true},
		{"hitboxes off", rl.KeyB, OverlayHitboxes, false, true},
		{"evasion on", rl.KeyV, OverlayEvasion, true, true},
		{"unbound", rl.KeyZ, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, enabled, matched := reg.HandleKeyPress(tt.key)
			if id != tt.id || enabled != tt.enabled || matched != tt.matched {
				t.Errorf("HandleKeyPress = %q, %v, %v, want %q, %v, %v",
					id, enabled, matched, tt.id, tt.enabled, tt.matched)
			}
		})
	}
}

func TestOverlayCategories(t *testing.T) {
	reg := NewOverlayRegistry()
	want := []string{"visual", "behaviour", "debug"}
	if got := reg.Categories(); !slices.Equal(got, want) {
		t.Errorf("Categories = %v, want %v", got, want)
	}

	total := 0
	for _, cat := range reg.Categories() {
		total += len(reg.ByCategory(cat))
	}
	if total != len(reg.descriptors) {
		t.Errorf("categories cover %d overlays, want %d", total, len(reg.descriptors))
	}
	if len(reg.ByCategory("none")) != 0 {
		t.Error("unknown category should be empty")
	}
}

func TestTuningPanelHidden(t *testing.T) {
	p := NewTuningPanel(0, 0, 300)
	cur := config.Default().Tuning()

	got, changed, action := p.Draw(cur, false)
	if changed || action != ActionNone || got != cur {
		t.Errorf("hidden panel Draw = %+v, %v, %v", got, changed, action)
	}
	if !p.Toggle() || !p.Visible() {
		t.Error("Toggle should show the panel")
	}
}

func TestToggleText(t *testing.T) {
	if toggleText(true, "Resume", "Pause") != "Resume" || toggleText(false, "Resume", "Pause") != "Pause" {
		t.Error("toggleText picked the wrong label")
	}
}
