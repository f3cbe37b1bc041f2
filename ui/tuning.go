package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/config"
)

// TuningAction is a button pressed on the tuning panel.
type TuningAction int

const (
	ActionNone TuningAction = iota
	ActionPause
	ActionReset
	ActionSnapshot
)

// TuningPanel draws one slider per live-tunable parameter.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewTuningPanel creates a hidden tuning panel.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (p *TuningPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Visible reports whether the panel is shown.
func (p *TuningPanel) Visible() bool {
	return p.visible
}

// Contains reports whether a screen point is over the visible panel.
func (p *TuningPanel) Contains(x, y float32) bool {
	if !p.visible {
		return false
	}
	return x >= float32(p.x) && x <= float32(p.x+p.width) &&
		y >= float32(p.y) && y <= float32(p.y+p.Height())
}

// Height returns the panel height in pixels.
func (p *TuningPanel) Height() int32 {
	return int32(len(config.TuningLimits))*34 + 90
}

// Draw renders the sliders for current. It returns the edited tuning, whether
// any slider moved, and the button pressed this frame.
func (p *TuningPanel) Draw(current config.Tuning, paused bool) (config.Tuning, bool, TuningAction) {
	if !p.visible {
		return current, false, ActionNone
	}

	r := p.renderer
	padding := float32(r.Theme.Padding)
	r.DrawPanel(p.x, p.y, p.width, p.Height())

	x := float32(p.x) + padding
	y := float32(p.y) + padding
	sliderWidth := float32(p.width) - padding*2 - 60

	rl.DrawText("Tuning", int32(x), int32(y), 16, rl.White)
	y += 24

	values := current.Values()
	changed := false
	for i, lim := range config.TuningLimits {
		rl.DrawText(lim.Name, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderWidth, Height: 14},
			"", "",
			float32(values[i]), float32(lim.Min), float32(lim.Max),
		)
		rl.DrawText(fmt.Sprintf("%.2f", values[i]), int32(x+sliderWidth+6), int32(y+1), r.Theme.FontSize, r.Theme.ValueColor)
		if v != float32(values[i]) {
			values[i] = float64(v)
			changed = true
		}
		y += 20
	}

	y += 8
	action := ActionNone
	buttonWidth := (float32(p.width) - padding*2 - 20) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: buttonWidth, Height: 26}, toggleText(paused, "Resume", "Pause")) {
		action = ActionPause
	}
	if gui.Button(rl.Rectangle{X: x + buttonWidth + 10, Y: y, Width: buttonWidth, Height: 26}, "Reset") {
		action = ActionReset
	}
	if gui.Button(rl.Rectangle{X: x + 2*(buttonWidth+10), Y: y, Width: buttonWidth, Height: 26}, "Snapshot") {
		action = ActionSnapshot
	}

	if !changed {
		return current, false, action
	}
	return config.TuningFromValues(values), true, action
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
