// Package inspector shows the components of a selected bird, using
// reflection over `inspect` struct tags to choose widgets.
package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

// Panel dimensions
const (
	PanelWidth     = 320
	PanelPadding   = 10
	HeaderHeight   = 30
	clickTolerance = 5
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Inspector tracks the selected bird and draws its panel.
type Inspector struct {
	selected    uint32
	hasSelected bool
	panelX      int32
	panelY      int32
}

// NewInspector creates an inspector whose panel sits at the right edge of the screen.
func NewInspector(screenWidth int32) *Inspector {
	return &Inspector{
		panelX: screenWidth - PanelWidth - 10,
		panelY: 10,
	}
}

// PickBird returns the closest bird whose body, widened by a small click
// tolerance, contains (x, y).
func PickBird(birds []game.BirdView, x, y float32) (uint32, bool) {
	var best uint32
	bestDist := float32(math.MaxFloat32)
	found := false

	for _, b := range birds {
		dx, dy := x-b.X, y-b.Y
		dist := dx*dx + dy*dy
		hit := b.Radius + clickTolerance
		if dist < hit*hit && dist < bestDist {
			best, bestDist, found = b.ID, dist, true
		}
	}
	return best, found
}

// HandleInput processes clicks. The panel is hit-tested in screen space and
// birds are picked in world space.
func (ins *Inspector) HandleInput(screenX, screenY, worldX, worldY float32, birds []game.BirdView) {
	// Right click or Escape to deselect
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	sx, sy := int32(screenX), int32(screenY)
	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if sx >= closeX && sx <= closeX+20 && sy >= closeY && sy <= closeY+20 {
			ins.Deselect()
			return
		}
		// Clicks inside the panel do not select
		if sx >= ins.panelX && sx <= ins.panelX+PanelWidth && sy >= ins.panelY {
			return
		}
	}

	if id, ok := PickBird(birds, worldX, worldY); ok {
		ins.Select(id)
	}
}

// Select selects a bird by ID.
func (ins *Inspector) Select(id uint32) {
	ins.selected = id
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the currently selected bird.
func (ins *Inspector) Selected() (uint32, bool) {
	return ins.selected, ins.hasSelected
}

// Sections returns the inspectable sections of the selected bird, including
// its lifetime stats. A bird that died is deselected.
func (ins *Inspector) Sections(g *game.Game) []Section {
	if !ins.hasSelected {
		return nil
	}
	comps, ok := g.Components(ins.selected)
	if !ok {
		ins.Deselect()
		return nil
	}
	if ls := g.Lifetime(ins.selected); ls != nil {
		comps = append(comps, *ls)
	}
	return Inspect(comps)
}

// Draw renders the inspector panel if a bird is selected.
func (ins *Inspector) Draw(g *game.Game) {
	sections := ins.Sections(g)
	if sections == nil {
		return
	}

	h := panelHeight(sections)
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, h, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(h)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(fmt.Sprintf("BIRD %d", ins.selected), ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding
	for _, s := range sections {
		ins.drawSectionHeader(x, y, s.Title)
		y += 20
		for _, f := range s.Fields {
			y += DrawField(x, y, f)
		}
		y += 4
	}
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// panelHeight sums the heights of every section and field.
func panelHeight(sections []Section) int32 {
	h := int32(HeaderHeight + 2*PanelPadding)
	for _, s := range sections {
		h += 24
		for _, f := range s.Fields {
			h += FieldHeight(f)
		}
	}
	return h
}

// DrawSelectionHighlight rings the selected bird and shows its food scan,
// mating and obstacle reaction ranges.
func (ins *Inspector) DrawSelectionHighlight(birds []game.BirdView, cfg *config.Config) {
	if !ins.hasSelected {
		return
	}
	for _, b := range birds {
		if b.ID != ins.selected {
			continue
		}
		cx, cy := int32(b.X), int32(b.Y)
		rl.DrawCircleLines(cx, cy, b.Radius*2.5, rl.Yellow)
		rl.DrawCircleLines(cx, cy, float32(cfg.Reproduction.MatingRadius), rl.Fade(rl.Pink, 0.5))
		rl.DrawCircleLines(cx, cy, float32(cfg.Food.ScanRadius), rl.Fade(rl.Green, 0.3))

		color := rl.Fade(rl.SkyBlue, 0.3)
		if b.Flags.Has(components.FlagObstacleAhead) {
			color = rl.Fade(rl.Red, 0.6)
		}
		rl.DrawCircleLines(cx, cy, float32(cfg.Avoidance.ReactionDistance), color)
	}
}
