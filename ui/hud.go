package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/traits"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Tick      int32
	Count     int
	Cap       int
	Obstacles int
	Food      int
	Speed     int
	FPS       int32
	Paused    bool
	Clients   int
	Stats     telemetry.Stats
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Birds: %d/%d | Obstacles: %d | Food: %d", data.Count, data.Cap, data.Obstacles, data.Food),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | Viewers: %d", data.Tick, data.Speed, data.FPS, data.Clients),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

var traitLabels = [traits.Count]string{"Cohesion", "Alignment", "Separation", "Avoidance", "Food", "Distance"}

// StatsPanel shows the population averages of the last tick.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the panel and returns the Y position below it.
func (s *StatsPanel) Draw(data HUDData, bounds traits.Bounds) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	st := data.Stats

	r.DrawPanel(s.x, s.y, s.width, 16*r.Theme.LineHeight+padding*2)

	x := s.x + padding
	inner := s.width - padding*2
	y := r.DrawSectionHeader(x, s.y+padding, "Population")
	y = r.DrawPopulationBar(x, y, "Birds", data.Count, data.Cap, inner)
	y = r.DrawLabelValue(x, y, "Energy", fmt.Sprintf("%.1f", st.AvgEnergy))
	y = r.DrawLabelValue(x, y, "Generation", fmt.Sprintf("%d", st.MaxGeneration))
	y = r.DrawLabelValue(x, y, "Births", fmt.Sprintf("%d", st.ReproductionCount))
	y = r.DrawLabelValue(x, y, "Collisions", fmt.Sprintf("%d", st.CollisionCount))

	y = r.DrawSectionHeader(x, y+4, "Mean traits")
	mean := traits.Set{
		float32(st.AvgCohesion), float32(st.AvgAlignment), float32(st.AvgSeparation),
		float32(st.AvgAvoidance), float32(st.AvgFoodAttraction), float32(st.AvgAvoidanceDistance),
	}
	for _, k := range traits.All() {
		y = r.DrawBar(x, y, traitLabels[k], mean[k], bounds[k].Min, bounds[k].Max, inner)
	}
	return r.DrawTraitSwatch(x, y, "Colour", mean, bounds)
}

// PerfPanel renders the per-phase tick timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(perf telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Avg: %s (%.0f tps)", perf.AvgTickDuration.Round(time.Microsecond), perf.TicksPerSecond),
		x, y, 14, rl.Yellow,
	)
	y += 16

	for ph := range telemetry.NumPhases {
		pct := perf.PhasePct[ph]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", ph, perf.PhaseAvg[ph].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
