package game

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/traits"
)

// BirdView is the read-only per-bird data handed to renderers and streams.
type BirdView struct {
	ID          uint32           `json:"id"`
	X           float32          `json:"x"`
	Y           float32          `json:"y"`
	Heading     float32          `json:"heading"`
	Radius      float32          `json:"radius"`
	Energy      float32          `json:"energy"`
	FoodCounter int32            `json:"food_counter"`
	Generation  uint32           `json:"generation"`
	Traits      traits.Set       `json:"traits"`
	Flags       components.Flags `json:"flags"`
	Alive       bool             `json:"alive"`
}

// Birds appends every live bird to dst in ascending ID order.
func (g *Game) Birds(dst []BirdView) []BirdView {
	start := len(dst)
	query := g.birdFilter.Query()
	for query.Next() {
		pos, _, rot, body, energy, genome, org := query.Get()
		if !energy.Alive {
			continue
		}
		dst = append(dst, BirdView{
			ID:          org.ID,
			X:           pos.X,
			Y:           pos.Y,
			Heading:     rot.Heading,
			Radius:      body.Radius,
			Energy:      energy.Value,
			FoodCounter: energy.FoodCounter,
			Generation:  genome.Generation,
			Traits:      genome.Traits,
			Flags:       org.State,
			Alive:       true,
		})
	}
	slices.SortFunc(dst[start:], func(a, b BirdView) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return dst
}

// Components returns copies of the components of a live bird, for inspection.
func (g *Game) Components(id uint32) ([]any, bool) {
	var out []any
	query := g.birdFilter.Query()
	for query.Next() {
		pos, vel, rot, body, energy, genome, org := query.Get()
		if org.ID == id && energy.Alive {
			out = []any{*org, *pos, *vel, *rot, *body, *energy, *genome}
		}
	}
	return out, out != nil
}

func sortBirdStates(birds []telemetry.BirdState) {
	slices.SortFunc(birds, func(a, b telemetry.BirdState) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
