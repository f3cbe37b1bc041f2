package environment

import (
	"math/rand"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
)

const (
	patchAttempts = 30     // rejection samples per item
	patchDrift    = 0.0015 // noise time units per tick
)

// FoodField spawns food in slowly drifting noise patches.
type FoodField struct {
	cfg           config.FoodConfig
	width, height float32
	rng           *rand.Rand
	noise         *patchNoise

	items  []*systems.Food
	nextID uint32
}

// NewFoodField creates a field and spawns the first wave.
func NewFoodField(cfg *config.Config, rng *rand.Rand) *FoodField {
	f := &FoodField{
		cfg:    cfg.Food,
		width:  cfg.Derived.WorldW32,
		height: cfg.Derived.WorldH32,
		rng:    rng,
		noise:  newPatchNoise(rng.Int63(), 3),
		nextID: 1,
	}
	f.spawnWave(0)
	return f
}

// Update drops eaten items and spawns a wave every spawn_interval ticks.
func (f *FoodField) Update(tick int32) {
	f.RemoveEaten()
	if int(tick)%f.cfg.SpawnInterval == 0 {
		f.spawnWave(tick)
	}
}

// Items returns the live food. Birds mark claimed items as eaten.
func (f *FoodField) Items() []*systems.Food {
	return f.items
}

// RemoveEaten drops every eaten item and returns how many were removed.
func (f *FoodField) RemoveEaten() int {
	kept := f.items[:0]
	for _, it := range f.items {
		if !it.Eaten {
			kept = append(kept, it)
		}
	}
	removed := len(f.items) - len(kept)
	clear(f.items[len(kept):])
	f.items = kept
	return removed
}

// Add places one item at (x, y), ignoring the patch field and the item limit.
func (f *FoodField) Add(x, y float32) *systems.Food {
	it := &systems.Food{
		ID:     f.nextID,
		X:      x,
		Y:      y,
		Radius: float32(f.cfg.Radius),
		Energy: float32(f.cfg.EnergyValue),
	}
	f.nextID++
	f.items = append(f.items, it)
	return it
}

func (f *FoodField) spawnWave(tick int32) {
	for i := 0; i < f.cfg.SpawnCount && len(f.items) < f.cfg.MaxItems; i++ {
		if x, y, ok := f.samplePatch(tick); ok {
			f.Add(x, y)
		}
	}
}

// samplePatch draws random points until one lands where the noise is above the threshold.
func (f *FoodField) samplePatch(tick int32) (x, y float32, ok bool) {
	t := float64(tick) * patchDrift
	for range patchAttempts {
		x = f.rng.Float32() * f.width
		y = f.rng.Float32() * f.height
		if f.noise.Sample(float64(x)*f.cfg.PatchScale, float64(y)*f.cfg.PatchScale, t) >= f.cfg.PatchThreshold {
			return x, y, true
		}
	}
	return 0, 0, false
}
