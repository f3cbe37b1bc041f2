package components

import "github.com/pthm-cable/flock/traits"

// Energy tracks a bird's metabolic state.
// Value is used by energy-mode reproduction, FoodCounter by counter mode.
type Energy struct {
	Value       float32 `inspect:"bar,max:200"`
	FoodCounter int32   `inspect:"label"`
	Alive       bool    `inspect:"bool"`
}

// Genome holds the heritable traits and lineage of a bird.
type Genome struct {
	Traits     traits.Set `inspect:"bar,labels:coh|ali|sep|avo|food|dist"`
	Generation uint32     `inspect:"label"`
	ParentA    uint32     `inspect:"skip"`
	ParentB    uint32     `inspect:"skip"`
}

// Organism bundles identity and per-tick state.
type Organism struct {
	ID        uint32 `inspect:"label"`
	BirthTick int32  `inspect:"label"`
	State     Flags  `inspect:"skip"`
}
