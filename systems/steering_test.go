package systems

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/pthm-cable/flock/traits"
)

func defaultFlockParams() FlockParams {
	return FlockParams{
		CohesionDivisor:  10,
		SeparationDistSq: 40 * 40,
		Repulsion:        300,
		Epsilon:          1e-5,
		Damping:          30,
		ForceScale:       0.03,
		MaxSpeed:         1,
		CohesionScale:    1,
		AlignmentScale:   1,
		SeparationScale:  1,
	}
}

func TestNearestKMatchesSort(t *testing.T) {
	states := randomStates(200, 500, 500, 3)
	all := make([]int32, len(states))
	for i := range all {
		all[i] = int32(i)
	}

	for _, k := range []int{1, 5, 8, 500} {
		for self := int32(0); self < 20; self++ {
			got := NearestK(nil, self, all, states, k)

			var want []Neighbor
			for _, s := range all {
				if s == self {
					continue
				}
				dx, dy := states[s].X-states[self].X, states[s].Y-states[self].Y
				want = append(want, Neighbor{Slot: s, DX: dx, DY: dy, DistSq: dx*dx + dy*dy})
			}
			slices.SortFunc(want, func(a, b Neighbor) int {
				if closer(a, b) {
					return -1
				}
				return 1
			})
			if len(want) > k {
				want = want[:k]
			}

			if !slices.Equal(got, want) {
				t.Fatalf("k=%d self=%d: got %v, want %v", k, self, got, want)
			}
		}
	}
}

func TestNearestKTieBreaksByID(t *testing.T) {
	// Four birds at the same distance from slot 0.
	states := []AgentState{
		{ID: 1, X: 100, Y: 100},
		{ID: 2, X: 110, Y: 100},
		{ID: 3, X: 90, Y: 100},
		{ID: 4, X: 100, Y: 110},
		{ID: 5, X: 100, Y: 90},
	}
	got := NearestK(nil, 0, []int32{4, 3, 2, 1, 0}, states, 2)
	if len(got) != 2 || got[0].Slot != 1 || got[1].Slot != 2 {
		t.Errorf("NearestK tie-break = %v, want slots [1 2]", got)
	}
}

func TestNearestKExcludesSelfAndHandlesEmpty(t *testing.T) {
	states := []AgentState{{ID: 1, X: 5, Y: 5}}
	if got := NearestK(nil, 0, []int32{0}, states, 5); len(got) != 0 {
		t.Errorf("NearestK with only self = %v", got)
	}
	if got := NearestK(nil, 0, nil, states, 5); len(got) != 0 {
		t.Errorf("NearestK with no candidates = %v", got)
	}
}

func TestApplyForceKeepsMaxSpeed(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name           string
		vx, vy, fx, fy float32
		weight         float32
		maxSpeed       float32
	}{
		{"no force", 1, 0, 0, 0, 1, 1},
		{"small force", 0.6, 0.8, 3, -2, 0.5, 1},
		{"huge force", 1, 0, -1e6, 1e6, 10, 1},
		{"opposite cancels", 1, 0, -1, 0, 1, 1},
		{"other max speed", 0, 2, 5, 5, 1, 2.5},
		{"nan force", 1, 0, nan, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vx, vy := ApplyForce(tt.vx, tt.vy, tt.fx, tt.fy, tt.weight, 1, tt.maxSpeed, 0.3)
			got := math.Hypot(float64(vx), float64(vy))
			if math.Abs(got-float64(tt.maxSpeed)) > 1e-5 {
				t.Errorf("|v| = %v, want %v", got, tt.maxSpeed)
			}
		})
	}
}

func TestApplyForceZeroFallsBackToHeading(t *testing.T) {
	heading := float32(math.Pi / 2)
	vx, vy := ApplyForce(1, 0, -1, 0, 1, 1, 1, heading)
	if math.Abs(float64(vx)) > 1e-6 || math.Abs(float64(vy)-1) > 1e-6 {
		t.Errorf("velocity = (%v, %v), want heading (0, 1)", vx, vy)
	}
}

func TestApplyForceRandomInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	vx, vy := float32(1), float32(0)
	for i := 0; i < 5000; i++ {
		fx := (rng.Float32()*2 - 1) * 100
		fy := (rng.Float32()*2 - 1) * 100
		vx, vy = ApplyForce(vx, vy, fx, fy, rng.Float32(), 0.05, 1, Heading(vx, vy))
		if got := math.Hypot(float64(vx), float64(vy)); math.Abs(got-1) > 1e-5 {
			t.Fatalf("iteration %d: |v| = %v", i, got)
		}
	}
}

func TestFlockSingleAgentUnchanged(t *testing.T) {
	self := AgentState{ID: 1, X: 200, Y: 200, VX: 0.6, VY: 0.8, Heading: Heading(0.6, 0.8)}
	self.Traits = traits.Set{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	vx, vy := self.VX, self.VY
	for tick := 0; tick < 100; tick++ {
		vx, vy = Flock(&self, vx, vy, nil, []AgentState{self}, defaultFlockParams())
	}
	if vx != 0.6 || vy != 0.8 {
		t.Errorf("velocity drifted to (%v, %v) with no neighbours", vx, vy)
	}
}

func TestFlockSeparationPushesApart(t *testing.T) {
	states := []AgentState{
		{ID: 1, X: 100, Y: 100, VX: 0, VY: 1, Heading: Heading(0, 1)},
		{ID: 2, X: 120, Y: 100, VX: 0, VY: 1, Heading: Heading(0, 1)},
	}
	for i := range states {
		states[i].Traits[traits.Separation] = 1
	}
	p := defaultFlockParams()

	for self := int32(0); self < 2; self++ {
		nbrs := NearestK(nil, self, []int32{0, 1}, states, 5)
		s := &states[self]
		vx, _ := Flock(s, s.VX, s.VY, nbrs, states, p)
		other := states[1-self]
		// Velocity along the line from the other bird to this one must be positive.
		away := (s.X - other.X) * vx
		if away <= 0 {
			t.Errorf("bird %d: vx = %v does not point away from neighbour", s.ID, vx)
		}
	}
}

func TestSeparationIgnoresDistantNeighbours(t *testing.T) {
	nbrs := []Neighbor{{Slot: 1, DX: 50, DY: 0, DistSq: 2500}}
	fx, fy := Separation(nbrs, 40*40, 300, 1e-5)
	if fx != 0 || fy != 0 {
		t.Errorf("Separation beyond limit = (%v, %v), want zero", fx, fy)
	}
}

func TestCohesionPointsToCentre(t *testing.T) {
	nbrs := []Neighbor{
		{Slot: 1, DX: 10, DY: 0},
		{Slot: 2, DX: 30, DY: 20},
	}
	fx, fy := Cohesion(nbrs, 10)
	if fx != 2 || fy != 1 {
		t.Errorf("Cohesion = (%v, %v), want (2, 1)", fx, fy)
	}
}

func TestAlignment(t *testing.T) {
	states := []AgentState{
		{ID: 1},
		{ID: 2, VX: 1, VY: 0},
		{ID: 3, VX: 0, VY: 1},
	}
	nbrs := []Neighbor{{Slot: 1}, {Slot: 2}}
	fx, fy := Alignment(1, 0, nbrs, states)
	if fx != -0.5 || fy != 0.5 {
		t.Errorf("Alignment = (%v, %v), want (-0.5, 0.5)", fx, fy)
	}
}
