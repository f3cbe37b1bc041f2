package systems

import (
	"math"
	"math/rand"
	"slices"
	"testing"
)

func randomStates(n int, w, h float32, seed int64) []AgentState {
	rng := rand.New(rand.NewSource(seed))
	states := make([]AgentState, n)
	for i := range states {
		states[i] = AgentState{
			ID:     uint32(i + 1),
			X:      rng.Float32() * w,
			Y:      rng.Float32() * h,
			VX:     1,
			Radius: 3,
		}
	}
	return states
}

func buildGrid(states []AgentState, w, h, cell float32) *SpatialGrid {
	g := NewSpatialGrid(w, h, cell)
	for i := range states {
		g.Insert(int32(i), states[i].X, states[i].Y)
	}
	return g
}

func TestSpatialGridEmpty(t *testing.T) {
	g := NewSpatialGrid(800, 600, 100)
	if got := g.QueryNeighbors(nil, 400, 300); len(got) != 0 {
		t.Errorf("empty grid returned %v", got)
	}
	if g.Len() != 0 {
		t.Errorf("Len = %d, want 0", g.Len())
	}
}

func TestSpatialGridClear(t *testing.T) {
	states := randomStates(50, 800, 600, 1)
	g := buildGrid(states, 800, 600, 100)
	if g.Len() != 50 {
		t.Fatalf("Len = %d, want 50", g.Len())
	}
	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Len after Clear = %d", g.Len())
	}
	for x := float32(50); x < 800; x += 100 {
		if got := g.QueryNeighbors(nil, x, 50); len(got) != 0 {
			t.Fatalf("stale slots after Clear: %v", got)
		}
	}
}

func TestSpatialGridConsistent(t *testing.T) {
	tests := []struct {
		name  string
		slots []int32
		n     int
		want  bool
	}{
		{"empty", nil, 0, true},
		{"each once", []int32{0, 1, 2, 3}, 4, true},
		{"missing slot", []int32{0, 1, 2}, 4, false},
		{"duplicate hides missing", []int32{0, 1, 1, 3}, 4, false},
		{"out of range", []int32{0, 1, 2, 7}, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSpatialGrid(800, 600, 100)
			for i, slot := range tt.slots {
				g.Insert(slot, float32(i*150), 50)
			}
			if got := g.Consistent(tt.n); got != tt.want {
				t.Errorf("Consistent(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestCellOfClamps(t *testing.T) {
	g := NewSpatialGrid(800, 600, 100)
	cols, rows := g.Dims()
	tests := []struct {
		name     string
		x, y     float32
		col, row int
	}{
		{"origin", 0, 0, 0, 0},
		{"interior", 250, 399, 2, 3},
		{"negative", -40, -300, 0, 0},
		{"far edge", 800, 600, cols - 1, rows - 1},
		{"beyond", 5000, 5000, cols - 1, rows - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row := g.CellOf(tt.x, tt.y)
			if col != tt.col || row != tt.row {
				t.Errorf("CellOf(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, col, row, tt.col, tt.row)
			}
		})
	}
}

// bruteCell recomputes the clamped cell without the grid.
func bruteCell(x, y, cell float32, cols, rows int) (int, int) {
	c := int(math.Floor(float64(x / cell)))
	r := int(math.Floor(float64(y / cell)))
	c = max(0, min(c, cols-1))
	r = max(0, min(r, rows-1))
	return c, r
}

func TestQueryNeighborsMatchesBruteForce(t *testing.T) {
	const w, h, cell = 1000, 700, 100
	states := randomStates(400, w, h, 42)
	g := buildGrid(states, w, h, cell)
	cols, rows := g.Dims()

	for i := range states {
		got := g.QueryNeighbors(nil, states[i].X, states[i].Y)
		slices.Sort(got)

		sc, sr := bruteCell(states[i].X, states[i].Y, cell, cols, rows)
		var want []int32
		for j := range states {
			oc, or := bruteCell(states[j].X, states[j].Y, cell, cols, rows)
			if abs(oc-sc) <= 1 && abs(or-sr) <= 1 {
				want = append(want, int32(j))
			}
		}

		if !slices.Equal(got, want) {
			t.Fatalf("agent %d: QueryNeighbors = %v, want %v", i, got, want)
		}
	}
}

func TestQueryNeighborsCoversCellSize(t *testing.T) {
	const w, h, cell = 600, 600, 100
	states := randomStates(300, w, h, 7)
	g := buildGrid(states, w, h, cell)

	for i := range states {
		got := g.QueryNeighbors(nil, states[i].X, states[i].Y)
		for j := range states {
			dx := math.Abs(float64(states[i].X - states[j].X))
			dy := math.Abs(float64(states[i].Y - states[j].Y))
			if dx < cell && dy < cell && !slices.Contains(got, int32(j)) {
				t.Fatalf("agent %d within one cell of %d but missing from query", j, i)
			}
		}
	}
}

func TestQueryRadiusMatchesBruteForce(t *testing.T) {
	const w, h, cell = 800, 800, 100
	states := randomStates(300, w, h, 99)
	g := buildGrid(states, w, h, cell)

	for _, radius := range []float32{10, 30, 150} {
		for i := range states {
			got := g.QueryRadius(nil, states[i].X, states[i].Y, radius, int32(i), states)
			gotSlots := make([]int32, len(got))
			for k, n := range got {
				gotSlots[k] = n.Slot
			}
			slices.Sort(gotSlots)

			var want []int32
			for j := range states {
				if j == i {
					continue
				}
				if distanceSq(states[i].X, states[i].Y, states[j].X, states[j].Y) <= radius*radius {
					want = append(want, int32(j))
				}
			}
			if !slices.Equal(gotSlots, want) {
				t.Fatalf("radius %v agent %d: got %v, want %v", radius, i, gotSlots, want)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
