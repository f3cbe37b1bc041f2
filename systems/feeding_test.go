package systems

import (
	"math"
	"testing"
)

func TestNearestFood(t *testing.T) {
	food := []*Food{
		{ID: 1, X: 150, Y: 100},
		{ID: 2, X: 100, Y: 130, Eaten: true},
		{ID: 3, X: 100, Y: 150},
		{ID: 4, X: 300, Y: 300},
	}
	idx, d := NearestFood(100, 100, 100, food)
	// Items 1 and 3 are both 50 away; the lower index wins. Item 2 is eaten.
	if idx != 0 || d != 2500 {
		t.Errorf("NearestFood = (%d, %v), want (0, 2500)", idx, d)
	}

	if idx, _ := NearestFood(100, 100, 40, food); idx != -1 {
		t.Errorf("NearestFood outside scan radius = %d, want -1", idx)
	}
	if idx, _ := NearestFood(0, 0, 1000, nil); idx != -1 {
		t.Errorf("NearestFood on empty list = %d, want -1", idx)
	}
}

func TestSeekFoodConstantPull(t *testing.T) {
	for _, dist := range []float32{1, 10, 120} {
		fx, fy, w := SeekFood(0, 0, dist, 0, 0.5)
		pull := math.Hypot(float64(fx*w), float64(fy*w))
		if math.Abs(pull-0.5) > 1e-6 {
			t.Errorf("distance %v: pull %v, want 0.5", dist, pull)
		}
		if fy != 0 || fx <= 0 {
			t.Errorf("distance %v: force (%v, %v) does not point at food", dist, fx, fy)
		}
	}
	if fx, fy, w := SeekFood(5, 5, 5, 5, 1); fx != 0 || fy != 0 || w != 0 {
		t.Errorf("SeekFood at distance 0 = (%v, %v, %v), want zero", fx, fy, w)
	}
}

func TestClaimFoodFirstClaimWins(t *testing.T) {
	item := &Food{ID: 7, X: 200, Y: 200, Radius: 4, Energy: 25}
	food := []*Food{item}

	// Two birds on top of the same item in one tick.
	first := ClaimFood(BoxAround(200, 200, 3), food)
	second := ClaimFood(BoxAround(201, 200, 3), food)

	if first != item {
		t.Fatalf("first claim = %v, want item", first)
	}
	if second != nil {
		t.Errorf("second claim = %+v, want nil", second)
	}
	if !item.Eaten {
		t.Error("claimed item not marked eaten")
	}
}

func TestClaimFoodPicksNearestOverlap(t *testing.T) {
	food := []*Food{
		{ID: 1, X: 105, Y: 100, Radius: 4},
		{ID: 2, X: 101, Y: 100, Radius: 4},
		{ID: 3, X: 140, Y: 100, Radius: 4},
	}
	got := ClaimFood(BoxAround(100, 100, 3), food)
	if got == nil || got.ID != 2 {
		t.Fatalf("ClaimFood = %+v, want item 2", got)
	}
	if food[0].Eaten || food[2].Eaten {
		t.Error("only one item may be eaten per claim")
	}
}
