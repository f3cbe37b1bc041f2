package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/flock/traits"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, p10, p50, p90 := ComputeEnergyStats(values)

	// Mean should be 0.55
	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}

	// P10 should be around 0.19
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}

	// P50 should be around 0.55
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}

	// P90 should be around 0.91
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeEnergyStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeEnergyStats([]float64{})

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestComputeTraitStats(t *testing.T) {
	tests := []struct {
		name     string
		sets     []traits.Set
		wantMean float64
		wantStd  float64
	}{
		{"empty", nil, 0, 0},
		{"single", []traits.Set{{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}}, 0.5, 0},
		{"pair", []traits.Set{{0.2, 0.2, 0.2, 0.2, 0.2, 0.2}, {0.4, 0.4, 0.4, 0.4, 0.4, 0.4}}, 0.3, math.Sqrt(0.02)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := ComputeTraitStats(tt.sets)
			for k := range mean {
				if math.Abs(mean[k]-tt.wantMean) > 1e-6 {
					t.Errorf("mean[%v] = %v, want %v", traits.Kind(k), mean[k], tt.wantMean)
				}
				if math.Abs(std[k]-tt.wantStd) > 1e-6 {
					t.Errorf("std[%v] = %v, want %v", traits.Kind(k), std[k], tt.wantStd)
				}
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10)

	if c.ShouldFlush(9) {
		t.Error("ShouldFlush(9) = true before the window ends")
	}
	c.RecordTick(Stats{Births: 2, Deaths: 1, Collisions: 1, FoodEaten: 3})
	c.RecordTick(Stats{Births: 1, Starved: 1, Dropped: 4})
	c.RecordLifespan(100)
	c.RecordLifespan(300)

	if !c.ShouldFlush(10) {
		t.Fatal("ShouldFlush(10) = false at the window end")
	}

	last := Stats{Count: 7, MaxGeneration: 3, StdCohesion: 0.6}
	ws := c.Flush(10, last, []float64{10, 20, 30})

	if ws.Births != 3 || ws.Deaths != 1 || ws.Collisions != 1 || ws.Starved != 1 || ws.Dropped != 4 || ws.FoodEaten != 3 {
		t.Errorf("window counters = %+v", ws)
	}
	if ws.Count != 7 || ws.MaxGeneration != 3 {
		t.Errorf("population = %d gen %d, want 7 gen 3", ws.Count, ws.MaxGeneration)
	}
	if ws.MeanLifespan != 200 {
		t.Errorf("MeanLifespan = %v, want 200", ws.MeanLifespan)
	}
	if math.Abs(ws.EnergyMean-20) > 1e-9 {
		t.Errorf("EnergyMean = %v, want 20", ws.EnergyMean)
	}
	if math.Abs(ws.TraitStdMean-0.1) > 1e-9 {
		t.Errorf("TraitStdMean = %v, want 0.1", ws.TraitStdMean)
	}

	// Counters reset for the next window.
	if c.ShouldFlush(19) {
		t.Error("ShouldFlush(19) = true right after a flush at 10")
	}
	next := c.Flush(20, last, nil)
	if next.Births != 0 || next.MeanLifespan != 0 || next.WindowStartTick != 10 {
		t.Errorf("second window = %+v, want empty counters starting at 10", next)
	}
}

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 5, 0, 50)
	lt.RecordFood(1)
	lt.RecordFood(1)
	lt.RecordChild(1)
	lt.RecordEvasion(1)
	lt.UpdateEnergy(1, 80)
	lt.UpdateEnergy(1, 60)
	lt.RecordFood(99) // unknown ids are ignored

	s := lt.Get(1)
	if s == nil {
		t.Fatal("Get(1) = nil")
	}
	want := LifetimeStats{BirthTick: 5, Children: 1, FoodEaten: 2, Evasions: 1, PeakEnergy: 80}
	if *s != want {
		t.Errorf("stats = %+v, want %+v", *s, want)
	}

	if removed := lt.Remove(1); removed == nil || lt.Count() != 0 {
		t.Errorf("Remove(1) = %v, count %d", removed, lt.Count())
	}
}
