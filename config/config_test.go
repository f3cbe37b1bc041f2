package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/flock/traits"
)

func TestDefaultsValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Derived.WorldW32 != float32(cfg.Screen.Width) {
		t.Errorf("WorldW32 = %v, want screen width %d", cfg.Derived.WorldW32, cfg.Screen.Width)
	}
	if want := int(cfg.Population.CapMultiplier * float64(cfg.Population.Initial)); cfg.Derived.PopulationCap != want {
		t.Errorf("PopulationCap = %d, want %d", cfg.Derived.PopulationCap, want)
	}
	if got := cfg.Derived.TraitBounds[traits.Separation]; got.Min != 0.01 || got.Max != 1 {
		t.Errorf("separation bounds = %+v, want [0.01, 1]", got)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "population:\n  initial: 10\n  max: 25\nphysics:\n  boundary: bounce\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Population.Initial != 10 || cfg.Derived.PopulationCap != 25 {
		t.Errorf("population = %+v cap %d, want initial 10 cap 25", cfg.Population, cfg.Derived.PopulationCap)
	}
	if cfg.Physics.Boundary != BoundaryBounce {
		t.Errorf("boundary = %q, want bounce", cfg.Physics.Boundary)
	}
	// Untouched sections keep their defaults.
	if cfg.Flocking.NumNeighbors != 5 {
		t.Errorf("num_neighbors = %d, want default 5", cfg.Flocking.NumNeighbors)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"zero cell size", "physics:\n  grid_cell_size: 0\n", "physics.grid_cell_size"},
		{"negative threshold", "reproduction:\n  threshold: -5\n", "reproduction.threshold"},
		{"unknown boundary", "physics:\n  boundary: torus\n", "physics.boundary"},
		{"unknown policy", "avoidance:\n  policy: psychic\n", "avoidance.policy"},
		{"cost above threshold", "reproduction:\n  threshold: 50\n  cost: 80\n", "reproduction.cost"},
		{"no neighbors", "flocking:\n  num_neighbors: 0\n", "flocking.num_neighbors"},
		{"mutation above one", "mutation:\n  rate: 1.5\n", "mutation.rate"},
		{"max below initial", "population:\n  initial: 20\n  max: 10\n", "population.max"},
		{"inverted trait range", "traits:\n  cohesion:\n    min: 0.9\n    max: 0.1\n", "traits.cohesion"},
		{"initial outside range", "traits:\n  alignment:\n    initial: 2\n", "traits.alignment.initial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	_, err := Parse([]byte("physics:\n  grid_cell_size: 0\n  max_speed: -1\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"physics.grid_cell_size", "physics.max_speed"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q missing %s", err, field)
		}
	}
}

func TestApplyTuning(t *testing.T) {
	cfg := Default()
	tn := cfg.Tuning()
	tn.NumNeighbors = 8
	tn.GlobalSpeedFactor = 2

	if err := cfg.ApplyTuning(tn); err != nil {
		t.Fatalf("ApplyTuning error: %v", err)
	}
	if cfg.Flocking.NumNeighbors != 8 || cfg.Physics.GlobalSpeedFactor != 2 {
		t.Errorf("tuning not applied: neighbors %d speed %v", cfg.Flocking.NumNeighbors, cfg.Physics.GlobalSpeedFactor)
	}

	bad := cfg.Tuning()
	bad.NumNeighbors = 0
	if err := cfg.ApplyTuning(bad); err == nil {
		t.Fatal("expected error for zero neighbors")
	}
	if cfg.Flocking.NumNeighbors != 8 {
		t.Errorf("rejected tuning modified config: neighbors = %d", cfg.Flocking.NumNeighbors)
	}
}

func TestTuningValuesRoundTrip(t *testing.T) {
	tn := Default().Tuning()
	got := TuningFromValues(tn.Values())
	if got != tn {
		t.Errorf("TuningFromValues(Values()) = %+v, want %+v", got, tn)
	}
	if len(tn.Values()) != len(TuningLimits) {
		t.Errorf("Values has %d entries, TuningLimits has %d", len(tn.Values()), len(TuningLimits))
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Population.Initial = 33
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Population.Initial != 33 {
		t.Errorf("initial = %d, want 33", loaded.Population.Initial)
	}
}
