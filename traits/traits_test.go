package traits

import (
	"math"
	"math/rand"
	"testing"
)

func testBounds() Bounds {
	var b Bounds
	for i := range b {
		b[i] = Range{Min: 0.01, Max: 1.0}
	}
	return b
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Cohesion, "cohesion"},
		{FoodAttraction, "food_attraction"},
		{AvoidanceDistance, "avoidance_distance"},
		{Count, "unknown"},
		{Kind(-1), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestMutateStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bounds := testBounds()
	s := Set{0.5, 0.9, 0.02, 1.0, 0.3, 0.7}

	for i := 0; i < 10000; i++ {
		s = Mutate(s, 0.5, bounds, rng)
		if !bounds.Contains(s) {
			t.Fatalf("iteration %d: traits %v escaped bounds", i, s)
		}
	}
}

func TestMutateZeroRateIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := Set{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	got := Mutate(s, 0, testBounds(), rng)
	if got != s {
		t.Errorf("Mutate with rate 0 = %v, want %v", got, s)
	}
}

func TestMutateMagnitude(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	bounds := testBounds()
	s := Set{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	const rate = 0.1

	got := Mutate(s, rate, bounds, rng)
	for i := range got {
		if diff := math.Abs(float64(got[i] - s[i])); diff > rate*0.5+1e-6 {
			t.Errorf("trait %v changed by %v, want at most %v", Kind(i), diff, rate*0.5)
		}
	}
}

func TestAverage(t *testing.T) {
	a := Set{0.2, 0.4, 0.6, 0.8, 1.0, 0.0}
	b := Set{0.4, 0.4, 0.2, 0.0, 0.0, 1.0}
	got := Average(a, b)
	want := Set{0.3, 0.4, 0.4, 0.4, 0.5, 0.5}
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("Average[%v] = %v, want %v", Kind(i), got[i], want[i])
		}
	}
}

func TestCrossoverTakesParentValues(t *testing.T) {
	a := Set{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	b := Set{0.9, 0.9, 0.9, 0.9, 0.9, 0.9}

	tests := []struct {
		name string
		p    float32
		want *Set
	}{
		{"never", 0, &a},
		{"always", 1, &b},
		{"mixed", 0.5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(11))
			got := Crossover(a, b, tt.p, rng)
			if tt.want != nil && got != *tt.want {
				t.Fatalf("Crossover = %v, want %v", got, *tt.want)
			}
			for i := range got {
				if got[i] != a[i] && got[i] != b[i] {
					t.Errorf("trait %v = %v, not from either parent", Kind(i), got[i])
				}
			}
		})
	}
}

func TestJitteredClamps(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	bounds := testBounds()
	mean := Set{0.02, 0.5, 0.99, 0.5, 0.5, 0.5}
	jitter := Set{0.5, 0.1, 0.5, 0, 0, 0}

	for i := 0; i < 1000; i++ {
		got := Jittered(mean, jitter, bounds, rng)
		if !bounds.Contains(got) {
			t.Fatalf("Jittered = %v, outside bounds", got)
		}
		if got[Avoidance] != 0.5 {
			t.Fatalf("zero jitter changed trait: %v", got[Avoidance])
		}
	}
}

func TestColorRange(t *testing.T) {
	bounds := testBounds()
	r, g, b := Color(Set{0.01, 1.0, 0.5}, bounds)
	if r != 80 {
		t.Errorf("red at min = %d, want 80", r)
	}
	if g != 255 {
		t.Errorf("green at max = %d, want 255", g)
	}
	if b <= 80 || b >= 255 {
		t.Errorf("blue at mid = %d, want strictly between", b)
	}
}
