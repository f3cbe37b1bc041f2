package environment

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
)

func TestPatchNoiseRange(t *testing.T) {
	n := newPatchNoise(7, 3)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		x, y, z := rng.Float64()*50, rng.Float64()*50, rng.Float64()*5
		v := n.Sample(x, y, z)
		if v < 0 || v > 1 {
			t.Fatalf("Sample(%v, %v, %v) = %v, outside [0, 1]", x, y, z, v)
		}
	}
}

func TestPatchNoiseDeterministic(t *testing.T) {
	a, b := newPatchNoise(42, 3), newPatchNoise(42, 3)
	for _, p := range [][3]float64{{0.5, 0.5, 0}, {3.2, 7.9, 1.1}, {10.01, 0.3, 2}} {
		if a.Sample(p[0], p[1], p[2]) != b.Sample(p[0], p[1], p[2]) {
			t.Errorf("same seed gave different samples at %v", p)
		}
	}
}

func TestCometHitboxInsideBounds(t *testing.T) {
	c := &Comet{
		Head:  systems.Rect{X: 100, Y: 50, W: 20, H: 20},
		Trail: 40,
		VX:    -2,
		VY:    2,
	}
	b := c.Bounds()
	if !b.ContainsRect(c.SolidHitbox()) {
		t.Errorf("bounds %+v do not contain head %+v", b, c.SolidHitbox())
	}
	if b.W <= c.Head.W || b.H <= c.Head.H {
		t.Errorf("bounds %+v should extend beyond the head along the trail", b)
	}
	// The trail points away from the direction of travel: up and right.
	tx, ty := c.TrailEnd()
	hx, hy := c.Head.Center()
	if tx <= hx || ty >= hy {
		t.Errorf("trail end (%v, %v) not behind head (%v, %v)", tx, ty, hx, hy)
	}
}

func TestObstacleFieldLifecycle(t *testing.T) {
	cfg := config.Default()
	cfg.Obstacles.Initial = 0
	cfg.Obstacles.Max = 3
	cfg.Obstacles.SpawnInterval = 10
	cfg.Obstacles.CometFraction = 0
	cfg.Obstacles.MinSpeed = 50
	cfg.Obstacles.MaxSpeed = 50

	f := NewObstacleField(cfg, rand.New(rand.NewSource(3)))
	if f.Len() != 0 {
		t.Fatalf("Len = %d, want 0", f.Len())
	}

	f.Update(10)
	if f.Len() != 1 {
		t.Fatalf("after spawn tick Len = %d, want 1", f.Len())
	}
	obs := f.Obstacles()
	if vx, vy := obs[0].Velocity(); vx != -50 || vy != 0 {
		t.Errorf("block velocity = (%v, %v), want (-50, 0)", vx, vy)
	}
	if obs[0].Bounds() != obs[0].SolidHitbox() {
		t.Error("block hitbox should equal its bounds")
	}

	// 1280 wide world at 50 per tick: gone well within 40 ticks.
	for tick := int32(11); tick < 60; tick++ {
		if tick%10 == 0 {
			continue
		}
		f.Update(tick)
	}
	if f.Len() != 0 {
		t.Errorf("Len = %d after the block crossed the world, want 0", f.Len())
	}
}

func TestObstacleFieldRespectsMax(t *testing.T) {
	cfg := config.Default()
	cfg.Obstacles.Initial = 10
	cfg.Obstacles.Max = 4
	cfg.Obstacles.SpawnInterval = 1
	cfg.Obstacles.MinSpeed = 0
	cfg.Obstacles.MaxSpeed = 0

	f := NewObstacleField(cfg, rand.New(rand.NewSource(5)))
	for tick := int32(1); tick <= 20; tick++ {
		f.Update(tick)
		if f.Len() > 4 {
			t.Fatalf("tick %d: Len = %d, want <= 4", tick, f.Len())
		}
	}
}

func TestFoodFieldSpawnAndRemove(t *testing.T) {
	cfg := config.Default()
	cfg.Food.SpawnCount = 5
	cfg.Food.MaxItems = 8
	cfg.Food.SpawnInterval = 10
	cfg.Food.PatchThreshold = 0 // accept every sample

	f := NewFoodField(cfg, rand.New(rand.NewSource(9)))
	if len(f.Items()) != 5 {
		t.Fatalf("initial items = %d, want 5", len(f.Items()))
	}

	f.Update(10)
	if len(f.Items()) != 8 {
		t.Fatalf("items after second wave = %d, want max 8", len(f.Items()))
	}

	seen := map[uint32]bool{}
	for _, it := range f.Items() {
		if seen[it.ID] {
			t.Errorf("duplicate food id %d", it.ID)
		}
		seen[it.ID] = true
		if it.X < 0 || it.X >= cfg.Derived.WorldW32 || it.Y < 0 || it.Y >= cfg.Derived.WorldH32 {
			t.Errorf("food %d at (%v, %v) outside the world", it.ID, it.X, it.Y)
		}
		if it.Energy != float32(cfg.Food.EnergyValue) {
			t.Errorf("food energy = %v, want %v", it.Energy, cfg.Food.EnergyValue)
		}
	}

	f.Items()[0].Eaten = true
	f.Items()[3].Eaten = true
	if n := f.RemoveEaten(); n != 2 {
		t.Errorf("RemoveEaten = %d, want 2", n)
	}
	if len(f.Items()) != 6 {
		t.Errorf("items = %d, want 6", len(f.Items()))
	}
}

func TestFoodFieldThresholdRejects(t *testing.T) {
	cfg := config.Default()
	cfg.Food.PatchThreshold = 1.01 // above any noise value
	f := NewFoodField(cfg, rand.New(rand.NewSource(2)))
	if len(f.Items()) != 0 {
		t.Errorf("items = %d, want 0 when no sample can pass", len(f.Items()))
	}
}
