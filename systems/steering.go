package systems

import (
	"container/heap"
	"math"
	"slices"

	"github.com/pthm-cable/flock/traits"
)

// AgentState is the read-only copy of one bird taken at the start of a tick.
// Every neighbour query during the tick reads these copies, never live components.
type AgentState struct {
	ID          uint32
	X, Y        float32
	VX, VY      float32
	Heading     float32
	Radius      float32
	Energy      float32
	FoodCounter int32
	Traits      traits.Set
}

// Box returns the bird's axis-aligned bounding box.
func (a *AgentState) Box() Rect {
	return BoxAround(a.X, a.Y, a.Radius)
}

// Neighbor holds a nearby slot with precomputed spatial data.
// DX, DY point from the query origin to the neighbour.
type Neighbor struct {
	Slot   int32
	DX, DY float32
	DistSq float32 // Squared distance (avoid sqrt in hot path)
}

// closer orders neighbours by distance, then by slot.
// Slots follow ascending bird ID, so ties resolve by ID.
func closer(a, b Neighbor) bool {
	if a.DistSq != b.DistSq {
		return a.DistSq < b.DistSq
	}
	return a.Slot < b.Slot
}

// nearestHeap is a max-heap: the farthest kept neighbour sits at the root.
type nearestHeap []Neighbor

func (h nearestHeap) Len() int           { return len(h) }
func (h nearestHeap) Less(i, j int) bool { return closer(h[j], h[i]) }
func (h nearestHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nearestHeap) Push(x any)        { *h = append(*h, x.(Neighbor)) }
func (h *nearestHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// NearestK selects the k candidates closest to slot self, excluding self.
// The result reuses dst's storage and is sorted nearest first.
func NearestK(dst []Neighbor, self int32, candidates []int32, states []AgentState, k int) []Neighbor {
	h := nearestHeap(dst[:0])
	if k <= 0 {
		return h
	}
	me := &states[self]
	for _, slot := range candidates {
		if slot == self {
			continue
		}
		o := &states[slot]
		dx, dy := o.X-me.X, o.Y-me.Y
		n := Neighbor{Slot: slot, DX: dx, DY: dy, DistSq: dx*dx + dy*dy}
		if len(h) < k {
			heap.Push(&h, n)
		} else if closer(n, h[0]) {
			h[0] = n
			heap.Fix(&h, 0)
		}
	}
	slices.SortFunc(h, func(a, b Neighbor) int {
		if closer(a, b) {
			return -1
		}
		if closer(b, a) {
			return 1
		}
		return 0
	})
	return h
}

// Alignment returns the mean neighbour velocity minus the bird's own.
func Alignment(vx, vy float32, nbrs []Neighbor, states []AgentState) (fx, fy float32) {
	if len(nbrs) == 0 {
		return 0, 0
	}
	var sx, sy float32
	for _, n := range nbrs {
		sx += states[n.Slot].VX
		sy += states[n.Slot].VY
	}
	inv := 1 / float32(len(nbrs))
	return sx*inv - vx, sy*inv - vy
}

// Cohesion returns the offset to the neighbours' centre of mass, divided by divisor.
func Cohesion(nbrs []Neighbor, divisor float32) (fx, fy float32) {
	if len(nbrs) == 0 {
		return 0, 0
	}
	var sx, sy float32
	for _, n := range nbrs {
		sx += n.DX
		sy += n.DY
	}
	inv := 1 / float32(len(nbrs))
	return sx * inv / divisor, sy * inv / divisor
}

// Separation sums repulsion * (self - neighbour) / (distSq + eps) over neighbours
// closer than the separation distance. Both sides of the comparison are squared.
func Separation(nbrs []Neighbor, distSqLimit, repulsion, eps float32) (fx, fy float32) {
	for _, n := range nbrs {
		if n.DistSq >= distSqLimit {
			continue
		}
		k := repulsion / (n.DistSq + eps)
		fx -= n.DX * k
		fy -= n.DY * k
	}
	return fx, fy
}

// ApplyForce adds f * weight * scale to v and rescales v to maxSpeed.
// If the sum is zero or not finite the bird keeps flying along heading.
func ApplyForce(vx, vy, fx, fy, weight, scale, maxSpeed, heading float32) (float32, float32) {
	nx := vx + fx*weight*scale
	ny := vy + fy*weight*scale
	mag := velocityMagnitude(nx, ny)
	if !Finite(nx, ny, mag) || mag < 1e-9 {
		return float32(math.Cos(float64(heading))) * maxSpeed, float32(math.Sin(float64(heading))) * maxSpeed
	}
	s := maxSpeed / mag
	return nx * s, ny * s
}

// FlockParams holds the flocking constants for one tick.
type FlockParams struct {
	CohesionDivisor  float32
	SeparationDistSq float32
	Repulsion        float32
	Epsilon          float32
	Damping          float32 // separation weight = strength / damping
	ForceScale       float32
	MaxSpeed         float32
	CohesionScale    float32
	AlignmentScale   float32
	SeparationScale  float32
}

// Flock applies alignment, cohesion and separation in that order.
// With no neighbours the velocity is returned unchanged.
func Flock(self *AgentState, vx, vy float32, nbrs []Neighbor, states []AgentState, p FlockParams) (float32, float32) {
	if len(nbrs) == 0 {
		return vx, vy
	}
	t := &self.Traits

	ax, ay := Alignment(vx, vy, nbrs, states)
	vx, vy = ApplyForce(vx, vy, ax, ay, t[traits.Alignment]*p.AlignmentScale, p.ForceScale, p.MaxSpeed, self.Heading)

	cx, cy := Cohesion(nbrs, p.CohesionDivisor)
	vx, vy = ApplyForce(vx, vy, cx, cy, t[traits.Cohesion]*p.CohesionScale, p.ForceScale, p.MaxSpeed, self.Heading)

	sx, sy := Separation(nbrs, p.SeparationDistSq, p.Repulsion, p.Epsilon)
	vx, vy = ApplyForce(vx, vy, sx, sy, t[traits.Separation]/p.Damping*p.SeparationScale, p.ForceScale, p.MaxSpeed, self.Heading)

	return vx, vy
}
