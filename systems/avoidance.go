package systems

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/pthm-cable/flock/traits"
)

// AvoidanceParams holds the constants shared by both avoidance policies.
type AvoidanceParams struct {
	ReactionDistance   float32
	BandScale          float32
	EvasionMagnitude   float32
	WeightScale        float32
	StrengthScale      float32
	SpeedFactor        float32 // converts bird velocity to world units per tick
	HorizonFrames      float64
	PredictionStrength float64
	SafetyBuffer       float64
	Epsilon            float64
}

// Avoidance is the steering contribution of one policy for one bird.
type Avoidance struct {
	FX, FY    float32
	Weight    float32
	Ahead     bool // an obstacle needs evading; flocking is skipped
	Predicted bool // a collision is predicted within the horizon
}

// AvoidancePolicy computes obstacle steering for one bird.
// Implementations read only their arguments and are safe for concurrent use.
type AvoidancePolicy interface {
	Steer(a *AgentState, obstacles []Obstacle) Avoidance
}

// NewAvoidancePolicy returns the policy registered under name.
func NewAvoidancePolicy(name string, p AvoidanceParams) (AvoidancePolicy, error) {
	switch name {
	case "reactive":
		return ReactiveAvoidance{Params: p}, nil
	case "predictive":
		return PredictiveAvoidance{Params: p}, nil
	default:
		return nil, fmt.Errorf("unknown avoidance policy %q", name)
	}
}

// ReactiveAvoidance pushes the bird vertically away from obstacles that are
// close ahead on the x axis and inside a vertical band around it.
type ReactiveAvoidance struct {
	Params AvoidanceParams
}

// Steer implements AvoidancePolicy.
func (r ReactiveAvoidance) Steer(a *AgentState, obstacles []Obstacle) Avoidance {
	p := r.Params
	box := a.Box()
	band := p.BandScale * a.Traits[traits.AvoidanceDistance]

	var out Avoidance
	for _, o := range obstacles {
		b := o.Bounds()
		if !(b.Right() > box.Left() && b.Left() < box.Right()+p.ReactionDistance) {
			continue
		}
		if !(box.Top()-band < b.Bottom() && box.Bottom()+band > b.Top()) {
			continue
		}
		out.Ahead = true
		_, cy := b.Center()
		if a.Y < cy {
			out.FY -= p.EvasionMagnitude
		} else {
			out.FY += p.EvasionMagnitude
		}
	}
	if out.Ahead {
		out.Weight = a.Traits[traits.Avoidance] * p.WeightScale * p.StrengthScale
	}
	return out
}

// PredictiveAvoidance steers away from the closest point of approach (CPA)
// with each obstacle's solid hitbox, when that approach falls inside the horizon
// and closer than the safe distance.
type PredictiveAvoidance struct {
	Params AvoidanceParams
}

// Steer implements AvoidancePolicy.
func (pa PredictiveAvoidance) Steer(a *AgentState, obstacles []Obstacle) Avoidance {
	p := pa.Params
	agentPos := r2.Point{X: float64(a.X), Y: float64(a.Y)}
	agentVel := r2.Point{X: float64(a.VX * p.SpeedFactor), Y: float64(a.VY * p.SpeedFactor)}

	var out Avoidance
	var force r2.Point
	for _, o := range obstacles {
		push, ok := predictPush(agentPos, agentVel, float64(a.Radius), float64(a.Traits[traits.AvoidanceDistance]), o, p)
		if !ok {
			continue
		}
		out.Predicted = true
		force = force.Add(push)
	}
	if out.Predicted {
		out.Ahead = true
		out.FX = float32(force.X)
		out.FY = float32(force.Y)
		out.Weight = a.Traits[traits.Avoidance] * p.WeightScale * p.StrengthScale
	}
	return out
}

// CPA is the closest point of approach between a bird and one obstacle.
type CPA struct {
	Time     float64  // ticks until closest approach
	Distance float64  // separation at that time
	Relative r2.Point // bird minus obstacle centre at that time
	Initial  r2.Point // bird minus obstacle centre now
}

// ClosestApproach solves t = -(R0·Vrel)/|Vrel|² for positions relative to the obstacle.
// When |Vrel|² is below eps the bodies move in parallel and t is 0.
func ClosestApproach(r0, vrel r2.Point, eps float64) CPA {
	vv := vrel.Dot(vrel)
	if vv < eps {
		return CPA{Time: 0, Distance: r0.Norm(), Relative: r0, Initial: r0}
	}
	t := -r0.Dot(vrel) / vv
	rel := r0.Add(vrel.Mul(t))
	return CPA{Time: t, Distance: rel.Norm(), Relative: rel, Initial: r0}
}

func predictPush(pos, vel r2.Point, radius, avoidDist float64, o Obstacle, p AvoidanceParams) (r2.Point, bool) {
	hit := o.SolidHitbox()
	cx, cy := hit.Center()
	ovx, ovy := o.Velocity()

	r0 := pos.Sub(r2.Point{X: float64(cx), Y: float64(cy)})
	vrel := vel.Sub(r2.Point{X: float64(ovx), Y: float64(ovy)})
	c := ClosestApproach(r0, vrel, p.Epsilon)
	if c.Time < 0 || c.Time > p.HorizonFrames {
		return r2.Point{}, false
	}

	safe := radius + math.Max(float64(hit.W)/2, float64(hit.H)/2) + p.SafetyBuffer*avoidDist
	if c.Distance >= safe {
		return r2.Point{}, false
	}

	timeFactor := 1 - c.Time/p.HorizonFrames
	distFactor := 1 - c.Distance/safe
	mag := p.PredictionStrength * (1 + timeFactor) * (1 + distFactor)

	var dir r2.Point
	if c.Distance > p.Epsilon {
		dir = c.Relative.Mul(1 / c.Distance)
	} else {
		dir = r2.Point{X: 0, Y: signOrDown(c.Initial.Y)}
	}
	return dir.Mul(mag), true
}
