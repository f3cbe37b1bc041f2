package components

// Position represents a bird's world position.
type Position struct {
	X, Y float32
}

// Velocity represents a bird's velocity. Its length is held at the configured max speed.
type Velocity struct {
	X, Y float32
}

// Rotation represents a bird's heading.
type Rotation struct {
	Heading float32 `inspect:"angle"` // radians, atan2(vy, vx)
}
