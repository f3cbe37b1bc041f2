package systems

// Food is one single-use food item as seen by the birds.
type Food struct {
	ID     uint32
	X, Y   float32
	Radius float32
	Energy float32
	Eaten  bool // set by the first bird to claim it
}

// Box returns the item's bounding box.
func (f *Food) Box() Rect {
	return BoxAround(f.X, f.Y, f.Radius)
}

// NearestFood returns the index of the closest uneaten item within scanRadius of (x, y),
// or -1 if there is none. Equal distances resolve to the lower index.
func NearestFood(x, y, scanRadius float32, food []*Food) (idx int, distSq float32) {
	idx = -1
	best := scanRadius * scanRadius
	for i, f := range food {
		if f.Eaten {
			continue
		}
		d := distanceSq(x, y, f.X, f.Y)
		if d > best || (d == best && idx >= 0) {
			continue
		}
		idx, best = i, d
	}
	if idx < 0 {
		return -1, 0
	}
	return idx, best
}

// SeekFood returns the force and weight that pull a bird toward food at (fx, fy).
// The force is the raw offset and the weight is strength / distance, so the pull
// has a constant magnitude of strength regardless of range. Distance 0 gives no pull.
func SeekFood(x, y, fx, fy, strength float32) (dx, dy, weight float32) {
	dx, dy = fx-x, fy-y
	dist := velocityMagnitude(dx, dy)
	if dist <= 0 {
		return 0, 0, 0
	}
	return dx, dy, strength / dist
}

// ClaimFood marks the nearest uneaten item overlapping box as eaten and returns it.
// Items already claimed earlier in the tick are skipped, so the first claim wins.
func ClaimFood(box Rect, food []*Food) *Food {
	cx, cy := box.Center()
	var claimed *Food
	var best float32
	for _, f := range food {
		if f.Eaten || !box.Overlaps(f.Box()) {
			continue
		}
		d := distanceSq(cx, cy, f.X, f.Y)
		if claimed == nil || d < best {
			claimed, best = f, d
		}
	}
	if claimed != nil {
		claimed.Eaten = true
	}
	return claimed
}
