// Package systems implements the per-bird behaviour: neighbour lookup, steering,
// obstacle avoidance, feeding, reproduction and movement.
package systems

// SpatialGrid buckets snapshot slots by position for neighbour lookups.
// It is cleared and refilled every tick, so it never holds stale slots.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	cells    [][]int32 // flat grid of slot lists
	count    int
	seen     []bool // scratch for Consistent
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float32) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all slots from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert adds a slot to the cell containing (x, y).
func (g *SpatialGrid) Insert(slot int32, x, y float32) {
	col, row := g.CellOf(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], slot)
	g.count++
}

// Len returns the number of slots inserted since the last Clear.
func (g *SpatialGrid) Len() int {
	return g.count
}

// Consistent reports whether slots 0..n-1 were each inserted exactly once
// and nothing else was.
func (g *SpatialGrid) Consistent(n int) bool {
	if g.count != n {
		return false
	}
	if cap(g.seen) < n {
		g.seen = make([]bool, n)
	}
	g.seen = g.seen[:n]
	clear(g.seen)

	total := 0
	for _, cell := range g.cells {
		for _, slot := range cell {
			if slot < 0 || int(slot) >= n || g.seen[slot] {
				return false
			}
			g.seen[slot] = true
			total++
		}
	}
	return total == n
}

// Dims returns the number of columns and rows.
func (g *SpatialGrid) Dims() (cols, rows int) {
	return g.cols, g.rows
}

// CellOf returns the clamped cell coordinates for a world position.
func (g *SpatialGrid) CellOf(x, y float32) (col, row int) {
	col = int(x / g.cellSize)
	row = int(y / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// QueryNeighbors appends every slot in the 3x3 block of cells around (x, y) to dst.
// Cells outside the grid are skipped. The caller excludes itself.
func (g *SpatialGrid) QueryNeighbors(dst []int32, x, y float32) []int32 {
	col, row := g.CellOf(x, y)
	for r := row - 1; r <= row+1; r++ {
		if r < 0 || r >= g.rows {
			continue
		}
		for c := col - 1; c <= col+1; c++ {
			if c < 0 || c >= g.cols {
				continue
			}
			dst = append(dst, g.cells[r*g.cols+c]...)
		}
	}
	return dst
}

// QueryRadius appends every slot within radius of (x, y) to dst, excluding exclude.
// Positions are read from states, which must be the snapshot the grid was built from.
// Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadius(dst []Neighbor, x, y, radius float32, exclude int32, states []AgentState) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	col, row := g.CellOf(x, y)
	radiusSq := radius * radius

	for r := row - cellRadius; r <= row+cellRadius; r++ {
		if r < 0 || r >= g.rows {
			continue
		}
		for c := col - cellRadius; c <= col+cellRadius; c++ {
			if c < 0 || c >= g.cols {
				continue
			}
			for _, slot := range g.cells[r*g.cols+c] {
				if slot == exclude {
					continue
				}
				s := &states[slot]
				dx, dy := s.X-x, s.Y-y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Slot: slot, DX: dx, DY: dy, DistSq: distSq})
				}
			}
		}
	}
	return dst
}
