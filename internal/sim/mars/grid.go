package mars

// Grid is the reference Environment implementation: a bounded W×H occupancy
// map holding at most one agent per cell. All access happens from the sim
// loop goroutine.
type Grid struct {
	width  int
	height int
	cells  map[Location]Agent
}

func NewGrid(width, height int) *Grid {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make(map[Location]Agent),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether loc is inside the grid.
func (g *Grid) InBounds(loc Location) bool {
	return loc.X >= 0 && loc.X < g.width && loc.Y >= 0 && loc.Y < g.height
}

func (g *Grid) AgentAt(loc Location) Agent {
	return g.cells[loc]
}

func (g *Grid) SetAgent(a Agent, loc Location) {
	if !g.InBounds(loc) {
		return
	}
	if a == nil {
		delete(g.cells, loc)
		return
	}
	g.cells[loc] = a
}

// Occupied returns the number of occupied cells.
func (g *Grid) Occupied() int { return len(g.cells) }

// AdjacentLocations returns the in-bounds 8-neighborhood of loc in row-major
// scan order. The fixed order keeps seeded runs reproducible.
func (g *Grid) AdjacentLocations(loc Location) []Location {
	out := make([]Location, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Location{X: loc.X + dx, Y: loc.Y + dy}
			if g.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// FreeAdjacentLocations returns the unoccupied subset of AdjacentLocations.
func (g *Grid) FreeAdjacentLocations(loc Location) []Location {
	adj := g.AdjacentLocations(loc)
	out := adj[:0]
	for _, n := range adj {
		if g.cells[n] == nil {
			out = append(out, n)
		}
	}
	return out
}

// AdjacentLocationsUpTo3 returns all in-bounds cells within Manhattan
// distance 3 of loc, excluding loc itself, in row-major scan order.
func (g *Grid) AdjacentLocationsUpTo3(loc Location) []Location {
	out := make([]Location, 0, 24)
	for dy := -3; dy <= 3; dy++ {
		for dx := -3; dx <= 3; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if absInt(dx)+absInt(dy) > 3 {
				continue
			}
			n := Location{X: loc.X + dx, Y: loc.Y + dy}
			if g.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}
