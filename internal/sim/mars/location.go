package mars

// Location is a 2D grid coordinate. Locations are value types: two locations
// are the same cell iff their fields are equal.
type Location struct {
	X int
	Y int
}

// Manhattan returns |dx| + |dy| between two locations.
func Manhattan(a, b Location) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

// StepToward returns the cell one greedy step from `from` toward `to`: each
// axis moves independently by the sign of its delta.
func StepToward(from, to Location) Location {
	return Location{X: from.X + signInt(to.X-from.X), Y: from.Y + signInt(to.Y-from.Y)}
}

func containsLocation(list []Location, loc Location) bool {
	for _, l := range list {
		if l == loc {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func signInt(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
