package mars

// Agent is the contract every grid entity satisfies. The turn driver calls
// Act exactly once per agent per turn; Act reads and mutates shared grid
// state only through the Environment it is handed.
type Agent interface {
	Location() Location
	SetLocation(Location)
	Act(Environment)
}

// Damageable is implemented by agents that can take combat damage.
type Damageable interface {
	SustainDamage(amount int)
}

// Environment is the grid collaborator consumed by agent logic. The sim is
// single-threaded: implementations need no locking.
type Environment interface {
	// FreeAdjacentLocations returns the unoccupied, in-bounds cells of the
	// 8-neighborhood of loc, in deterministic scan order.
	FreeAdjacentLocations(loc Location) []Location
	// AdjacentLocations returns the in-bounds 8-neighborhood of loc
	// regardless of occupancy, in deterministic scan order.
	AdjacentLocations(loc Location) []Location
	// AdjacentLocationsUpTo3 returns all in-bounds cells within Manhattan
	// distance 3 of loc, excluding loc itself.
	AdjacentLocationsUpTo3(loc Location) []Location
	// AgentAt returns the occupant of loc, or nil.
	AgentAt(loc Location) Agent
	// SetAgent occupies loc with a (or vacates it when a is nil).
	SetAgent(a Agent, loc Location)
}

// IDAllocator hands out sequential agent IDs. One allocator per agent kind is
// owned by the simulation setup; entity types carry no package-level counters.
type IDAllocator struct {
	next int
}

// NewIDAllocator returns an allocator whose first ID is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}
