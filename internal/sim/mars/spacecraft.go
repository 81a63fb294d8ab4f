package mars

import "math/rand"

// Spacecraft coordinates the rover fleet from a fixed location: it retrieves
// delivered rocks, charges rovers that ask, grows the fleet out of retrieved
// rocks, and dispatches rovers (or teams of rovers) at rock locations
// reported by the fleet. A rover is only "seen" while physically adjacent.
type Spacecraft struct {
	loc Location

	// RetrievedRocks is the append-only retrieval log; spawning a rover
	// trims SpawnRockCost entries off the front.
	RetrievedRocks []Location
	// TargetLocations is the candidate rock queue aggregated from rover
	// memories.
	TargetLocations []Location

	rovers           []*Rover
	roversScanned    bool
	initialNumRovers int

	roverIDs *IDAllocator
	rng      *rand.Rand

	// onSpawn lets the turn driver adopt dynamically created rovers into
	// its roster. May be nil.
	onSpawn func(*Rover)
}

// NewSpacecraft creates the coordinator. initialNumRovers is the configured
// fleet size the craft grows toward; roverIDs is the sim-owned allocator so
// spawned rovers share the ID sequence with the initial fleet.
func NewSpacecraft(loc Location, initialNumRovers int, roverIDs *IDAllocator, rng *rand.Rand) *Spacecraft {
	return &Spacecraft{
		loc:              loc,
		initialNumRovers: initialNumRovers,
		roverIDs:         roverIDs,
		rng:              rng,
	}
}

func (s *Spacecraft) Location() Location       { return s.loc }
func (s *Spacecraft) SetLocation(loc Location) { s.loc = loc }

// KnownRovers returns the rovers the craft has ever seen adjacent.
func (s *Spacecraft) KnownRovers() []*Rover { return s.rovers }

// OnSpawn registers a hook invoked for every rover the craft creates.
func (s *Spacecraft) OnSpawn(fn func(*Rover)) { s.onSpawn = fn }

func (s *Spacecraft) Act(env Environment) {
	if !s.roversScanned {
		s.scanAdjacentRovers(env)
		s.roversScanned = true
	}

	if len(s.rovers) < s.initialNumRovers {
		s.createNewRover(env)
	}

	found := s.scanAdjacentRovers(env)

	for _, rover := range found {
		if rover.HasRock() {
			s.retrieveRock(rover)
		}
		if rover.RequestCharging {
			rover.Battery += ChargeAmountPerTurn
			if rover.Battery >= DefaultBatteryLife {
				rover.Battery = DefaultBatteryLife
				rover.RequestCharging = false
			}
		}
	}

	s.dispatchTargets(env, found)
}

// scanAdjacentRovers returns the rovers currently adjacent and folds any new
// ones into the known set.
func (s *Spacecraft) scanAdjacentRovers(env Environment) []*Rover {
	var found []*Rover
	for _, loc := range env.AdjacentLocations(s.loc) {
		rover, ok := env.AgentAt(loc).(*Rover)
		if !ok {
			continue
		}
		found = append(found, rover)
		if !s.knows(rover) {
			s.rovers = append(s.rovers, rover)
		}
	}
	return found
}

func (s *Spacecraft) knows(rover *Rover) bool {
	for _, r := range s.rovers {
		if r == rover {
			return true
		}
	}
	return false
}

// retrieveRock claims the rock an adjacent rover is carrying.
func (s *Spacecraft) retrieveRock(rover *Rover) {
	s.RetrievedRocks = append(s.RetrievedRocks, rover.Location())
	rover.DropRock()
}

// createNewRover spends SpawnRockCost retrieved rocks to place a fresh rover
// on a random free adjacent cell. Skipped when rocks or space run short.
func (s *Spacecraft) createNewRover(env Environment) {
	if len(s.RetrievedRocks) < SpawnRockCost {
		return
	}
	free := env.FreeAdjacentLocations(s.loc)
	if len(free) == 0 {
		return
	}
	s.RetrievedRocks = s.RetrievedRocks[SpawnRockCost:]

	loc := free[s.rng.Intn(len(free))]
	rover := NewRover(s.roverIDs.Next(), loc, s.loc, s.rng)
	env.SetAgent(rover, loc)
	s.rovers = append(s.rovers, rover)
	if s.onSpawn != nil {
		s.onSpawn(rover)
	}
}

// dispatchTargets aggregates the found rovers' rock memories, picks the
// nearest candidate, and dispatches either a single rover or a team at it.
// The chosen candidate leaves the queue whether or not anyone took the job.
func (s *Spacecraft) dispatchTargets(env Environment, found []*Rover) {
	var reported []Location
	for _, rover := range found {
		reported = append(reported, rover.RememberedRocks()...)
	}
	if len(reported) == 0 {
		return
	}

	for _, loc := range reported {
		if !containsLocation(s.TargetLocations, loc) {
			s.TargetLocations = append(s.TargetLocations, loc)
		}
	}

	nearest := s.nearestTarget()

	if Manhattan(s.loc, nearest) > TeamDispatchDistance {
		team := s.formRoverTeam(env, nearest)
		if len(team) > 1 {
			instructRoverTeam(team, nearest)
		}
	} else {
		for _, rover := range found {
			if rover.Target == nil && !rover.HasRock() && !rover.RequestCharging {
				target := nearest
				rover.Target = &target
				break
			}
		}
	}

	for _, rover := range found {
		rover.ClearRememberedRocks()
	}
	s.removeTarget(nearest)
}

func (s *Spacecraft) nearestTarget() Location {
	nearest := s.TargetLocations[0]
	best := Manhattan(s.loc, nearest)
	for _, loc := range s.TargetLocations[1:] {
		if d := Manhattan(s.loc, loc); d < best {
			best = d
			nearest = loc
		}
	}
	return nearest
}

func (s *Spacecraft) removeTarget(target Location) {
	for i, loc := range s.TargetLocations {
		if loc == target {
			s.TargetLocations = append(s.TargetLocations[:i], s.TargetLocations[i+1:]...)
			return
		}
	}
}

// formRoverTeam gathers ceil(distance/7) eligible rovers for a distant rock.
// Eligible means adjacent right now, empty-handed, and waiting on a charge.
// Returns nil when not enough rovers qualify.
func (s *Spacecraft) formRoverTeam(env Environment, rockLoc Location) []*Rover {
	var available []*Rover
	for _, rover := range s.scanAdjacentRovers(env) {
		if !rover.HasRock() && rover.RequestCharging {
			available = append(available, rover)
		}
	}

	distance := Manhattan(s.loc, rockLoc)
	required := (distance + TeamDispatchDistance - 1) / TeamDispatchDistance
	if len(available) < required {
		return nil
	}
	return available[:required]
}

// instructRoverTeam sends every member at the rock. The lead rover runs
// unconstrained on a full battery; the second gets a fixed 90. Members
// beyond the second keep whatever charge they have.
func instructRoverTeam(team []*Rover, rockLoc Location) {
	team[0].IgnoreBattery = true
	team[0].Battery = DefaultBatteryLife
	team[1].Battery = 90
	for _, rover := range team {
		target := rockLoc
		rover.Target = &target
	}
}
