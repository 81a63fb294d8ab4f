package mars

import "math/rand"

// Rover harvests rocks and hauls them back to its spacecraft. Per-turn
// priority order: damaged (terminal, no action) > charging wait > battery
// stop > assigned target pursuit > rock return > foraging.
//
// The spacecraft coordinates the fleet by mutating rover state directly
// (Battery, Target, RequestCharging, IgnoreBattery); that tight coupling is
// the coordination protocol, not an accident.
type Rover struct {
	ID int

	Battery            int
	ConsumptionPerMove int

	RequestCharging bool
	Damaged         bool
	IgnoreBattery   bool

	// Target is a rock location assigned by the spacecraft (or picked up
	// from a team dispatch). Nil when the rover forages freely.
	Target *Location

	Visited []Location

	loc        Location
	craft      Location
	rock       *Rock
	remembered []Location
	rng        *rand.Rand
}

var _ Damageable = (*Rover)(nil)

// NewRover creates a rover assigned to the spacecraft at craft. The rng is
// the sim-owned seeded source; every random choice the rover makes draws
// from it.
func NewRover(id int, loc, craft Location, rng *rand.Rand) *Rover {
	return &Rover{
		ID:                 id,
		Battery:            DefaultBatteryLife,
		ConsumptionPerMove: DefaultBatteryConsumptionPerMove,
		loc:                loc,
		craft:              craft,
		rng:                rng,
	}
}

func (r *Rover) Location() Location       { return r.loc }
func (r *Rover) SetLocation(loc Location) { r.loc = loc }

// HasRock reports whether the rover is carrying a rock.
func (r *Rover) HasRock() bool { return r.rock != nil }

// RememberedRocks returns rock locations the rover has seen and not yet
// handed off, in discovery order.
func (r *Rover) RememberedRocks() []Location { return r.remembered }

// ClearRememberedRocks empties the rover's rock memory. The spacecraft calls
// this after aggregating the memory into its own candidate set.
func (r *Rover) ClearRememberedRocks() { r.remembered = nil }

// PickUpRock takes ownership of rock and forgets its remembered location.
func (r *Rover) PickUpRock(rock *Rock) {
	r.rock = rock
	rock.PickedUp = true
	r.IgnoreBattery = false
	for i, loc := range r.remembered {
		if loc == rock.Location() {
			r.remembered = append(r.remembered[:i], r.remembered[i+1:]...)
			break
		}
	}
}

// DropRock releases the carried rock at the rover's current location.
// No-op when not carrying.
func (r *Rover) DropRock() {
	if r.rock == nil {
		return
	}
	r.rock.SetLocation(r.loc)
	r.rock = nil
}

// ShareBatteryPower transfers a fixed amount to an adjacent stalled rover.
// The helper's battery is debited without a lower bound check and the
// recipient is not clamped at 100; both asymmetries are part of the protocol.
func (r *Rover) ShareBatteryPower(other *Rover, env Environment) {
	if !containsLocation(env.AdjacentLocations(r.loc), other.loc) {
		return
	}
	r.Battery -= BatteryShareAmount
	other.Battery += BatteryShareAmount
	r.RequestCharging = false
}

// SustainDamage reduces battery by amount. Hitting zero is terminal: the
// rover is damaged for good and drops any carried rock where it stands.
func (r *Rover) SustainDamage(amount int) {
	r.Battery -= amount
	if r.Battery <= 0 {
		r.Battery = 0
		r.Damaged = true
		if r.rock != nil {
			r.DropRock()
		}
	}
}

func (r *Rover) Act(env Environment) {
	if r.Damaged {
		return
	}

	if r.RequestCharging {
		if r.Battery < DefaultBatteryLife {
			return // stay put until the craft tops us up
		}
		r.RequestCharging = false
	}

	if !r.IgnoreBattery && r.Battery <= 0 {
		r.Battery = 0
		// Stalled. Solicit a transfer from every adjacent healthy rover.
		for _, loc := range env.AdjacentLocations(r.loc) {
			if other, ok := env.AgentAt(loc).(*Rover); ok && other.Battery > BatteryShareMinimum {
				other.ShareBatteryPower(r, env)
			}
		}
		return
	}

	if r.Target != nil {
		r.pursueTarget(env)
		return
	}

	if r.rock != nil {
		r.rememberRocks(env)
		switch {
		case !r.IgnoreBattery && r.Battery < LowBatteryThreshold:
			r.moveTowardsSpacecraft(env)
		case containsLocation(env.FreeAdjacentLocations(r.loc), r.craft):
			// Adjacent to the craft: vacate the rock here for it to claim.
			r.DropRock()
		default:
			r.moveTowardsSpacecraft(env)
		}
	} else {
		if !r.IgnoreBattery && r.Battery < LowBatteryThreshold {
			r.moveTowardsSpacecraft(env)
		} else if rocks := r.scanAdjacentRocks(env); len(rocks) > 0 {
			r.move(env, rocks[0].Location())
			r.PickUpRock(rocks[0])
		} else {
			r.explore(env)
		}
	}

	r.manageBattery(env)
}

// pursueTarget handles an assigned target location exclusively of the other
// branches; target pursuit does not pay the per-move battery cost.
func (r *Rover) pursueTarget(env Environment) {
	target := *r.Target

	for _, rock := range r.scanAdjacentRocks(env) {
		if rock.Location() == target {
			r.move(env, rock.Location())
			r.PickUpRock(rock)
			r.Target = nil
			return
		}
	}

	if r.loc == target || containsLocation(env.AdjacentLocations(r.loc), target) {
		// Close enough to know there is nothing here. Abandon the target.
		r.Target = nil
		r.IgnoreBattery = false
		r.moveTowardsSpacecraft(env)
		return
	}

	r.moveToLocation(env, target)
}

// move relocates the rover one step, carrying its rock along, and refreshes
// its rock memory from the new vantage.
func (r *Rover) move(env Environment, to Location) {
	prev := r.loc
	env.SetAgent(r, to)
	r.loc = to
	env.SetAgent(nil, prev)
	if r.rock != nil {
		r.rock.SetLocation(to)
	}
	r.rememberRocks(env)
}

func (r *Rover) moveToRandom(env Environment) {
	free := env.FreeAdjacentLocations(r.loc)
	if len(free) == 0 {
		return
	}
	r.move(env, free[r.rng.Intn(len(free))])
}

// explore moves to an adjacent free cell, preferring unvisited cells while
// battery allows, and records the choice as visited.
func (r *Rover) explore(env Environment) {
	free := env.FreeAdjacentLocations(r.loc)
	if len(free) == 0 {
		return
	}

	unvisited := make([]Location, 0, len(free))
	for _, loc := range free {
		if !containsLocation(r.Visited, loc) {
			unvisited = append(unvisited, loc)
		}
	}

	var next Location
	if len(unvisited) > 0 && r.Battery >= LowBatteryThreshold {
		next = unvisited[r.rng.Intn(len(unvisited))]
	} else {
		next = free[r.rng.Intn(len(free))]
	}
	r.Visited = append(r.Visited, next)
	r.move(env, next)
}

func (r *Rover) moveTowardsSpacecraft(env Environment) {
	r.moveToLocation(env, r.craft)
}

// moveToLocation takes one greedy per-axis step toward target, falling back
// to a random free cell when the computed step is blocked.
func (r *Rover) moveToLocation(env Environment, target Location) {
	next := StepToward(r.loc, target)
	if containsLocation(env.FreeAdjacentLocations(r.loc), next) {
		r.move(env, next)
		return
	}
	r.moveToRandom(env)
}

func (r *Rover) rememberRocks(env Environment) {
	for _, rock := range r.scanAdjacentRocks(env) {
		if !containsLocation(r.remembered, rock.Location()) {
			r.remembered = append(r.remembered, rock.Location())
		}
	}
}

func (r *Rover) scanAdjacentRocks(env Environment) []*Rock {
	var found []*Rock
	for _, loc := range env.AdjacentLocations(r.loc) {
		if rock, ok := env.AgentAt(loc).(*Rock); ok {
			found = append(found, rock)
		}
	}
	return found
}

func (r *Rover) manageBattery(env Environment) {
	r.Battery -= r.ConsumptionPerMove
	if r.Battery < 0 {
		r.Battery = 0
	}
	if containsLocation(env.AdjacentLocations(r.loc), r.craft) && r.Battery < ChargeRequestThreshold {
		r.RequestCharging = true
	}
}
