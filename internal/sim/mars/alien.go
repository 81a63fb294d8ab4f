package mars

import "math/rand"

// Alien is the predator. Per-turn priority order: flee the spacecraft
// (Manhattan <= 4, overrides everything) > hibernate > chase/attack a
// detected rover > roam. Every step costs energy; an exhausted attacker
// hibernates until energy is fully restored.
type Alien struct {
	ID int

	Energy      int
	Hibernating bool

	IsChasingRover bool
	ChasingRover   *Rover
	ChaseMoves     int

	loc   Location
	craft Location
	rng   *rand.Rand
}

func NewAlien(id int, loc, craft Location, rng *rand.Rand) *Alien {
	return &Alien{
		ID:     id,
		Energy: DefaultEnergy,
		loc:    loc,
		craft:  craft,
		rng:    rng,
	}
}

func (a *Alien) Location() Location       { return a.loc }
func (a *Alien) SetLocation(loc Location) { a.loc = loc }

func (a *Alien) Act(env Environment) {
	if Manhattan(a.craft, a.loc) <= SpacecraftFleeRadius {
		a.avoidSpacecraft(env)
		return
	}

	if a.Hibernating {
		a.hibernate()
		return
	}

	var victims []*Rover
	for _, loc := range env.AdjacentLocationsUpTo3(a.loc) {
		if rover, ok := env.AgentAt(loc).(*Rover); ok {
			victims = append(victims, rover)
		}
	}

	if len(victims) > 0 {
		rover := victims[a.rng.Intn(len(victims))]
		if !rover.Damaged {
			a.chaseRover(env, rover)
			if a.ChaseMoves >= MaxChaseMoves {
				a.IsChasingRover = false
				a.ChasingRover = nil
				a.ChaseMoves = 0
			}
			return
		}
	}

	a.randomMove(env)
}

// chaseRover closes in on the rover, attacking once adjacent. Consecutive
// chase engagements are capped by the caller at MaxChaseMoves.
func (a *Alien) chaseRover(env Environment, rover *Rover) {
	a.IsChasingRover = true
	a.ChasingRover = rover
	a.ChaseMoves++

	if Manhattan(rover.Location(), a.loc) == 1 {
		a.attackRover(rover)
		return
	}

	next := StepToward(a.loc, rover.Location())
	if containsLocation(env.FreeAdjacentLocations(a.loc), next) {
		a.move(env, next)
		return
	}
	a.randomMove(env)
}

// attackRover damages the rover and pays the attack cost. An attack that
// leaves the alien at or below the hibernate threshold puts it into
// hibernation on the spot. Already-damaged rovers are not attacked.
func (a *Alien) attackRover(rover *Rover) {
	if rover.Damaged {
		return
	}
	rover.SustainDamage(AttackDamage)
	a.Energy -= AttackEnergyCost
	if a.Energy < 0 {
		a.Energy = 0
	}
	if a.Energy <= HibernateThreshold {
		a.Hibernating = true
	}
}

// hibernate regenerates energy; the alien wakes only at full energy.
func (a *Alien) hibernate() {
	a.Energy += HibernateRegen
	if a.Energy >= DefaultEnergy {
		a.Energy = DefaultEnergy
		a.Hibernating = false
	}
}

// avoidSpacecraft takes the single free adjacent step that maximizes
// Manhattan distance from the craft. If no free cell increases the
// distance, the alien stays put.
func (a *Alien) avoidSpacecraft(env Environment) {
	var farthest *Location
	best := Manhattan(a.loc, a.craft)
	for _, loc := range env.FreeAdjacentLocations(a.loc) {
		loc := loc
		if d := Manhattan(loc, a.craft); d > best {
			best = d
			farthest = &loc
		}
	}
	if farthest != nil {
		a.move(env, *farthest)
	}
}

func (a *Alien) randomMove(env Environment) {
	free := env.FreeAdjacentLocations(a.loc)
	if len(free) == 0 {
		return
	}
	a.move(env, free[a.rng.Intn(len(free))])
}

// move relocates the alien one step and pays the move cost, clamped at 0.
func (a *Alien) move(env Environment, to Location) {
	prev := a.loc
	env.SetAgent(a, to)
	a.loc = to
	env.SetAgent(nil, prev)
	a.Energy -= AlienMoveCost
	if a.Energy < 0 {
		a.Energy = 0
	}
}
