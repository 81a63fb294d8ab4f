package mars

import "math/rand"

// TurnLogger receives one entry per completed turn. Implemented in
// internal/persistence; may be nil.
type TurnLogger interface {
	WriteTurn(entry TurnRecord) error
}

// TurnRecord is the journal entry for one turn.
type TurnRecord struct {
	Turn   uint64       `json:"turn"`
	Agents []AgentState `json:"agents"`
	Stats  TurnStats    `json:"stats"`
}

// AgentState is a flat, serializable view of one agent after a turn.
type AgentState struct {
	Kind string `json:"kind"` // "rover" | "alien" | "spacecraft" | "rock"
	ID   int    `json:"id,omitempty"`
	X    int    `json:"x"`
	Y    int    `json:"y"`

	Battery         int  `json:"battery,omitempty"`
	Energy          int  `json:"energy,omitempty"`
	Damaged         bool `json:"damaged,omitempty"`
	Hibernating     bool `json:"hibernating,omitempty"`
	Carrying        bool `json:"carrying,omitempty"`
	RequestCharging bool `json:"request_charging,omitempty"`
	PickedUp        bool `json:"picked_up,omitempty"`
}

// TurnStats are per-turn fleet aggregates.
type TurnStats struct {
	Turn              uint64 `json:"turn"`
	Rovers            int    `json:"rovers"`
	DamagedRovers     int    `json:"damaged_rovers"`
	MeanRoverBattery  int    `json:"mean_rover_battery"`
	Aliens            int    `json:"aliens"`
	HibernatingAliens int    `json:"hibernating_aliens"`
	RocksOnGrid       int    `json:"rocks_on_grid"`
	RocksRetrieved    int    `json:"rocks_retrieved"`
}

// SimConfig configures a fresh simulation.
type SimConfig struct {
	Width  int
	Height int
	Seed   int64

	// InitialNumRovers is the fleet size the spacecraft grows toward.
	InitialNumRovers int
}

func (c *SimConfig) applyDefaults() {
	if c.Width <= 0 {
		c.Width = 40
	}
	if c.Height <= 0 {
		c.Height = 40
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.InitialNumRovers <= 0 {
		c.InitialNumRovers = 5
	}
}

// Simulation owns the grid and the agent roster and advances them in
// discrete turns. Single-threaded: all agent state is touched only from the
// goroutine calling StepOnce.
type Simulation struct {
	cfg  SimConfig
	grid *Grid
	rng  *rand.Rand

	roverIDs *IDAllocator
	alienIDs *IDAllocator

	craft  *Spacecraft
	rovers []*Rover
	aliens []*Alien
	rocks  []*Rock

	roster []Agent
	turn   uint64

	turnLogger TurnLogger
}

func NewSimulation(cfg SimConfig) *Simulation {
	cfg.applyDefaults()
	return &Simulation{
		cfg:      cfg,
		grid:     NewGrid(cfg.Width, cfg.Height),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		roverIDs: NewIDAllocator(),
		alienIDs: NewIDAllocator(),
	}
}

func (s *Simulation) Grid() *Grid         { return s.grid }
func (s *Simulation) Rand() *rand.Rand    { return s.rng }
func (s *Simulation) CurrentTurn() uint64 { return s.turn }
func (s *Simulation) Config() SimConfig   { return s.cfg }
func (s *Simulation) Craft() *Spacecraft  { return s.craft }
func (s *Simulation) Rovers() []*Rover    { return s.rovers }
func (s *Simulation) Aliens() []*Alien    { return s.aliens }
func (s *Simulation) Rocks() []*Rock      { return s.rocks }

// SetTurnLogger installs the turn journal sink (may be nil).
func (s *Simulation) SetTurnLogger(l TurnLogger) { s.turnLogger = l }

// PlaceSpacecraft creates the coordinator at loc. At most one per sim.
func (s *Simulation) PlaceSpacecraft(loc Location) *Spacecraft {
	craft := NewSpacecraft(loc, s.cfg.InitialNumRovers, s.roverIDs, s.rng)
	craft.OnSpawn(s.adoptRover)
	s.grid.SetAgent(craft, loc)
	s.craft = craft
	s.roster = append(s.roster, craft)
	return craft
}

// PlaceRover creates a rover at loc assigned to the placed spacecraft.
func (s *Simulation) PlaceRover(loc Location) *Rover {
	rover := NewRover(s.roverIDs.Next(), loc, s.craftLocation(), s.rng)
	s.grid.SetAgent(rover, loc)
	s.adoptRover(rover)
	return rover
}

// PlaceAlien creates an alien at loc.
func (s *Simulation) PlaceAlien(loc Location) *Alien {
	alien := NewAlien(s.alienIDs.Next(), loc, s.craftLocation(), s.rng)
	s.grid.SetAgent(alien, loc)
	s.aliens = append(s.aliens, alien)
	s.roster = append(s.roster, alien)
	return alien
}

// PlaceRock creates an inert rock at loc.
func (s *Simulation) PlaceRock(loc Location) *Rock {
	rock := NewRock(loc)
	s.grid.SetAgent(rock, loc)
	s.rocks = append(s.rocks, rock)
	return rock
}

// RandomFreeLocation picks a uniformly random unoccupied cell, or false when
// the grid is full.
func (s *Simulation) RandomFreeLocation() (Location, bool) {
	total := s.grid.Width() * s.grid.Height()
	if s.grid.Occupied() >= total {
		return Location{}, false
	}
	for {
		loc := Location{X: s.rng.Intn(s.grid.Width()), Y: s.rng.Intn(s.grid.Height())}
		if s.grid.AgentAt(loc) == nil {
			return loc, true
		}
	}
}

func (s *Simulation) craftLocation() Location {
	if s.craft != nil {
		return s.craft.Location()
	}
	return Location{}
}

func (s *Simulation) adoptRover(rover *Rover) {
	s.rovers = append(s.rovers, rover)
	s.roster = append(s.roster, rover)
}

// StepOnce advances the simulation by one turn: every agent acts once, in
// roster order. Rovers spawned this turn first act next turn. Returns the
// stats for the completed turn.
func (s *Simulation) StepOnce() TurnStats {
	s.turn++

	acting := make([]Agent, len(s.roster))
	copy(acting, s.roster)
	for _, a := range acting {
		a.Act(s.grid)
	}

	stats := s.Stats()
	if s.turnLogger != nil {
		_ = s.turnLogger.WriteTurn(TurnRecord{Turn: s.turn, Agents: s.Snapshot(), Stats: stats})
	}
	return stats
}

// Stats computes fleet aggregates for the current state.
func (s *Simulation) Stats() TurnStats {
	st := TurnStats{Turn: s.turn}

	batterySum := 0
	for _, r := range s.rovers {
		st.Rovers++
		batterySum += r.Battery
		if r.Damaged {
			st.DamagedRovers++
		}
	}
	if st.Rovers > 0 {
		st.MeanRoverBattery = batterySum / st.Rovers
	}

	for _, a := range s.aliens {
		st.Aliens++
		if a.Hibernating {
			st.HibernatingAliens++
		}
	}

	for _, rock := range s.rocks {
		if !rock.PickedUp {
			st.RocksOnGrid++
		}
	}
	if s.craft != nil {
		st.RocksRetrieved = len(s.craft.RetrievedRocks)
	}
	return st
}

// Snapshot returns a flat view of every agent, spacecraft first, for
// telemetry and the observer feed.
func (s *Simulation) Snapshot() []AgentState {
	out := make([]AgentState, 0, 1+len(s.rovers)+len(s.aliens)+len(s.rocks))
	if s.craft != nil {
		loc := s.craft.Location()
		out = append(out, AgentState{Kind: "spacecraft", X: loc.X, Y: loc.Y})
	}
	for _, r := range s.rovers {
		loc := r.Location()
		out = append(out, AgentState{
			Kind:            "rover",
			ID:              r.ID,
			X:               loc.X,
			Y:               loc.Y,
			Battery:         r.Battery,
			Damaged:         r.Damaged,
			Carrying:        r.HasRock(),
			RequestCharging: r.RequestCharging,
		})
	}
	for _, a := range s.aliens {
		loc := a.Location()
		out = append(out, AgentState{
			Kind:        "alien",
			ID:          a.ID,
			X:           loc.X,
			Y:           loc.Y,
			Energy:      a.Energy,
			Hibernating: a.Hibernating,
		})
	}
	for _, rock := range s.rocks {
		loc := rock.Location()
		out = append(out, AgentState{Kind: "rock", X: loc.X, Y: loc.Y, PickedUp: rock.PickedUp})
	}
	return out
}
