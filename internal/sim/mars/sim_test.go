package mars

import (
	"reflect"
	"testing"
)

func seededSim(t *testing.T, seed int64) *Simulation {
	t.Helper()
	sim := NewSimulation(SimConfig{Width: 30, Height: 30, Seed: seed, InitialNumRovers: 4})

	craft := sim.PlaceSpacecraft(Location{X: 15, Y: 15})
	for _, loc := range sim.Grid().FreeAdjacentLocations(craft.Location())[:4] {
		sim.PlaceRover(loc)
	}
	for i := 0; i < 3; i++ {
		if loc, ok := sim.RandomFreeLocation(); ok {
			sim.PlaceAlien(loc)
		}
	}
	for i := 0; i < 60; i++ {
		if loc, ok := sim.RandomFreeLocation(); ok {
			sim.PlaceRock(loc)
		}
	}
	return sim
}

func TestSimulation_SoakInvariants(t *testing.T) {
	sim := seededSim(t, 42)

	for turn := 0; turn < 300; turn++ {
		stats := sim.StepOnce()

		for _, r := range sim.Rovers() {
			if r.Battery < 0 || r.Battery > DefaultBatteryLife {
				t.Fatalf("turn %d: rover %d battery out of range: %d", turn, r.ID, r.Battery)
			}
			if !sim.Grid().InBounds(r.Location()) {
				t.Fatalf("turn %d: rover %d off grid at %+v", turn, r.ID, r.Location())
			}
			if r.Damaged && r.Battery != 0 {
				t.Fatalf("turn %d: damaged rover %d holds charge %d", turn, r.ID, r.Battery)
			}
		}
		for _, a := range sim.Aliens() {
			if a.Energy < 0 || a.Energy > DefaultEnergy {
				t.Fatalf("turn %d: alien %d energy out of range: %d", turn, a.ID, a.Energy)
			}
			if !sim.Grid().InBounds(a.Location()) {
				t.Fatalf("turn %d: alien %d off grid at %+v", turn, a.ID, a.Location())
			}
		}

		carried := 0
		for _, rock := range sim.Rocks() {
			if rock.PickedUp {
				carried++
			}
		}
		if got := stats.RocksOnGrid + carried; got != len(sim.Rocks()) {
			t.Fatalf("turn %d: rock accounting off: on grid %d + picked up %d != %d",
				turn, stats.RocksOnGrid, carried, len(sim.Rocks()))
		}
		if stats.Turn != uint64(turn+1) {
			t.Fatalf("turn counter = %d, want %d", stats.Turn, turn+1)
		}
	}
}

func TestSimulation_SameSeedSameRun(t *testing.T) {
	a := seededSim(t, 99)
	b := seededSim(t, 99)

	for turn := 0; turn < 200; turn++ {
		sa := a.StepOnce()
		sb := b.StepOnce()
		if sa != sb {
			t.Fatalf("turn %d: stats diverged: %+v vs %+v", turn, sa, sb)
		}
	}
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatalf("same seed produced different final snapshots")
	}
}

func TestSimulation_DamagedRoverStaysFrozen(t *testing.T) {
	sim := seededSim(t, 7)
	r := sim.Rovers()[0]
	r.SustainDamage(DefaultBatteryLife)
	loc := r.Location()

	for turn := 0; turn < 50; turn++ {
		sim.StepOnce()
	}
	if r.Location() != loc || r.Battery != 0 || !r.Damaged {
		t.Fatalf("damaged rover changed state: loc=%+v battery=%d", r.Location(), r.Battery)
	}
}

func TestSimulation_SpawnedRoverJoinsRoster(t *testing.T) {
	sim := NewSimulation(SimConfig{Width: 20, Height: 20, Seed: 5, InitialNumRovers: 2})
	craft := sim.PlaceSpacecraft(Location{X: 10, Y: 10})
	for i := 0; i < SpawnRockCost; i++ {
		craft.RetrievedRocks = append(craft.RetrievedRocks, craft.Location())
	}

	stats := sim.StepOnce()
	if stats.Rovers != 1 {
		t.Fatalf("rovers after spawn turn = %d, want 1", stats.Rovers)
	}
	if stats.RocksRetrieved != 0 {
		t.Fatalf("retrieval tally = %d, want 0 after paying the spawn cost", stats.RocksRetrieved)
	}

	r := sim.Rovers()[0]
	loc := r.Location()
	sim.StepOnce()
	if r.Location() == loc && r.Battery == DefaultBatteryLife {
		t.Fatalf("spawned rover never acted")
	}
}

func TestSimulation_TurnLoggerReceivesRecords(t *testing.T) {
	sim := seededSim(t, 3)
	var got []TurnRecord
	sim.SetTurnLogger(turnLoggerFunc(func(rec TurnRecord) error {
		got = append(got, rec)
		return nil
	}))

	sim.StepOnce()
	sim.StepOnce()

	if len(got) != 2 {
		t.Fatalf("logged %d records, want 2", len(got))
	}
	if got[0].Turn != 1 || got[1].Turn != 2 {
		t.Fatalf("turn numbers = %d, %d", got[0].Turn, got[1].Turn)
	}
	// Spacecraft leads the snapshot, then 4 rovers, 3 aliens, 60 rocks.
	if len(got[0].Agents) != 68 {
		t.Fatalf("snapshot holds %d agents, want 68", len(got[0].Agents))
	}
	if got[0].Agents[0].Kind != "spacecraft" {
		t.Fatalf("snapshot leads with %q, want spacecraft", got[0].Agents[0].Kind)
	}
}

type turnLoggerFunc func(TurnRecord) error

func (f turnLoggerFunc) WriteTurn(rec TurnRecord) error { return f(rec) }
