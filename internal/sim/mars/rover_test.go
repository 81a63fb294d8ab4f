package mars

import (
	"math/rand"
	"testing"
)

func testRover(t *testing.T, g *Grid, loc, craft Location) *Rover {
	t.Helper()
	r := NewRover(1, loc, craft, rand.New(rand.NewSource(7)))
	g.SetAgent(r, loc)
	return r
}

func TestRover_LowBatteryHeadsHome(t *testing.T) {
	g := NewGrid(10, 10)
	craft := Location{X: 0, Y: 5}
	r := testRover(t, g, Location{X: 0, Y: 0}, craft)
	r.Battery = 25

	// A rock right next door must not distract a low-battery rover.
	rockLoc := Location{X: 1, Y: 0}
	g.SetAgent(NewRock(rockLoc), rockLoc)

	r.Act(g)

	if r.HasRock() {
		t.Fatalf("low-battery rover picked up a rock")
	}
	if got := r.Location(); got != (Location{X: 0, Y: 1}) {
		t.Fatalf("rover at %+v, want one step toward spacecraft", got)
	}
	if r.Battery != 20 {
		t.Fatalf("battery = %d, want 20 after one move", r.Battery)
	}
}

func TestRover_ChargingWaitsUntilFull(t *testing.T) {
	g := NewGrid(10, 10)
	loc := Location{X: 4, Y: 4}
	r := testRover(t, g, loc, Location{X: 5, Y: 5})
	r.RequestCharging = true
	r.Battery = 60

	r.Act(g)

	if r.Location() != loc {
		t.Fatalf("charging rover moved to %+v", r.Location())
	}
	if r.Battery != 60 {
		t.Fatalf("charging rover battery changed to %d", r.Battery)
	}

	r.Battery = 100
	r.Act(g)
	if r.RequestCharging {
		t.Fatalf("fully charged rover still requesting charging")
	}
	if r.Location() == loc {
		t.Fatalf("fully charged rover should resume acting")
	}
}

func TestRover_BatterySharing(t *testing.T) {
	g := NewGrid(10, 10)
	craft := Location{X: 9, Y: 9}
	stalled := testRover(t, g, Location{X: 3, Y: 3}, craft)
	stalled.Battery = 0

	helper := NewRover(2, Location{X: 3, Y: 4}, craft, rand.New(rand.NewSource(8)))
	helper.Battery = 50
	helper.RequestCharging = true
	g.SetAgent(helper, helper.Location())

	stalled.Act(g)

	if stalled.Battery != BatteryShareAmount {
		t.Fatalf("stalled rover battery = %d, want %d", stalled.Battery, BatteryShareAmount)
	}
	if helper.Battery != 45 {
		t.Fatalf("helper battery = %d, want 45", helper.Battery)
	}
	if helper.RequestCharging {
		t.Fatalf("sharing should clear the helper's charging request")
	}
	if stalled.Location() != (Location{X: 3, Y: 3}) {
		t.Fatalf("stalled rover moved")
	}
}

func TestRover_NoShareFromWeakNeighbor(t *testing.T) {
	g := NewGrid(10, 10)
	craft := Location{X: 9, Y: 9}
	stalled := testRover(t, g, Location{X: 3, Y: 3}, craft)
	stalled.Battery = 0

	weak := NewRover(2, Location{X: 3, Y: 4}, craft, rand.New(rand.NewSource(8)))
	weak.Battery = BatteryShareMinimum
	g.SetAgent(weak, weak.Location())

	stalled.Act(g)

	if stalled.Battery != 0 || weak.Battery != BatteryShareMinimum {
		t.Fatalf("transfer happened below the sharing minimum: stalled=%d weak=%d", stalled.Battery, weak.Battery)
	}
}

func TestRover_TargetPickup(t *testing.T) {
	g := NewGrid(10, 10)
	r := testRover(t, g, Location{X: 5, Y: 5}, Location{X: 0, Y: 0})

	rockLoc := Location{X: 6, Y: 5}
	rock := NewRock(rockLoc)
	g.SetAgent(rock, rockLoc)
	r.remembered = []Location{rockLoc}
	target := rockLoc
	r.Target = &target
	before := r.Battery

	r.Act(g)

	if r.Location() != rockLoc {
		t.Fatalf("rover at %+v, want %+v", r.Location(), rockLoc)
	}
	if !r.HasRock() || !rock.PickedUp {
		t.Fatalf("rock not picked up")
	}
	if r.Target != nil {
		t.Fatalf("target not cleared after pickup")
	}
	if len(r.RememberedRocks()) != 0 {
		t.Fatalf("picked-up rock still remembered")
	}
	if r.Battery != before {
		t.Fatalf("target pursuit should not cost battery, got %d", r.Battery)
	}
}

func TestRover_TargetAbandonedWhenNothingThere(t *testing.T) {
	g := NewGrid(10, 10)
	r := testRover(t, g, Location{X: 5, Y: 5}, Location{X: 0, Y: 0})
	r.IgnoreBattery = true
	target := Location{X: 6, Y: 6}
	r.Target = &target

	r.Act(g)

	if r.Target != nil {
		t.Fatalf("empty target not abandoned")
	}
	if r.IgnoreBattery {
		t.Fatalf("abandoning a target should clear the battery override")
	}
	// Heads home: one step toward (0,0).
	if got := r.Location(); got != (Location{X: 4, Y: 4}) {
		t.Fatalf("rover at %+v, want one step toward spacecraft", got)
	}
}

func TestRover_TargetApproachSteps(t *testing.T) {
	g := NewGrid(20, 20)
	r := testRover(t, g, Location{X: 0, Y: 0}, Location{X: 0, Y: 0})
	target := Location{X: 9, Y: 9}
	r.Target = &target

	r.Act(g)

	if got := r.Location(); got != (Location{X: 1, Y: 1}) {
		t.Fatalf("rover at %+v, want greedy diagonal step", got)
	}
	if r.Target == nil {
		t.Fatalf("distant target dropped early")
	}
}

func TestRover_CarriesRockTowardSpacecraft(t *testing.T) {
	g := NewGrid(10, 10)
	craft := Location{X: 8, Y: 8}
	r := testRover(t, g, Location{X: 2, Y: 2}, craft)

	rock := NewRock(r.Location())
	r.PickUpRock(rock)

	r.Act(g)

	if got := r.Location(); got != (Location{X: 3, Y: 3}) {
		t.Fatalf("rover at %+v, want one step toward spacecraft", got)
	}
	if rock.Location() != r.Location() {
		t.Fatalf("carried rock at %+v, rover at %+v", rock.Location(), r.Location())
	}
}

func TestRover_PicksUpAdjacentRockWhileForaging(t *testing.T) {
	g := NewGrid(10, 10)
	r := testRover(t, g, Location{X: 5, Y: 5}, Location{X: 0, Y: 0})

	rockLoc := Location{X: 4, Y: 4}
	rock := NewRock(rockLoc)
	g.SetAgent(rock, rockLoc)

	r.Act(g)

	if !r.HasRock() {
		t.Fatalf("foraging rover ignored an adjacent rock")
	}
	if r.Location() != rockLoc {
		t.Fatalf("rover at %+v, want %+v", r.Location(), rockLoc)
	}
}

func TestRover_RequestsChargingNearSpacecraft(t *testing.T) {
	g := NewGrid(10, 10)
	craft := Location{X: 5, Y: 5}
	r := testRover(t, g, Location{X: 4, Y: 4}, craft)

	r.Battery = 40
	r.manageBattery(g)
	if r.Battery != 35 {
		t.Fatalf("battery = %d, want 35", r.Battery)
	}
	if !r.RequestCharging {
		t.Fatalf("rover adjacent to craft with battery %d did not request charging", r.Battery)
	}

	r.RequestCharging = false
	r.Battery = 80
	r.manageBattery(g)
	if r.RequestCharging {
		t.Fatalf("rover with healthy battery requested charging")
	}
}

func TestRover_SustainDamage(t *testing.T) {
	g := NewGrid(10, 10)
	r := testRover(t, g, Location{X: 5, Y: 5}, Location{X: 0, Y: 0})
	rock := NewRock(r.Location())
	r.PickUpRock(rock)

	r.SustainDamage(AttackDamage)
	if r.Battery != 75 || r.Damaged {
		t.Fatalf("after one hit: battery=%d damaged=%v", r.Battery, r.Damaged)
	}

	r.Battery = 10
	r.SustainDamage(AttackDamage)
	if !r.Damaged {
		t.Fatalf("rover should be damaged at zero battery")
	}
	if r.Battery != 0 {
		t.Fatalf("battery = %d, want clamped 0", r.Battery)
	}
	if r.HasRock() {
		t.Fatalf("damaged rover kept its rock")
	}
	if rock.Location() != r.Location() {
		t.Fatalf("dropped rock not at rover location")
	}
}

func TestRover_DamagedIsTerminal(t *testing.T) {
	g := NewGrid(10, 10)
	r := testRover(t, g, Location{X: 5, Y: 5}, Location{X: 0, Y: 0})
	r.Damaged = true
	r.Battery = 0
	loc := r.Location()

	for i := 0; i < 10; i++ {
		r.Act(g)
	}
	if r.Location() != loc || r.Battery != 0 {
		t.Fatalf("damaged rover changed state: loc=%+v battery=%d", r.Location(), r.Battery)
	}
}
