package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"marsim/internal/persistence/indexdb"
	"marsim/internal/persistence/runlog"
	"marsim/internal/protocol"
	"marsim/internal/sim/mars"
	"marsim/internal/sim/scenario"
	"marsim/internal/sim/tuning"
	"marsim/internal/transport/observer"
)

func main() {
	var (
		addr         = flag.String("addr", "", "observer websocket listen address (empty to disable)")
		tuningPath   = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		scenarioPath = flag.String("scenario", "", "path to a scenario JSON file (optional)")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		seed         = flag.Int64("seed", 1337, "world seed")
		turns        = flag.Int("turns", 0, "number of turns to run (0 = run until signal)")
		turnMs       = flag.Int("turn_ms", -1, "pacing between turns in ms (-1 = use tuning, 0 = no pacing)")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite turn-stats index")
		summary      = flag.Bool("summary", false, "print the indexed last-turn stats on exit")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[marsim] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	sim := mars.NewSimulation(mars.SimConfig{
		Width:            tune.GridWidth,
		Height:           tune.GridHeight,
		Seed:             *seed,
		InitialNumRovers: tune.InitialNumRovers,
	})

	if *scenarioPath != "" {
		sc, err := scenario.Load(*scenarioPath)
		if err != nil {
			logger.Fatalf("load scenario: %v", err)
		}
		if err := applyScenario(sim, sc); err != nil {
			logger.Fatalf("apply scenario: %v", err)
		}
	} else {
		scatter(sim, tune)
	}

	logger.Printf("world %dx%d seed=%d rovers=%d aliens=%d rocks=%d",
		tune.GridWidth, tune.GridHeight, *seed, len(sim.Rovers()), len(sim.Aliens()), len(sim.Rocks()))

	// Telemetry sinks.
	var journal *runlog.Writer
	if tune.RunLogEnabled {
		journal, err = runlog.NewWriter(filepath.Join(*dataDir, "turns.jsonl.zst"))
		if err != nil {
			logger.Fatalf("open run log: %v", err)
		}
		defer journal.Close()
		sim.SetTurnLogger(journal)
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.Open(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		_ = idx.RecordRunMeta("seed", fmt.Sprint(*seed))
		_ = idx.RecordRunMeta("grid", fmt.Sprintf("%dx%d", tune.GridWidth, tune.GridHeight))
		_ = idx.RecordRunMeta("started_at", time.Now().UTC().Format(time.RFC3339))
	}

	var obs *observer.Server
	if *addr != "" {
		obs = observer.NewServer(observer.WorldParams{
			GridWidth:  tune.GridWidth,
			GridHeight: tune.GridHeight,
			Seed:       *seed,
		}, logger)
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/observe", obs.WSHandler())
		srv := &http.Server{Addr: *addr, Handler: mux}
		go func() {
			logger.Printf("observer feed on ws://%s/v1/observe", *addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalf("observer listen: %v", err)
			}
		}()
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pace := time.Duration(tune.TurnMs) * time.Millisecond
	if *turnMs >= 0 {
		pace = time.Duration(*turnMs) * time.Millisecond
	}

	for done := 0; *turns == 0 || done < *turns; done++ {
		if ctx.Err() != nil {
			logger.Printf("signal received, stopping")
			break
		}
		stats := sim.StepOnce()
		if obs != nil {
			obs.Publish(protocol.NewTurnMsg(stats.Turn, sim.Snapshot(), stats))
		}
		if idx != nil {
			idx.WriteTurnStats(stats)
		}
		if pace > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(pace):
			}
		}
	}

	final := sim.Stats()
	logger.Printf("finished after %d turns: retrieved=%d rovers=%d (damaged=%d) aliens=%d (hibernating=%d) rocks_left=%d",
		sim.CurrentTurn(), final.RocksRetrieved, final.Rovers, final.DamagedRovers,
		final.Aliens, final.HibernatingAliens, final.RocksOnGrid)
	if idx != nil {
		idx.Flush()
		if *summary {
			n, err := idx.TurnCount()
			if err != nil {
				logger.Printf("summary: %v", err)
			} else if last, err := idx.LastTurnStats(); err != nil {
				logger.Printf("summary: %v", err)
			} else {
				logger.Printf("index: %d turns, last %+v", n, last)
			}
		}
	}
}

// applyScenario places agents exactly where the scenario file says.
func applyScenario(sim *mars.Simulation, sc scenario.Scenario) error {
	grid := sim.Grid()
	check := func(p scenario.Point) (mars.Location, error) {
		loc := mars.Location{X: p.X, Y: p.Y}
		if !grid.InBounds(loc) {
			return loc, fmt.Errorf("location (%d,%d) outside %dx%d grid", p.X, p.Y, grid.Width(), grid.Height())
		}
		if grid.AgentAt(loc) != nil {
			return loc, fmt.Errorf("location (%d,%d) placed twice", p.X, p.Y)
		}
		return loc, nil
	}

	loc, err := check(sc.Spacecraft)
	if err != nil {
		return err
	}
	sim.PlaceSpacecraft(loc)

	for _, p := range sc.Rovers {
		if loc, err = check(p); err != nil {
			return err
		}
		sim.PlaceRover(loc)
	}
	for _, p := range sc.Aliens {
		if loc, err = check(p); err != nil {
			return err
		}
		sim.PlaceAlien(loc)
	}
	for _, p := range sc.Rocks {
		if loc, err = check(p); err != nil {
			return err
		}
		sim.PlaceRock(loc)
	}
	return nil
}

// scatter seeds a fresh world: spacecraft in the center, the initial fleet
// packed around it (the craft only coordinates rovers it has seen adjacent),
// aliens and rocks on random free cells.
func scatter(sim *mars.Simulation, tune tuning.Tuning) {
	grid := sim.Grid()
	center := mars.Location{X: grid.Width() / 2, Y: grid.Height() / 2}
	sim.PlaceSpacecraft(center)

	free := grid.FreeAdjacentLocations(center)
	for i := 0; i < tune.InitialNumRovers; i++ {
		if i < len(free) {
			sim.PlaceRover(free[i])
			continue
		}
		if loc, ok := sim.RandomFreeLocation(); ok {
			sim.PlaceRover(loc)
		}
	}

	for i := 0; i < tune.NumAliens; i++ {
		if loc, ok := sim.RandomFreeLocation(); ok {
			sim.PlaceAlien(loc)
		}
	}
	for i := 0; i < tune.NumRocks; i++ {
		if loc, ok := sim.RandomFreeLocation(); ok {
			sim.PlaceRock(loc)
		}
	}
}
