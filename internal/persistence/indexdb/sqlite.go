package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"marsim/internal/sim/mars"
)

// SQLiteIndex is a secondary read-model of a run: per-turn fleet aggregates
// plus a run metadata row. Writes go through a single goroutine so the sim
// loop never blocks on disk.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type req struct {
	stats mars.TurnStats
	// ack, when non-nil, marks a sync barrier instead of a write.
	ack chan struct{}
}

func Open(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turn_stats (
			turn INTEGER PRIMARY KEY,
			rovers INTEGER NOT NULL,
			damaged_rovers INTEGER NOT NULL,
			mean_rover_battery INTEGER NOT NULL,
			aliens INTEGER NOT NULL,
			hibernating_aliens INTEGER NOT NULL,
			rocks_on_grid INTEGER NOT NULL,
			rocks_retrieved INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRunMeta stores a run metadata key/value (seed, grid size, ...).
func (s *SQLiteIndex) RecordRunMeta(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// WriteTurnStats queues a turn for indexing. Drops the entry if the indexer
// falls behind; the zstd run log remains the source of truth.
func (s *SQLiteIndex) WriteTurnStats(st mars.TurnStats) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{stats: st}:
	default:
	}
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		if r.ack != nil {
			close(r.ack)
			continue
		}
		s.insertTurn(r.stats)
	}
}

func (s *SQLiteIndex) insertTurn(st mars.TurnStats) {
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.db.Exec(
			`INSERT OR REPLACE INTO turn_stats(
				turn, rovers, damaged_rovers, mean_rover_battery,
				aliens, hibernating_aliens, rocks_on_grid, rocks_retrieved
			) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			st.Turn, st.Rovers, st.DamagedRovers, st.MeanRoverBattery,
			st.Aliens, st.HibernatingAliens, st.RocksOnGrid, st.RocksRetrieved,
		)
		if err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Flush blocks until every entry queued before the call has been written.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	ack := make(chan struct{})
	s.ch <- req{ack: ack}
	<-ack
}

// TurnCount reports how many turns have been indexed.
func (s *SQLiteIndex) TurnCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM turn_stats`).Scan(&n)
	return n, err
}

// LastTurnStats returns the most recent indexed turn.
func (s *SQLiteIndex) LastTurnStats() (mars.TurnStats, error) {
	var st mars.TurnStats
	err := s.db.QueryRow(
		`SELECT turn, rovers, damaged_rovers, mean_rover_battery,
		        aliens, hibernating_aliens, rocks_on_grid, rocks_retrieved
		 FROM turn_stats ORDER BY turn DESC LIMIT 1`,
	).Scan(
		&st.Turn, &st.Rovers, &st.DamagedRovers, &st.MeanRoverBattery,
		&st.Aliens, &st.HibernatingAliens, &st.RocksOnGrid, &st.RocksRetrieved,
	)
	return st, err
}
