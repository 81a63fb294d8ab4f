package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"marsim/internal/sim/mars"
)

func openTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestWriteTurnStats(t *testing.T) {
	idx := openTestIndex(t)

	for turn := uint64(1); turn <= 50; turn++ {
		idx.WriteTurnStats(mars.TurnStats{
			Turn:             turn,
			Rovers:           5,
			MeanRoverBattery: 80,
			Aliens:           4,
			RocksOnGrid:      int(120 - turn),
			RocksRetrieved:   int(turn),
		})
	}
	idx.Flush()

	n, err := idx.TurnCount()
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if n != 50 {
		t.Fatalf("indexed %d turns, want 50", n)
	}

	last, err := idx.LastTurnStats()
	if err != nil {
		t.Fatalf("LastTurnStats: %v", err)
	}
	want := mars.TurnStats{
		Turn:             50,
		Rovers:           5,
		MeanRoverBattery: 80,
		Aliens:           4,
		RocksOnGrid:      70,
		RocksRetrieved:   50,
	}
	if last != want {
		t.Fatalf("LastTurnStats = %+v, want %+v", last, want)
	}
}

func TestWriteTurnStatsReplacesSameTurn(t *testing.T) {
	idx := openTestIndex(t)

	idx.WriteTurnStats(mars.TurnStats{Turn: 7, Rovers: 3})
	idx.WriteTurnStats(mars.TurnStats{Turn: 7, Rovers: 4})
	idx.Flush()

	n, err := idx.TurnCount()
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("indexed %d rows, want 1", n)
	}
	last, err := idx.LastTurnStats()
	if err != nil {
		t.Fatalf("LastTurnStats: %v", err)
	}
	if last.Rovers != 4 {
		t.Fatalf("rovers = %d, want replaced value 4", last.Rovers)
	}
}

func TestLastTurnStatsEmpty(t *testing.T) {
	idx := openTestIndex(t)
	if _, err := idx.LastTurnStats(); err != sql.ErrNoRows {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestRecordRunMeta(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.RecordRunMeta("seed", "1337"); err != nil {
		t.Fatalf("RecordRunMeta: %v", err)
	}
	if err := idx.RecordRunMeta("seed", "42"); err != nil {
		t.Fatalf("RecordRunMeta upsert: %v", err)
	}

	var value string
	err := idx.db.QueryRow(`SELECT value FROM runs WHERE key = ?`, "seed").Scan(&value)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if value != "42" {
		t.Fatalf("seed = %q, want upserted 42", value)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	idx.WriteTurnStats(mars.TurnStats{Turn: 1, Rovers: 1})
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	// Writes after close are dropped, not panics.
	idx.WriteTurnStats(mars.TurnStats{Turn: 2})
	idx.Flush()
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("empty path accepted")
	}
}
