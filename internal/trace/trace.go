// Package trace provides an optional SQLite recorder for firing events, so a
// session can be inspected after the fact with `snn trace`. It records what
// the engine emitted, never the network topology itself. A nil Recorder is
// safe to use; all methods are no-ops on nil receiver.
package trace

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS firings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TEXT NOT NULL,
	neuron INTEGER NOT NULL,
	note TEXT NOT NULL,
	tier TEXT NOT NULL,
	velocity REAL NOT NULL,
	duration REAL NOT NULL,
	reverb_wet REAL NOT NULL,
	chorus_wet REAL NOT NULL,
	isolated INTEGER NOT NULL,
	has_dc INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_firings_neuron ON firings(neuron);
`

// Event is one recorded firing.
type Event struct {
	At        time.Time
	Neuron    int
	Note      string
	Tier      string
	Velocity  float64
	Duration  float64
	ReverbWet float64
	ChorusWet float64
	Isolated  bool
	HasDC     bool
}

// Recorder appends firing events to a SQLite database.
type Recorder struct {
	db *sql.DB
}

// Open creates (or opens) the trace database at path. Returns nil with no
// error when path is empty, which disables recording.
func Open(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create trace directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open trace database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with a single writer

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize trace schema: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Record appends one firing event. Safe to call on nil receiver.
func (r *Recorder) Record(ev Event) {
	if r == nil || r.db == nil {
		return
	}
	_, _ = r.db.Exec(
		`INSERT INTO firings (at, neuron, note, tier, velocity, duration, reverb_wet, chorus_wet, isolated, has_dc)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.At.UTC().Format(time.RFC3339Nano),
		ev.Neuron, ev.Note, ev.Tier,
		ev.Velocity, ev.Duration, ev.ReverbWet, ev.ChorusWet,
		boolToInt(ev.Isolated), boolToInt(ev.HasDC),
	)
}

// Events returns the most recent events, newest first, up to limit.
// A limit of zero or less returns everything.
func (r *Recorder) Events(limit int) ([]Event, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}

	query := `SELECT at, neuron, note, tier, velocity, duration, reverb_wet, chorus_wet, isolated, has_dc
	          FROM firings ORDER BY id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = r.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var at string
		var isolated, hasDC int
		if err := rows.Scan(&at, &ev.Neuron, &ev.Note, &ev.Tier,
			&ev.Velocity, &ev.Duration, &ev.ReverbWet, &ev.ChorusWet,
			&isolated, &hasDC); err != nil {
			return nil, fmt.Errorf("scan firing: %w", err)
		}
		ev.At, _ = time.Parse(time.RFC3339Nano, at)
		ev.Isolated = isolated != 0
		ev.HasDC = hasDC != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close closes the underlying database. Safe to call on nil receiver.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
