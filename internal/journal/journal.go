// Package journal persists the signal events of simulation runs in a
// SQLite database, one row per dispatched event.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agroslabs/agros/pkg/agrolib"
	"github.com/agroslabs/agros/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT    NOT NULL,
	day         TEXT    NOT NULL,
	signal      TEXT    NOT NULL,
	event       TEXT    NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS events_run_idx ON events (run_id, id);
`

// Entry is one journaled event.
type Entry struct {
	Id         int64         `json:"id"`
	RunId      string        `json:"run_id"`
	Event      agrolib.Event `json:"event"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Journal is the event store shared by all runs of one daemon.
type Journal struct {
	db *sql.DB
}

// Open opens (and if needed creates) the journal database at path.
func Open(path string) (*Journal, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Append records one event for the given run.
func (j *Journal) Append(runId string, e agrolib.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = j.db.Exec(
		`INSERT INTO events (run_id, day, signal, event, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		runId, e.Day.Format(agrolib.DayLayout), string(e.Signal), string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Attach subscribes the journal to every signal of a run's bus. Append
// failures are logged and dropped so a broken journal cannot stall the
// tick loop.
func (j *Journal) Attach(bus *agrolib.Bus, runId string, log logger.Logger) {
	record := func(e agrolib.Event) {
		if err := j.Append(runId, e); err != nil {
			log.Error("journal: %s", err.Error())
		}
	}
	bus.Subscribe(agrolib.SigCropStart, record)
	bus.Subscribe(agrolib.SigCropFinish, record)
	bus.Subscribe(agrolib.SigTerminate, record)
	for _, sig := range agrolib.ActionSignals {
		bus.Subscribe(sig, record)
	}
}

// Events returns the journaled events of a run in dispatch order. A
// limit of zero or less returns all of them.
func (j *Journal) Events(runId string, limit int) ([]Entry, error) {
	query := `SELECT id, event, recorded_at FROM events WHERE run_id = ? ORDER BY id`
	args := []any{runId}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			payload  string
			recorded int64
		)
		if err := rows.Scan(&entry.Id, &payload, &recorded); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &entry.Event); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		entry.RunId = runId
		entry.RecordedAt = time.Unix(recorded, 0)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of journaled events of a run.
func (j *Journal) Count(runId string) (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM events WHERE run_id = ?`, runId).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// DeleteRun drops all journaled events of a run.
func (j *Journal) DeleteRun(runId string) error {
	if _, err := j.db.Exec(`DELETE FROM events WHERE run_id = ?`, runId); err != nil {
		return fmt.Errorf("delete run events: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
