package agrolib

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"
)

// Manager is the daemon's registry of simulation runs. Records persist
// across daemon restarts in a gob file under the data directory.
type Manager struct {
	runs RunsMap
	f    *os.File
	mu   *sync.RWMutex
}

// InitManager opens the run registry, starting fresh when the file is
// empty or unreadable.
func InitManager() (m *Manager, err error) {
	m = &Manager{
		runs: make(RunsMap),
		mu:   new(sync.RWMutex),
	}
	m.f, err = os.OpenFile(runsFileName, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		m = nil
		return
	}
	if decErr := gob.NewDecoder(m.f).Decode(&m.runs); decErr != nil {
		if decErr != io.EOF {
			log.Printf("agrolib: warning: failed to decode run registry, starting fresh: %v", decErr)
		}
		m.runs = make(RunsMap)
	}
	return
}

// persistRuns writes the registry to disk. Callers must hold m.mu.
func (m *Manager) persistRuns() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m.runs); err != nil {
		return fmt.Errorf("encode runs: %w", err)
	}
	if err := m.f.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	if _, err := m.f.Seek(0, 0); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if _, err := m.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// encode persists the registry. Called on every mutation, so it skips
// Sync; Close syncs once at shutdown.
func (m *Manager) encode() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistRuns()
}

func (m *Manager) mapRun(run *Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.Id] = run
}

func (m *Manager) deleteRun(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
}

// AddRun registers a new run record.
func (m *Manager) AddRun(run *Run) {
	m.UpdateRun(run)
}

// UpdateRun stores the run and persists the registry.
func (m *Manager) UpdateRun(run *Run) {
	m.mapRun(run)
	m.encode()
}

// GetRun returns the run with the given id, or nil.
func (m *Manager) GetRun(id string) *Run {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs[id]
}

// GetRuns returns all runs ordered by creation time.
func (m *Manager) GetRuns() []*Run {
	m.mu.RLock()
	runs := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	m.mu.RUnlock()
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].DateAdded.Before(runs[j].DateAdded)
	})
	return runs
}

// GetPendingRuns returns runs that are scheduled or running.
func (m *Manager) GetPendingRuns() []*Run {
	var runs []*Run
	for _, run := range m.GetRuns() {
		if !run.IsPending() {
			continue
		}
		runs = append(runs, run)
	}
	return runs
}

// GetFinishedRuns returns runs that are no longer pending.
func (m *Manager) GetFinishedRuns() []*Run {
	var runs []*Run
	for _, run := range m.GetRuns() {
		if run.IsPending() {
			continue
		}
		runs = append(runs, run)
	}
	return runs
}

// Flush removes every non-pending run record.
func (m *Manager) Flush() error {
	for _, run := range m.GetFinishedRuns() {
		m.deleteRun(run.Id)
	}
	return m.encode()
}

// FlushOne removes a single run record. Pending runs cannot be flushed.
func (m *Manager) FlushOne(id string) error {
	run := m.GetRun(id)
	if run == nil {
		return ErrFlushRunNotFound
	}
	if run.IsPending() {
		return ErrFlushRunActive
	}
	m.deleteRun(id)
	return m.encode()
}

// Close persists the registry and releases the backing file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persistRuns(); err != nil {
		return err
	}
	if err := m.f.Sync(); err != nil {
		return err
	}
	return m.f.Close()
}
