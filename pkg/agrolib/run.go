package agrolib

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a simulation run.
type RunStatus string

const (
	// StatusScheduled marks a run waiting for its start time or next
	// cron occurrence.
	StatusScheduled RunStatus = "scheduled"
	// StatusRunning marks a run whose tick loop is executing.
	StatusRunning RunStatus = "running"
	// StatusFinished marks a run that completed its full day range.
	StatusFinished RunStatus = "finished"
	// StatusFailed marks a run that ended with an error.
	StatusFailed RunStatus = "failed"
	// StatusStopped marks a run stopped by the user, or a cancelled
	// schedule.
	StatusStopped RunStatus = "stopped"
)

// ModelSpec describes which model a run steps and how it is configured,
// kept on the run record so scheduled and recurring runs can be rebuilt.
type ModelSpec struct {
	// Kind is one of "ramp", "noise", "script" or "" for no model.
	Kind string `json:"kind"`
	// Variable is the kiosk variable the builtin models publish.
	Variable string `json:"variable,omitempty"`
	// Start and Step configure the ramp model.
	Start float64 `json:"start,omitempty"`
	Step  float64 `json:"step,omitempty"`
	// Min, Max and Seed configure the noise model.
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Seed int64   `json:"seed,omitempty"`
	// Script is the script path for scripted models.
	Script string `json:"script,omitempty"`
}

// Run represents one simulation run tracked by the daemon, scheduled,
// executing or already finished.
type Run struct {
	// Id is the unique identifier of the run.
	Id string `json:"id"`
	// Name is the user-facing name of the run.
	Name string `json:"name"`
	// Document is the path of the agromanagement document.
	Document string `json:"document"`
	// Status is the lifecycle state of the run.
	Status RunStatus `json:"status"`
	// Model describes the state model stepped before each tick.
	Model ModelSpec `json:"model"`
	// StartDate and EndDate bound the simulated day range.
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	// CurrentDay is the most recently completed tick's day.
	CurrentDay time.Time `json:"current_day"`
	// TotalDays is the number of days the full run covers.
	TotalDays int `json:"total_days"`
	// Ticks is the number of completed ticks.
	Ticks int `json:"ticks"`
	// Events is the number of events fired so far.
	Events int `json:"events"`
	// Campaigns is the number of campaigns in the document.
	Campaigns int `json:"campaigns"`
	// Terminated reports whether the campaign queue ended the run
	// early.
	Terminated bool `json:"terminated"`
	// Error holds the failure reason for failed runs.
	Error string `json:"error,omitempty"`
	// DateAdded is the time the run record was created.
	DateAdded time.Time `json:"date_added"`
	// FinishedAt is the wall-clock time the run ended.
	FinishedAt time.Time `json:"finished_at,omitempty"`
	// StartAt delays a scheduled run until the given wall-clock time.
	StartAt time.Time `json:"start_at,omitempty"`
	// CronExpr makes the run recurring (5-field cron).
	CronExpr string `json:"cron_expr,omitempty"`
	// NoJournal disables event journaling, kept on the record so
	// scheduled occurrences honor it too.
	NoJournal bool `json:"no_journal,omitempty"`

	// cancel stops the tick loop of a running run. Not persisted; the
	// daemon re-arms it when it starts the run.
	cancel   func()
	cancelMu sync.Mutex
}

// NewRun creates a pending run record with a fresh id.
func NewRun(name, document string, model ModelSpec) *Run {
	return &Run{
		Id:        uuid.NewString(),
		Name:      name,
		Document:  document,
		Status:    StatusScheduled,
		Model:     model,
		DateAdded: time.Now(),
	}
}

// SetCancel arms the stop function of a running run.
func (r *Run) SetCancel(cancel func()) {
	r.cancelMu.Lock()
	r.cancel = cancel
	r.cancelMu.Unlock()
}

// Stop cancels the tick loop. It returns ErrRunNotStoppable when the run
// is not executing.
func (r *Run) Stop() error {
	r.cancelMu.Lock()
	defer r.cancelMu.Unlock()
	if r.cancel == nil {
		return ErrRunNotStoppable
	}
	r.cancel()
	r.cancel = nil
	return nil
}

// IsActive reports whether the run is executing.
func (r *Run) IsActive() bool {
	return r.Status == StatusRunning
}

// IsPending reports whether the run still has work ahead of it.
func (r *Run) IsPending() bool {
	return r.Status == StatusScheduled || r.Status == StatusRunning
}

// IsRecurring reports whether the run re-arms itself on a cron schedule.
func (r *Run) IsRecurring() bool {
	return r.CronExpr != ""
}

// Percentage returns tick progress in percent.
func (r *Run) Percentage() int {
	if r.TotalDays == 0 {
		return 0
	}
	return r.Ticks * 100 / r.TotalDays
}

// RunsMap is a map of run records indexed by run id.
type RunsMap map[string]*Run
